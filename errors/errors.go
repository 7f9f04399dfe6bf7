package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in compilation the error occurred
type Phase string

const (
	PhaseLoad     Phase = "load"     // declaration set loading
	PhaseValidate Phase = "validate" // declaration validation
	PhaseClassify Phase = "classify" // arity classification
	PhaseMarshal  Phase = "marshal"  // value marshaling generation
	PhaseLayout   Phase = "layout"   // class layout computation
	PhaseLower    Phase = "lower"    // function/method lowering
	PhaseAssemble Phase = "assemble" // module assembly
)

// Kind categorizes the error
type Kind string

const (
	KindMalformedSignature Kind = "malformed_signature"
	KindUnknownType        Kind = "unknown_type"
	KindFieldCollision     Kind = "field_collision"
	KindFieldShadowed      Kind = "field_shadowed"
	KindDuplicate          Kind = "duplicate"
	KindNotFound           Kind = "not_found"
	KindInvalidData        Kind = "invalid_data"
	KindInvalidInput       Kind = "invalid_input"
	KindUnsupported        Kind = "unsupported"
	KindCapacityExceeded   Kind = "capacity_exceeded"
)

// Error is the structured error type used throughout the compiler
type Error struct {
	Cause    error
	Phase    Phase
	Kind     Kind
	Decl     string
	TypeName string
	Detail   string
	Path     []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Decl != "" {
		b.WriteString(" in ")
		b.WriteString(e.Decl)
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.TypeName != "" {
		b.WriteString(": type ")
		b.WriteString(e.TypeName)
	}

	if e.Detail != "" {
		if e.TypeName != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Decl names the declaration the error belongs to
func (b *Builder) Decl(name string) *Builder {
	b.err.Decl = name
	return b
}

// Path sets the path within the declaration (parameter, field, method)
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// TypeName sets the source type name involved
func (b *Builder) TypeName(t string) *Builder {
	b.err.TypeName = t
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// MalformedSignature creates a malformed signature error
func MalformedSignature(decl string, path []string, detail string) *Error {
	return &Error{
		Phase:  PhaseClassify,
		Kind:   KindMalformedSignature,
		Decl:   decl,
		Path:   path,
		Detail: detail,
	}
}

// UnknownType creates an unknown marshaling type error
func UnknownType(phase Phase, decl string, path []string, typeName string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindUnknownType,
		Decl:     decl,
		Path:     path,
		TypeName: typeName,
		Detail:   "no marshaling rule for type",
	}
}

// FieldCollision creates an inherited field collision error
func FieldCollision(class, field, parent string) *Error {
	return &Error{
		Phase:  PhaseLayout,
		Kind:   KindFieldCollision,
		Decl:   class,
		Path:   []string{field},
		Detail: fmt.Sprintf("field %q already declared by ancestor %q", field, parent),
	}
}

// FieldShadowed creates a shadowed field error. Redeclaring an inherited
// field is rejected rather than silently picking one of the two offsets.
func FieldShadowed(class, field, parent string) *Error {
	return &Error{
		Phase:  PhaseLayout,
		Kind:   KindFieldShadowed,
		Decl:   class,
		Path:   []string{field},
		Detail: fmt.Sprintf("field %q shadows a field declared by ancestor %q", field, parent),
	}
}

// Duplicate creates a duplicate declaration error
func Duplicate(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Detail: fmt.Sprintf("duplicate %s %q", what, name),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// CapacityExceeded creates a capacity error for bounded registries
func CapacityExceeded(what string, capacity int) *Error {
	return &Error{
		Phase:  PhaseLower,
		Kind:   KindCapacityExceeded,
		Detail: fmt.Sprintf("%s capacity %d exceeded", what, capacity),
	}
}

// Load creates a declaration set loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
