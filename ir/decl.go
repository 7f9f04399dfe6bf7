package ir

import (
	"fmt"
	"strings"

	"github.com/anhlt/micropyc/objmodel"
)

// Role classifies a parameter's position in the calling convention.
type Role uint8

const (
	Positional Role = iota
	StarArgs
	StarKwargs
)

func (r Role) String() string {
	switch r {
	case StarArgs:
		return "*args"
	case StarKwargs:
		return "**kwargs"
	default:
		return "positional"
	}
}

// DefaultKind tags a literal default value.
type DefaultKind uint8

const (
	DefaultNone DefaultKind = iota
	DefaultInt
	DefaultFloat
	DefaultBool
	DefaultStr
)

// Default is a literal default value for a parameter or field.
type Default struct {
	Kind  DefaultKind `cbor:"kind"`
	Int   int64       `cbor:"int,omitempty"`
	Float float64     `cbor:"float,omitempty"`
	Bool  bool        `cbor:"bool,omitempty"`
	Str   string      `cbor:"str,omitempty"`
}

// IntDefault returns a literal integer default.
func IntDefault(v int64) *Default { return &Default{Kind: DefaultInt, Int: v} }

// FloatDefault returns a literal float default.
func FloatDefault(v float64) *Default { return &Default{Kind: DefaultFloat, Float: v} }

// BoolDefault returns a literal bool default.
func BoolDefault(v bool) *Default { return &Default{Kind: DefaultBool, Bool: v} }

// StrDefault returns a literal string default.
func StrDefault(v string) *Default { return &Default{Kind: DefaultStr, Str: v} }

// NoneDefault returns the none default.
func NoneDefault() *Default { return &Default{Kind: DefaultNone} }

// Param is one formal parameter of a signature.
type Param struct {
	Name    string   `cbor:"name"`
	Type    string   `cbor:"type"` // source annotation, e.g. "int", "list[int]"
	Role    Role     `cbor:"role,omitempty"`
	Default *Default `cbor:"default,omitempty"`
	// Optional marks an object parameter that accepts none and maps it
	// to a native null in generated code.
	Optional bool `cbor:"optional,omitempty"`
}

// Tag returns the parameter's codegen type tag.
func (p Param) Tag() objmodel.TypeTag {
	return objmodel.FromAnnotation(p.Type)
}

// Signature is one function or method signature.
type Signature struct {
	Name   string  `cbor:"name"`
	Params []Param `cbor:"params,omitempty"`
	Return string  `cbor:"return,omitempty"`
	Doc    string  `cbor:"doc,omitempty"`
}

// ReturnTag returns the codegen tag of the return type.
func (s *Signature) ReturnTag() objmodel.TypeTag {
	return objmodel.FromAnnotation(s.Return)
}

// TupleReturn returns the element tags of a native tuple return
// (tuple[...] with all-scalar elements) or nil if the return is not
// eligible for unboxed tuple lowering.
func (s *Signature) TupleReturn() []objmodel.TypeTag {
	inner, ok := tupleElements(s.Return)
	if !ok {
		return nil
	}
	tags := make([]objmodel.TypeTag, len(inner))
	for i, el := range inner {
		tags[i] = objmodel.FromAnnotation(el)
		if !tags[i].IsScalar() {
			return nil
		}
	}
	return tags
}

func tupleElements(annotation string) ([]string, bool) {
	s := strings.TrimSpace(annotation)
	if !strings.HasPrefix(s, "tuple[") || !strings.HasSuffix(s, "]") {
		return nil, false
	}
	body := s[len("tuple[") : len(s)-1]
	if strings.TrimSpace(body) == "" {
		return nil, false
	}
	parts := strings.Split(body, ",")
	out := make([]string, 0, len(parts))
	depth := 0
	cur := ""
	for i, p := range parts {
		cur += p
		depth += strings.Count(p, "[") - strings.Count(p, "]")
		if depth > 0 && i < len(parts)-1 {
			cur += ","
			continue
		}
		out = append(out, strings.TrimSpace(cur))
		cur = ""
	}
	return out, true
}

// Field is one storage slot declared by a class.
type Field struct {
	Name    string   `cbor:"name"`
	Type    string   `cbor:"type"`
	Default *Default `cbor:"default,omitempty"`
}

// Tag returns the field's codegen type tag.
func (f Field) Tag() objmodel.TypeTag {
	return objmodel.FromAnnotation(f.Type)
}

// Method is a class method: a signature plus dispatch flags. The
// receiver is implicit and not listed in Params.
type Method struct {
	Signature
	// Override marks a redefinition of a parent method of the same name.
	Override bool `cbor:"override,omitempty"`
	// Static and ClassMethod exclude the method from virtual dispatch.
	Static      bool `cbor:"static,omitempty"`
	ClassMethod bool `cbor:"classmethod,omitempty"`
}

// Virtual reports whether the method participates in vtable dispatch.
func (m *Method) Virtual() bool {
	return !m.Static && !m.ClassMethod && !strings.HasPrefix(m.Name, "__")
}

// Class describes one class declaration.
type Class struct {
	Name    string   `cbor:"name"`
	Parent  string   `cbor:"parent,omitempty"` // by name; single inheritance only
	Fields  []Field  `cbor:"fields,omitempty"`
	Methods []Method `cbor:"methods,omitempty"`
	Doc     string   `cbor:"doc,omitempty"`

	// Record requests a keyword-capable generated constructor built
	// from the field list (with field defaults), instead of __init__.
	Record bool `cbor:"record,omitempty"`
	// WantsRepr requests the generated textual rendering hook.
	WantsRepr bool `cbor:"repr,omitempty"`
	// WantsEq requests the generated structural equality hook.
	WantsEq bool `cbor:"eq,omitempty"`

	parent *Class
}

// ParentClass returns the resolved parent, or nil for a root class.
func (c *Class) ParentClass() *Class { return c.parent }

// Method returns the named own method, or nil.
func (c *Class) Method(name string) *Method {
	for i := range c.Methods {
		if c.Methods[i].Name == name {
			return &c.Methods[i]
		}
	}
	return nil
}

// Depth returns the inheritance depth (0 for a root class).
func (c *Class) Depth() int {
	d := 0
	for p := c.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Root returns the root ancestor (the class itself when it has none).
func (c *Class) Root() *Class {
	r := c
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// ExternParam is one parameter of an extern binding.
type ExternParam struct {
	Name     string `cbor:"name"`
	Scalar   string `cbor:"scalar"` // objmodel scalar name, e.g. "uint16"
	Optional bool   `cbor:"optional,omitempty"`
	// Callback marks a function-pointer parameter; the wrapper stores
	// the passed callable and hands the native side a trampoline.
	Callback bool `cbor:"callback,omitempty"`
}

// Extern declares an already-implemented native C function that the
// compiler wraps through the ordinary lowering path.
type Extern struct {
	Name   string        `cbor:"name"`
	CName  string        `cbor:"cname"` // the existing C symbol
	Params []ExternParam `cbor:"params,omitempty"`
	Return string        `cbor:"return,omitempty"` // scalar name or "void"
	Doc    string        `cbor:"doc,omitempty"`
}

// Module is one logical extension module's declarations.
type Module struct {
	Name      string      `cbor:"name"`
	Doc       string      `cbor:"doc,omitempty"`
	Functions []Signature `cbor:"functions,omitempty"`
	Classes   []*Class    `cbor:"classes,omitempty"`
	Externs   []Extern    `cbor:"externs,omitempty"`
}

// Class returns the named class, or nil.
func (m *Module) Class(name string) *Class {
	for _, c := range m.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (m *Module) String() string {
	return fmt.Sprintf("module %s (%d functions, %d classes, %d externs)",
		m.Name, len(m.Functions), len(m.Classes), len(m.Externs))
}
