package objmodel

import "strings"

// TypeTag classifies a declared source type for code generation.
type TypeTag uint8

const (
	TagObj   TypeTag = iota // mp_obj_t, generic boxed value
	TagInt                  // mp_int_t, unboxed integer
	TagFloat                // mp_float_t, unboxed float
	TagBool                 // bool
	TagVoid                 // void, None return only
)

var tagNames = [...]string{
	TagObj:   "obj",
	TagInt:   "int",
	TagFloat: "float",
	TagBool:  "bool",
	TagVoid:  "void",
}

func (t TypeTag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "unknown"
}

// CDecl returns the C declaration type for the tag.
func (t TypeTag) CDecl() string {
	switch t {
	case TagInt:
		return "mp_int_t"
	case TagFloat:
		return "mp_float_t"
	case TagBool:
		return "bool"
	case TagVoid:
		return "void"
	default:
		return "mp_obj_t"
	}
}

// FieldTypeID returns the numeric tag stored in generated field
// descriptor tables: 0=obj, 1=int, 2=float, 3=bool.
func (t TypeTag) FieldTypeID() int {
	switch t {
	case TagInt:
		return 1
	case TagFloat:
		return 2
	case TagBool:
		return 3
	default:
		return 0
	}
}

// IsScalar reports whether the tag lowers to an unboxed C value.
func (t TypeTag) IsScalar() bool {
	return t == TagInt || t == TagFloat || t == TagBool
}

// FromAnnotation maps a source type annotation to its tag. Unknown
// annotations map to the generic boxed tag; container and object types
// all stay boxed.
func FromAnnotation(annotation string) TypeTag {
	base := annotation
	if i := strings.IndexByte(base, '['); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	switch base {
	case "int":
		return TagInt
	case "float":
		return TagFloat
	case "bool":
		return TagBool
	case "None", "":
		return TagVoid
	default:
		return TagObj
	}
}

// FieldSize returns the byte size a field of this tag occupies in a
// generated instance struct, with its natural alignment.
func (t TypeTag) FieldSize() (size, align int) {
	switch t {
	case TagBool:
		return 1, 1
	default:
		// mp_obj_t, mp_int_t and mp_float_t are all word sized.
		return 8, 8
	}
}
