package codegen

import (
	"fmt"
	"strconv"

	"github.com/anhlt/micropyc/errors"
	"github.com/anhlt/micropyc/ir"
	"github.com/anhlt/micropyc/objmodel"
)

// unwrapExpr returns the C expression converting an encoded value to the
// native C type of the tag. Every scalar accessor named here performs
// the runtime's own check-then-cast; no expression dereferences a heap
// pointer without a discriminant check.
func unwrapExpr(tag objmodel.TypeTag, expr string) (string, error) {
	switch tag {
	case objmodel.TagInt:
		return fmt.Sprintf("mp_obj_get_int(%s)", expr), nil
	case objmodel.TagFloat:
		return fmt.Sprintf("mp_get_float_checked(%s)", expr), nil
	case objmodel.TagBool:
		return fmt.Sprintf("mp_obj_is_true(%s)", expr), nil
	case objmodel.TagObj:
		return expr, nil
	default:
		return "", errors.New(errors.PhaseMarshal, errors.KindUnknownType).
			TypeName(tag.String()).
			Detail("type cannot appear as a parameter").
			Build()
	}
}

// wrapExpr returns the C expression converting a native C value back to
// an encoded value.
func wrapExpr(tag objmodel.TypeTag, expr string) string {
	switch tag {
	case objmodel.TagInt:
		return fmt.Sprintf("mp_obj_new_int(%s)", expr)
	case objmodel.TagFloat:
		return fmt.Sprintf("mp_obj_new_float(%s)", expr)
	case objmodel.TagBool:
		return fmt.Sprintf("mp_obj_new_bool(%s)", expr)
	case objmodel.TagVoid:
		return "mp_const_none"
	default:
		return expr
	}
}

// unwrapOptionalExpr maps the none immediate to a native null and
// otherwise unwraps the pointer.
func unwrapOptionalExpr(expr string) string {
	return fmt.Sprintf("(%s == mp_const_none) ? NULL : MP_OBJ_TO_PTR(%s)", expr, expr)
}

// unwrapParamExpr picks the unwrap form for one declared parameter.
func unwrapParamExpr(p ir.Param, expr string) (string, error) {
	if p.Optional && p.Tag() == objmodel.TagObj {
		return unwrapOptionalExpr(expr), nil
	}
	return unwrapExpr(p.Tag(), expr)
}

// defaultCExpr renders a literal default value, unboxed when the
// parameter lowers to a native scalar, boxed otherwise.
func defaultCExpr(d *ir.Default, tag objmodel.TypeTag) string {
	switch tag {
	case objmodel.TagInt:
		switch d.Kind {
		case ir.DefaultInt:
			return strconv.FormatInt(d.Int, 10)
		case ir.DefaultBool:
			if d.Bool {
				return "1"
			}
			return "0"
		}
		return "0"
	case objmodel.TagFloat:
		switch d.Kind {
		case ir.DefaultFloat:
			return formatCFloat(d.Float)
		case ir.DefaultInt:
			return formatCFloat(float64(d.Int))
		}
		return "0.0"
	case objmodel.TagBool:
		if d.Kind == ir.DefaultBool && d.Bool {
			return "true"
		}
		return "false"
	default:
		return defaultBoxedExpr(d)
	}
}

// defaultBoxedExpr renders a literal default as an encoded value.
func defaultBoxedExpr(d *ir.Default) string {
	switch d.Kind {
	case ir.DefaultInt:
		return fmt.Sprintf("MP_OBJ_NEW_SMALL_INT(%d)", d.Int)
	case ir.DefaultFloat:
		return fmt.Sprintf("mp_obj_new_float(%s)", formatCFloat(d.Float))
	case ir.DefaultBool:
		if d.Bool {
			return "mp_const_true"
		}
		return "mp_const_false"
	case ir.DefaultStr:
		return fmt.Sprintf("mp_obj_new_str(%s, %d)", cStringLit(d.Str), len(d.Str))
	default:
		return "mp_const_none"
	}
}

func formatCFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// A bare integer literal would lose the float type in C.
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'E' {
			return s
		}
	}
	return s + ".0"
}

// Extern scalar conversion tables, keyed by the C-side scalar type.

// unwrapScalarExpr converts an encoded value to an extern C scalar.
func unwrapScalarExpr(s objmodel.CScalar, expr string) string {
	switch s {
	case objmodel.CInt:
		return fmt.Sprintf("mp_obj_get_int(%s)", expr)
	case objmodel.CUInt:
		return fmt.Sprintf("(mp_uint_t)mp_obj_get_int(%s)", expr)
	case objmodel.CInt8:
		return fmt.Sprintf("(int8_t)mp_obj_get_int(%s)", expr)
	case objmodel.CUInt8:
		return fmt.Sprintf("(uint8_t)mp_obj_get_int(%s)", expr)
	case objmodel.CInt16:
		return fmt.Sprintf("(int16_t)mp_obj_get_int(%s)", expr)
	case objmodel.CUInt16:
		return fmt.Sprintf("(uint16_t)mp_obj_get_int(%s)", expr)
	case objmodel.CInt32:
		return fmt.Sprintf("(int32_t)mp_obj_get_int(%s)", expr)
	case objmodel.CUInt32:
		return fmt.Sprintf("(uint32_t)mp_obj_get_int(%s)", expr)
	case objmodel.CFloat:
		return fmt.Sprintf("(float)mp_obj_get_float(%s)", expr)
	case objmodel.CDouble:
		return fmt.Sprintf("mp_obj_get_float(%s)", expr)
	case objmodel.CBool:
		return fmt.Sprintf("mp_obj_is_true(%s)", expr)
	case objmodel.CStr:
		return fmt.Sprintf("mp_obj_str_get_str(%s)", expr)
	default:
		return fmt.Sprintf("unwrap_ptr(%s)", expr)
	}
}

// wrapScalarExpr converts an extern C scalar back to an encoded value.
func wrapScalarExpr(s objmodel.CScalar, expr string) string {
	switch s {
	case objmodel.CVoid:
		return "mp_const_none"
	case objmodel.CUInt, objmodel.CUInt32:
		return fmt.Sprintf("mp_obj_new_int_from_uint(%s)", expr)
	case objmodel.CInt, objmodel.CInt8, objmodel.CUInt8, objmodel.CInt16,
		objmodel.CUInt16, objmodel.CInt32:
		return fmt.Sprintf("mp_obj_new_int(%s)", expr)
	case objmodel.CFloat, objmodel.CDouble:
		return fmt.Sprintf("mp_obj_new_float(%s)", expr)
	case objmodel.CBool:
		return fmt.Sprintf("mp_obj_new_bool(%s)", expr)
	case objmodel.CStr:
		return fmt.Sprintf("mp_obj_new_str(%s, strlen(%s))", expr, expr)
	default:
		return fmt.Sprintf("wrap_ptr((void *)%s)", expr)
	}
}
