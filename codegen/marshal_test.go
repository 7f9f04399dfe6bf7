package codegen

import (
	"errors"
	"testing"

	cerr "github.com/anhlt/micropyc/errors"
	"github.com/anhlt/micropyc/ir"
	"github.com/anhlt/micropyc/objmodel"
)

func TestUnwrapExpr(t *testing.T) {
	tests := []struct {
		tag  objmodel.TypeTag
		want string
	}{
		{objmodel.TagInt, "mp_obj_get_int(v)"},
		{objmodel.TagFloat, "mp_get_float_checked(v)"},
		{objmodel.TagBool, "mp_obj_is_true(v)"},
		{objmodel.TagObj, "v"},
	}
	for _, tt := range tests {
		t.Run(tt.tag.String(), func(t *testing.T) {
			got, err := unwrapExpr(tt.tag, "v")
			if err != nil {
				t.Fatalf("unwrapExpr: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnwrapExprVoidParam(t *testing.T) {
	_, err := unwrapExpr(objmodel.TagVoid, "v")
	var ce *cerr.Error
	if !errors.As(err, &ce) || ce.Kind != cerr.KindUnknownType {
		t.Errorf("got %v, want unknown_type", err)
	}
}

func TestWrapExpr(t *testing.T) {
	tests := []struct {
		tag  objmodel.TypeTag
		want string
	}{
		{objmodel.TagInt, "mp_obj_new_int(r)"},
		{objmodel.TagFloat, "mp_obj_new_float(r)"},
		{objmodel.TagBool, "mp_obj_new_bool(r)"},
		{objmodel.TagObj, "r"},
		{objmodel.TagVoid, "mp_const_none"},
	}
	for _, tt := range tests {
		t.Run(tt.tag.String(), func(t *testing.T) {
			if got := wrapExpr(tt.tag, "r"); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// An optional object parameter routes through the none check; a
// required one does not.
func TestUnwrapParamExprOptional(t *testing.T) {
	opt := ir.Param{Name: "peer", Type: "object", Optional: true}
	got, err := unwrapParamExpr(opt, "arg0_obj")
	if err != nil {
		t.Fatalf("unwrapParamExpr: %v", err)
	}
	want := "(arg0_obj == mp_const_none) ? NULL : MP_OBJ_TO_PTR(arg0_obj)"
	if got != want {
		t.Errorf("optional: got %q, want %q", got, want)
	}

	req := ir.Param{Name: "peer", Type: "object"}
	got, err = unwrapParamExpr(req, "arg0_obj")
	if err != nil {
		t.Fatalf("unwrapParamExpr: %v", err)
	}
	if got != "arg0_obj" {
		t.Errorf("required: got %q, want identity", got)
	}
}

func TestDefaultCExpr(t *testing.T) {
	tests := []struct {
		name string
		d    ir.Default
		tag  objmodel.TypeTag
		want string
	}{
		{"int", ir.Default{Kind: ir.DefaultInt, Int: 42}, objmodel.TagInt, "42"},
		{"negative_int", ir.Default{Kind: ir.DefaultInt, Int: -7}, objmodel.TagInt, "-7"},
		{"float", ir.Default{Kind: ir.DefaultFloat, Float: 2.5}, objmodel.TagFloat, "2.5"},
		{"float_whole", ir.Default{Kind: ir.DefaultFloat, Float: 3}, objmodel.TagFloat, "3.0"},
		{"int_to_float", ir.Default{Kind: ir.DefaultInt, Int: 3}, objmodel.TagFloat, "3.0"},
		{"bool_true", ir.Default{Kind: ir.DefaultBool, Bool: true}, objmodel.TagBool, "true"},
		{"bool_false", ir.Default{Kind: ir.DefaultBool, Bool: false}, objmodel.TagBool, "false"},
		{"none_obj", ir.Default{Kind: ir.DefaultNone}, objmodel.TagObj, "mp_const_none"},
		{"int_obj", ir.Default{Kind: ir.DefaultInt, Int: 5}, objmodel.TagObj, "MP_OBJ_NEW_SMALL_INT(5)"},
		{"str_obj", ir.Default{Kind: ir.DefaultStr, Str: "hi"}, objmodel.TagObj, `mp_obj_new_str("hi", 2)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := defaultCExpr(&tt.d, tt.tag); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScalarConversions(t *testing.T) {
	tests := []struct {
		scalar objmodel.CScalar
		unwrap string
		wrap   string
	}{
		{objmodel.CInt, "mp_obj_get_int(v)", "mp_obj_new_int(v)"},
		{objmodel.CUInt32, "(uint32_t)mp_obj_get_int(v)", "mp_obj_new_int_from_uint(v)"},
		{objmodel.CInt8, "(int8_t)mp_obj_get_int(v)", "mp_obj_new_int(v)"},
		{objmodel.CDouble, "mp_obj_get_float(v)", "mp_obj_new_float(v)"},
		{objmodel.CFloat, "(float)mp_obj_get_float(v)", "mp_obj_new_float(v)"},
		{objmodel.CBool, "mp_obj_is_true(v)", "mp_obj_new_bool(v)"},
		{objmodel.CStr, "mp_obj_str_get_str(v)", "mp_obj_new_str(v, strlen(v))"},
		{objmodel.CPtr, "unwrap_ptr(v)", "wrap_ptr((void *)v)"},
	}
	for _, tt := range tests {
		t.Run(tt.scalar.String(), func(t *testing.T) {
			if got := unwrapScalarExpr(tt.scalar, "v"); got != tt.unwrap {
				t.Errorf("unwrap: got %q, want %q", got, tt.unwrap)
			}
			if got := wrapScalarExpr(tt.scalar, "v"); got != tt.wrap {
				t.Errorf("wrap: got %q, want %q", got, tt.wrap)
			}
		})
	}
	if got := wrapScalarExpr(objmodel.CVoid, "v"); got != "mp_const_none" {
		t.Errorf("void wrap: got %q", got)
	}
}
