package codegen

import (
	"errors"
	"testing"

	cerr "github.com/anhlt/micropyc/errors"
	"github.com/anhlt/micropyc/ir"
)

func lowerExtern(t *testing.T, ext *ir.Extern, reg *CallbackRegistry) (string, *LoweredExtern) {
	t.Helper()
	if reg == nil {
		reg = NewCallbackRegistry("hw", 0)
	}
	em := &emitter{}
	le, err := LowerExtern(em, "hw", ext, reg)
	if err != nil {
		t.Fatalf("LowerExtern(%s): %v", ext.Name, err)
	}
	return em.String(), le
}

func TestLowerExternScalars(t *testing.T) {
	src, le := lowerExtern(t, &ir.Extern{
		Name:  "read_register",
		CName: "hw_read_reg",
		Params: []ir.ExternParam{
			{Name: "addr", Scalar: "uint16"},
			{Name: "wide", Scalar: "bool"},
		},
		Return: "uint32",
	}, nil)
	if le.ObjName != "hw_read_register_obj" {
		t.Errorf("ObjName: got %q", le.ObjName)
	}
	mustContain(t, src,
		"static mp_obj_t hw_read_register(mp_obj_t arg0_obj, mp_obj_t arg1_obj) {",
		"uint16_t c_addr = (uint16_t)mp_obj_get_int(arg0_obj);",
		"bool c_wide = mp_obj_is_true(arg1_obj);",
		"uint32_t result = hw_read_reg(c_addr, c_wide);",
		"return mp_obj_new_int_from_uint(result);",
		"static MP_DEFINE_CONST_FUN_OBJ_2(hw_read_register_obj, hw_read_register);",
	)
}

func TestLowerExternVoidReturn(t *testing.T) {
	src, _ := lowerExtern(t, &ir.Extern{
		Name:   "reset_bus",
		CName:  "hw_bus_reset",
		Return: "void",
	}, nil)
	mustContain(t, src,
		"static mp_obj_t hw_reset_bus(void) {",
		"hw_bus_reset();",
		"return mp_const_none;",
		"static MP_DEFINE_CONST_FUN_OBJ_0(hw_reset_bus_obj, hw_reset_bus);",
	)
}

// An optional scalar parameter accepts none (or omission) and passes
// the scalar's null value through.
func TestLowerExternOptional(t *testing.T) {
	src, _ := lowerExtern(t, &ir.Extern{
		Name:  "open_port",
		CName: "hw_port_open",
		Params: []ir.ExternParam{
			{Name: "name", Scalar: "str"},
			{Name: "baud", Scalar: "int", Optional: true},
		},
		Return: "ptr",
	}, nil)
	mustContain(t, src,
		"static mp_obj_t hw_open_port(size_t n_args, const mp_obj_t *args) {",
		"const char * c_name = mp_obj_str_get_str(args[0]);",
		"mp_int_t c_baud = (n_args > 1 && args[1] != mp_const_none) ? mp_obj_get_int(args[1]) : 0;",
		"return wrap_ptr((void *)result);",
		"static MP_DEFINE_CONST_FUN_OBJ_VAR_BETWEEN(hw_open_port_obj, 1, 2, hw_open_port);",
	)
}

func TestLowerExternCallback(t *testing.T) {
	reg := NewCallbackRegistry("hw", 4)
	src, _ := lowerExtern(t, &ir.Extern{
		Name:  "on_edge",
		CName: "hw_gpio_on_edge",
		Params: []ir.ExternParam{
			{Name: "pin", Scalar: "int"},
			{Name: "handler", Scalar: "ptr", Callback: true},
			{Name: "user_data", Scalar: "ptr"},
		},
		Return: "int",
	}, reg)
	if reg.Len() != 1 {
		t.Fatalf("registered trampolines: got %d", reg.Len())
	}
	if got := reg.Handles()[0]; got != "hw_on_edge_handler_trampoline" {
		t.Errorf("trampoline name: got %q", got)
	}
	mustContain(t, src,
		"static void hw_on_edge_handler_trampoline(void *p0) {",
		"int idx = (int)(intptr_t)p0;",
		"mp_call_function_0(cb);",
		"mp_obj_t callback = args[1];",
		"if (hw_cb_count >= HW_MAX_CALLBACKS) {",
		`mp_raise_msg(&mp_type_RuntimeError, MP_ERROR_TEXT("too many event callbacks"));`,
		"MP_STATE_VM(hw_cb_registry)[idx] = callback;",
		// The slot handle rides in the user-data pointer.
		"hw_gpio_on_edge(c_pin, hw_on_edge_handler_trampoline, (void *)(intptr_t)idx);",
	)
}

func TestLowerExternCallbackCapacity(t *testing.T) {
	reg := NewCallbackRegistry("hw", 1)
	ext := &ir.Extern{
		Name:   "subscribe",
		CName:  "hw_subscribe",
		Params: []ir.ExternParam{{Name: "fn", Scalar: "ptr", Callback: true}},
	}
	if _, err := LowerExtern(&emitter{}, "hw", ext, reg); err != nil {
		t.Fatalf("first: %v", err)
	}
	ext2 := *ext
	ext2.Name = "subscribe_more"
	_, err := LowerExtern(&emitter{}, "hw", &ext2, reg)
	var ce *cerr.Error
	if !errors.As(err, &ce) || ce.Kind != cerr.KindCapacityExceeded {
		t.Errorf("got %v, want capacity_exceeded", err)
	}
}

func TestLowerExternUnknownScalar(t *testing.T) {
	_, err := LowerExtern(&emitter{}, "hw", &ir.Extern{
		Name:   "probe",
		CName:  "hw_probe",
		Params: []ir.ExternParam{{Name: "mode", Scalar: "quadword"}},
	}, NewCallbackRegistry("hw", 0))
	var ce *cerr.Error
	if !errors.As(err, &ce) || ce.Kind != cerr.KindUnknownType {
		t.Errorf("got %v, want unknown_type", err)
	}
}
