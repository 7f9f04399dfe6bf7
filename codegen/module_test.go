package codegen

import (
	"strings"
	"testing"

	"github.com/anhlt/micropyc/ir"
)

func TestAssembleModule(t *testing.T) {
	m := counterModule(t)
	m.Functions = []ir.Signature{{
		Name:   "total",
		Params: []ir.Param{param("base", "int")},
		Return: "int",
	}}

	gm, err := AssembleModule(m, Options{})
	if err != nil {
		t.Fatalf("AssembleModule: %v", err)
	}
	if gm.FileName != "counters.c" {
		t.Errorf("FileName: got %q", gm.FileName)
	}
	if len(gm.Functions) != 1 || len(gm.Classes) != 2 {
		t.Fatalf("lowered: %d functions, %d classes", len(gm.Functions), len(gm.Classes))
	}

	mustContain(t, gm.Source,
		`// Generated extension module "counters". Do not edit.`,
		`#include "py/runtime.h"`,
		`#include "py/objtype.h"`,
		// Forward declarations precede every struct definition.
		"typedef struct _counters_Counter_obj_t counters_Counter_obj_t;",
		"typedef struct _counters_BoundedCounter_vtable_t counters_BoundedCounter_vtable_t;",
		"static inline mp_float_t mp_get_float_checked(mp_obj_t obj) {",
		// Globals: module name, functions, then class types.
		"{ MP_ROM_QSTR(MP_QSTR___name__), MP_ROM_QSTR(MP_QSTR_counters) },",
		"{ MP_ROM_QSTR(MP_QSTR_total), MP_ROM_PTR(&counters_total_obj) },",
		"{ MP_ROM_QSTR(MP_QSTR_Counter), MP_ROM_PTR(&counters_Counter_type) },",
		"{ MP_ROM_QSTR(MP_QSTR_BoundedCounter), MP_ROM_PTR(&counters_BoundedCounter_type) },",
		"MP_DEFINE_CONST_DICT(counters_module_globals, counters_module_globals_table);",
		"const mp_obj_module_t counters_user_cmodule = {",
		"MP_REGISTER_MODULE(MP_QSTR_counters, counters_user_cmodule);",
	)

	// A parent's struct definition must precede the child's, which
	// embeds it by value.
	parentAt := strings.Index(gm.Source, "struct _counters_Counter_obj_t {")
	childAt := strings.Index(gm.Source, "struct _counters_BoundedCounter_obj_t {")
	if parentAt < 0 || childAt < 0 || parentAt > childAt {
		t.Errorf("struct order: parent at %d, child at %d", parentAt, childAt)
	}
}

func TestAssembleModuleDeterministic(t *testing.T) {
	a, err := AssembleModule(counterModule(t), Options{})
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	b, err := AssembleModule(counterModule(t), Options{})
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if a.Source != b.Source {
		t.Error("assembly is not deterministic")
	}
}

func TestAssembleModuleConditionalIncludes(t *testing.T) {
	plain, err := AssembleModule(counterModule(t), Options{})
	if err != nil {
		t.Fatalf("plain: %v", err)
	}
	if strings.Contains(plain.Source, "py/mpprint.h") {
		t.Error("print include emitted without a print hook")
	}
	if strings.Contains(plain.Source, "unwrap_ptr") {
		t.Error("pointer helpers emitted without pointer externs")
	}

	m := &ir.Module{
		Name: "hw",
		Externs: []ir.Extern{{
			Name:   "version_string",
			CName:  "hw_version",
			Return: "str",
		}, {
			Name:  "on_tick",
			CName: "hw_on_tick",
			Params: []ir.ExternParam{
				{Name: "fn", Scalar: "ptr", Callback: true},
				{Name: "user_data", Scalar: "ptr"},
			},
		}},
	}
	if err := m.Resolve(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	gm, err := AssembleModule(m, Options{CallbackCapacity: 5})
	if err != nil {
		t.Fatalf("AssembleModule: %v", err)
	}
	mustContain(t, gm.Source,
		"#include <string.h>",
		"static inline void *unwrap_ptr(mp_obj_t obj) {",
		"#define HW_MAX_CALLBACKS 5",
	)
}

// One broken declaration is dropped with a diagnostic; the rest of the
// module still assembles, with no partial C from the failed one.
func TestAssembleModuleIsolatesFailures(t *testing.T) {
	m := &ir.Module{
		Name: "mixed",
		Functions: []ir.Signature{
			{
				Name:   "broken",
				Params: []ir.Param{{Name: "x", Type: "None"}},
			},
			{
				Name:   "working",
				Params: []ir.Param{param("n", "int")},
				Return: "int",
			},
		},
	}
	if err := m.Resolve(); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	gm, err := AssembleModule(m, Options{})
	if err != nil {
		t.Fatalf("AssembleModule: %v", err)
	}
	if gm.Diagnostics.Len() != 1 || !gm.Diagnostics.Failed("broken") {
		t.Fatalf("diagnostics: len=%d failed=%v", gm.Diagnostics.Len(), gm.Diagnostics.Failed("broken"))
	}
	if gm.Diagnostics.Err() == nil {
		t.Error("Err() should join recorded failures")
	}
	if len(gm.Functions) != 1 || gm.Functions[0].Name != "working" {
		t.Fatalf("lowered functions: %+v", gm.Functions)
	}
	mustContain(t, gm.Source,
		"static mp_obj_t mixed_working(mp_obj_t arg0_obj) {",
		"{ MP_ROM_QSTR(MP_QSTR_working), MP_ROM_PTR(&mixed_working_obj) },",
	)
	if strings.Contains(gm.Source, "mixed_broken") {
		t.Error("failed declaration leaked C into the output")
	}
}
