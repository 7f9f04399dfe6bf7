package codegen

import (
	"strings"
	"testing"

	"github.com/anhlt/micropyc/ir"
)

func specialModule(t *testing.T, c *ir.Class) *ir.Module {
	t.Helper()
	m := &ir.Module{Name: "geo", Classes: []*ir.Class{c}}
	if err := m.Resolve(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return m
}

func TestStructuralPrintAndEq(t *testing.T) {
	m := specialModule(t, &ir.Class{
		Name:      "Vec",
		WantsRepr: true,
		WantsEq:   true,
		Fields: []ir.Field{
			{Name: "x", Type: "float"},
			{Name: "tag", Type: "int"},
			{Name: "live", Type: "bool"},
		},
	})
	src, lc := lowerClass(t, m, "Vec")
	if !lc.HasPrint || !lc.HasBinaryOp {
		t.Fatalf("hooks: print=%v binary_op=%v", lc.HasPrint, lc.HasBinaryOp)
	}
	mustContain(t, src,
		`mp_printf(print, "Vec(");`,
		`mp_printf(print, "x=");`,
		`mp_printf(print, ", tag=%d", (int)self->tag);`,
		`mp_printf(print, ", live=%s", self->live ? "True" : "False");`,
		`mp_printf(print, ")");`,
		// Foreign types compare unequal instead of raising.
		"if (!mp_obj_is_type(rhs_in, mp_obj_get_type(lhs_in))) {",
		"return mp_const_false;",
		"lhs->x == rhs->x",
		"lhs->live == rhs->live",
		// Other operators fall back to the runtime.
		"return MP_OBJ_NULL;",
		"    print, geo_Vec_print",
		"    binary_op, geo_Vec_binary_op",
	)
}

// Declared dunders win over the structural hooks.
func TestUserPrintAndEq(t *testing.T) {
	m := specialModule(t, &ir.Class{
		Name:      "Token",
		WantsRepr: true,
		WantsEq:   true,
		Fields:    []ir.Field{{Name: "id", Type: "int"}},
		Methods: []ir.Method{
			{Signature: ir.Signature{Name: "__str__", Return: "str"}},
			{Signature: ir.Signature{Name: "__repr__", Return: "str"}},
			{Signature: ir.Signature{
				Name:   "__eq__",
				Params: []ir.Param{{Name: "other", Type: "object"}},
				Return: "bool",
			}},
		},
	})
	src, _ := lowerClass(t, m, "Token")
	mustContain(t, src,
		"if (kind == PRINT_STR) {",
		"result = geo_Token___str___mp(self_in);",
		"result = geo_Token___repr___mp(self_in);",
		"mp_obj_print_helper(print, result, PRINT_STR);",
		"if (op == MP_BINARY_OP_EQUAL) {",
		"return geo_Token___eq___mp(lhs_in, rhs_in);",
	)
	if strings.Contains(src, `mp_printf(print, "Token(");`) {
		t.Error("structural print must yield to the declared dunders")
	}
}

func TestFieldlessStructuralEq(t *testing.T) {
	m := specialModule(t, &ir.Class{Name: "Unit", WantsEq: true})
	src, _ := lowerClass(t, m, "Unit")
	mustContain(t, src, "return mp_const_true;")
}

func TestNoHooksByDefault(t *testing.T) {
	src, lc := lowerClass(t, counterModule(t), "Counter")
	if lc.HasPrint || lc.HasBinaryOp {
		t.Fatalf("hooks: print=%v binary_op=%v", lc.HasPrint, lc.HasBinaryOp)
	}
	if strings.Contains(src, "counters_Counter_print") {
		t.Error("unexpected print hook")
	}
	if strings.Contains(src, "counters_Counter_binary_op") {
		t.Error("unexpected binary_op hook")
	}
}
