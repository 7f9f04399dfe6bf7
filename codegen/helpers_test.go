package codegen

import (
	"testing"

	"github.com/anhlt/micropyc/ir"
)

// counterModule builds the resolved two-level hierarchy used across
// the codegen tests: a Counter with an increment method and a
// BoundedCounter subclass that clamps at max_val.
func counterModule(t *testing.T) *ir.Module {
	t.Helper()
	m := &ir.Module{
		Name: "counters",
		Classes: []*ir.Class{
			{
				Name: "Counter",
				Fields: []ir.Field{
					{Name: "value", Type: "int"},
					{Name: "step", Type: "int"},
				},
				Methods: []ir.Method{
					{Signature: ir.Signature{
						Name: "__init__",
						Params: []ir.Param{
							{Name: "start", Type: "int"},
							{Name: "step", Type: "int"},
						},
					}},
					{Signature: ir.Signature{Name: "increment", Return: "int"}},
				},
			},
			{
				Name:   "BoundedCounter",
				Parent: "Counter",
				Fields: []ir.Field{
					{Name: "min_val", Type: "int"},
					{Name: "max_val", Type: "int"},
				},
				Methods: []ir.Method{
					{
						Signature: ir.Signature{Name: "increment", Return: "int"},
						Override:  true,
					},
				},
			},
		},
	}
	if err := m.Resolve(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return m
}

// threeLevelModule builds a Shape/Circle/Dot chain where the middle
// class overrides one method and the leaf a different one.
func threeLevelModule(t *testing.T) *ir.Module {
	t.Helper()
	m := &ir.Module{
		Name: "geom",
		Classes: []*ir.Class{
			{
				Name:   "Shape",
				Fields: []ir.Field{{Name: "x", Type: "float"}},
				Methods: []ir.Method{
					{Signature: ir.Signature{Name: "area", Return: "float"}},
					{Signature: ir.Signature{Name: "name", Return: "object"}},
					{Signature: ir.Signature{Name: "describe", Return: "object"}},
				},
			},
			{
				Name:   "Circle",
				Parent: "Shape",
				Fields: []ir.Field{{Name: "radius", Type: "float"}},
				Methods: []ir.Method{
					{
						Signature: ir.Signature{Name: "area", Return: "float"},
						Override:  true,
					},
				},
			},
			{
				Name:   "Dot",
				Parent: "Circle",
				Methods: []ir.Method{
					{
						Signature: ir.Signature{Name: "name", Return: "object"},
						Override:  true,
					},
				},
			},
		},
	}
	if err := m.Resolve(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return m
}
