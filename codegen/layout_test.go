package codegen

import (
	"errors"
	"testing"

	cerr "github.com/anhlt/micropyc/errors"
	"github.com/anhlt/micropyc/ir"
	"github.com/anhlt/micropyc/objmodel"
)

func TestLayoutRootClass(t *testing.T) {
	m := counterModule(t)
	eng := NewEngine(m)

	l, err := eng.Layout(m.Class("Counter"))
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	if l.StructName != "counters_Counter_obj_t" {
		t.Errorf("struct name: got %s", l.StructName)
	}
	// header (8) + vtable pointer (8) precede the fields.
	if !l.HasVtable {
		t.Fatal("expected vtable slot: hierarchy has a virtual method")
	}
	if l.VtablePath != "vtable" {
		t.Errorf("vtable path: got %s", l.VtablePath)
	}
	wantOffsets := map[string]uint32{"value": 16, "step": 24}
	for name, off := range wantOffsets {
		s := l.Slot(name)
		if s == nil {
			t.Fatalf("missing slot %s", name)
		}
		if s.Offset != off {
			t.Errorf("%s offset: got %d, want %d", name, s.Offset, off)
		}
		if s.Path != name {
			t.Errorf("%s path: got %s", name, s.Path)
		}
	}
	if l.Size != 32 {
		t.Errorf("size: got %d, want 32", l.Size)
	}
}

// A child's slots extend the parent's at identical offsets, so a child
// pointer reinterpreted as a parent pointer reads the same fields.
func TestLayoutPrefixCompatible(t *testing.T) {
	m := counterModule(t)
	eng := NewEngine(m)

	parent, err := eng.Layout(m.Class("Counter"))
	if err != nil {
		t.Fatalf("parent: %v", err)
	}
	child, err := eng.Layout(m.Class("BoundedCounter"))
	if err != nil {
		t.Fatalf("child: %v", err)
	}

	for _, ps := range parent.Slots {
		cs := child.Slot(ps.Name)
		if cs == nil {
			t.Fatalf("child lost inherited slot %s", ps.Name)
		}
		if cs.Offset != ps.Offset {
			t.Errorf("%s: child offset %d, parent offset %d", ps.Name, cs.Offset, ps.Offset)
		}
		if cs.Path != "super."+ps.Path {
			t.Errorf("%s: path %s", ps.Name, cs.Path)
		}
	}

	// Own fields append after the parent struct.
	if got := child.Slot("min_val").Offset; got != parent.Size {
		t.Errorf("min_val offset: got %d, want %d", got, parent.Size)
	}
	if child.VtablePath != "super.vtable" {
		t.Errorf("vtable path: got %s", child.VtablePath)
	}
}

func TestLayoutBoolPacking(t *testing.T) {
	m := &ir.Module{
		Name: "flags",
		Classes: []*ir.Class{{
			Name: "Pair",
			Fields: []ir.Field{
				{Name: "a", Type: "bool"},
				{Name: "b", Type: "bool"},
				{Name: "n", Type: "int"},
			},
		}},
	}
	if err := m.Resolve(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	l, err := NewEngine(m).Layout(m.Classes[0])
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if l.Slot("a").Offset != 8 || l.Slot("b").Offset != 9 {
		t.Errorf("bool offsets: a=%d b=%d", l.Slot("a").Offset, l.Slot("b").Offset)
	}
	// The int realigns to the word boundary.
	if l.Slot("n").Offset != 16 {
		t.Errorf("n offset: got %d, want 16", l.Slot("n").Offset)
	}
	if l.Slot("a").Tag != objmodel.TagBool {
		t.Errorf("a tag: got %v", l.Slot("a").Tag)
	}
}

func TestLayoutFieldCollision(t *testing.T) {
	m := &ir.Module{
		Name: "bad",
		Classes: []*ir.Class{
			{
				Name:   "Base",
				Fields: []ir.Field{{Name: "x", Type: "int"}},
			},
			{
				Name:   "Child",
				Parent: "Base",
				Fields: []ir.Field{{Name: "x", Type: "int"}},
			},
		},
	}
	if err := m.Resolve(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	_, err := NewEngine(m).Layout(m.Class("Child"))
	if err == nil {
		t.Fatal("expected collision error")
	}
	var ce *cerr.Error
	if !errors.As(err, &ce) || ce.Kind != cerr.KindFieldCollision {
		t.Errorf("got %v, want field_collision", err)
	}
}

func TestLayoutFieldShadowsMethod(t *testing.T) {
	m := &ir.Module{
		Name: "bad",
		Classes: []*ir.Class{
			{
				Name:    "Base",
				Methods: []ir.Method{{Signature: ir.Signature{Name: "tick"}}},
			},
			{
				Name:   "Child",
				Parent: "Base",
				Fields: []ir.Field{{Name: "tick", Type: "int"}},
			},
		},
	}
	if err := m.Resolve(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	_, err := NewEngine(m).Layout(m.Class("Child"))
	if err == nil {
		t.Fatal("expected shadow error")
	}
	var ce *cerr.Error
	if !errors.As(err, &ce) || ce.Kind != cerr.KindFieldShadowed {
		t.Errorf("got %v, want field_shadowed", err)
	}
}

func TestLayoutNoVtableWithoutVirtuals(t *testing.T) {
	m := &ir.Module{
		Name: "plain",
		Classes: []*ir.Class{{
			Name:   "Point",
			Fields: []ir.Field{{Name: "x", Type: "int"}, {Name: "y", Type: "int"}},
		}},
	}
	if err := m.Resolve(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	l, err := NewEngine(m).Layout(m.Classes[0])
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if l.HasVtable {
		t.Error("plain data class should not carry a vtable slot")
	}
	if l.Slot("x").Offset != 8 {
		t.Errorf("x offset: got %d, want 8", l.Slot("x").Offset)
	}
}
