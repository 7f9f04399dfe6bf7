package codegen

import (
	"github.com/anhlt/micropyc/errors"
	"github.com/anhlt/micropyc/ir"
	"github.com/anhlt/micropyc/objmodel"
)

// objBaseSize is the size of the runtime's object header (a single
// pointer to the type descriptor) on the 64-bit target.
const objBaseSize = 8

const wordAlign = 8

// FieldSlot is one resolved storage slot of a class layout.
type FieldSlot struct {
	Name   string
	Tag    objmodel.TypeTag
	Offset uint32
	// Path is the C member access path from the class's own struct,
	// e.g. "super.super.x" for a field two ancestors up.
	Path  string
	Owner *ir.Class
}

// ClassLayout is the computed in-memory layout of one class.
type ClassLayout struct {
	Class *ir.Class

	// StructName is the C struct tag, e.g. "geom_point_obj_t".
	// ParentStruct is the parent's tag, empty for a root class.
	StructName   string
	ParentStruct string

	Size  uint32
	Align uint32

	// Slots lists every accessible field, inherited first, in
	// declaration order. Own is the tail declared by this class.
	Slots []FieldSlot
	Own   []FieldSlot

	// HasVtable reports that the hierarchy carries a dispatch table
	// slot; VtablePath is its access path from this class's struct.
	HasVtable  bool
	VtablePath string
}

// Slot returns the named slot, or nil.
func (l *ClassLayout) Slot(name string) *FieldSlot {
	for i := range l.Slots {
		if l.Slots[i].Name == name {
			return &l.Slots[i]
		}
	}
	return nil
}

// Engine computes class layouts. A child's struct embeds its parent's
// struct as the first member, so a pointer to a child is a valid
// pointer to every ancestor; field order is append only.
type Engine struct {
	module  string
	cache   map[*ir.Class]*ClassLayout
	vtables map[*ir.Class]*Vtable

	// virtualRoot marks root classes whose hierarchy declares at least
	// one dispatchable method. The dispatch slot lives in the root
	// struct so every descendant shares it at a fixed offset.
	virtualRoot map[*ir.Class]bool
}

// NewEngine returns an engine for one module's class set. The module
// must be resolved so parent links are in place.
func NewEngine(m *ir.Module) *Engine {
	e := &Engine{
		module:      m.Name,
		cache:       make(map[*ir.Class]*ClassLayout),
		vtables:     make(map[*ir.Class]*Vtable),
		virtualRoot: make(map[*ir.Class]bool),
	}
	for _, c := range m.Classes {
		for i := range c.Methods {
			if c.Methods[i].Virtual() {
				e.virtualRoot[c.Root()] = true
				break
			}
		}
	}
	return e
}

// Layout computes (or returns the cached) layout for a class.
func (e *Engine) Layout(c *ir.Class) (*ClassLayout, error) {
	if cached, ok := e.cache[c]; ok {
		return cached, nil
	}

	l := &ClassLayout{
		Class:      c,
		StructName: cName(e.module, c.Name) + "_obj_t",
		Align:      wordAlign,
	}

	offset := uint32(objBaseSize)
	if parent := c.ParentClass(); parent != nil {
		pl, err := e.Layout(parent)
		if err != nil {
			return nil, err
		}
		// The parent struct sits at offset 0 as the "super" member.
		offset = pl.Size
		l.ParentStruct = pl.StructName
		l.HasVtable = pl.HasVtable
		if pl.HasVtable {
			l.VtablePath = "super." + pl.VtablePath
		}
		for _, s := range pl.Slots {
			s.Path = "super." + s.Path
			l.Slots = append(l.Slots, s)
		}
	} else if e.virtualRoot[c] {
		l.HasVtable = true
		l.VtablePath = "vtable"
		offset += wordAlign
	}

	for _, f := range c.Fields {
		if err := e.checkField(c, f.Name, l); err != nil {
			return nil, err
		}
		tag := f.Tag()
		fsize, falign := tag.FieldSize()
		size, align := uint32(fsize), uint32(falign)
		offset = alignTo(offset, align)
		slot := FieldSlot{
			Name:   f.Name,
			Tag:    tag,
			Offset: offset,
			Path:   f.Name,
			Owner:  c,
		}
		l.Slots = append(l.Slots, slot)
		l.Own = append(l.Own, slot)
		offset += size
	}

	l.Size = alignTo(offset, l.Align)
	e.cache[c] = l
	return l, nil
}

// checkField rejects a field that duplicates a sibling, collides with
// an inherited slot, or shadows an inherited method name.
func (e *Engine) checkField(c *ir.Class, name string, l *ClassLayout) error {
	for i := range l.Own {
		if l.Own[i].Name == name {
			return errors.New(errors.PhaseLayout, errors.KindDuplicate).
				Decl(c.Name).
				Detail("field %q declared twice", name).
				Build()
		}
	}
	for i := range l.Slots {
		if l.Slots[i].Name == name {
			return errors.FieldCollision(c.Name, name, l.Slots[i].Owner.Name)
		}
	}
	for p := c.ParentClass(); p != nil; p = p.ParentClass() {
		if p.Method(name) != nil {
			return errors.New(errors.PhaseLayout, errors.KindFieldShadowed).
				Decl(c.Name).
				Detail("field %q shadows method of %s", name, p.Name).
				Build()
		}
	}
	return nil
}

func alignTo(offset, align uint32) uint32 {
	return (offset + align - 1) &^ (align - 1)
}
