package codegen

import (
	"github.com/anhlt/micropyc/errors"
	"github.com/anhlt/micropyc/ir"
)

// VtableEntry is one slot of a class's dispatch table.
type VtableEntry struct {
	Name  string
	Index int

	// Introduced is the class that created the slot. The slot's C
	// function pointer type names Introduced's struct as the receiver,
	// so an implementation from a different class needs a cast.
	Introduced *ir.Class

	// Impl is the class whose implementation fills the slot for the
	// table's owner.
	Impl   *ir.Class
	Method *ir.Method
}

// NeedsCast reports whether the stored function pointer must be cast
// to the slot's declared type.
func (v *VtableEntry) NeedsCast() bool {
	return v.Impl != v.Introduced
}

// Vtable is one class's complete, flat dispatch table. Slot order is
// inherited-first, so a child table is a prefix extension of its
// parent's and an entry keeps its index in every descendant.
type Vtable struct {
	Class   *ir.Class
	Entries []VtableEntry

	// StructName is this class's C struct tag and InstName its static
	// instance. RootStructName is the pointer type stored in the root
	// struct; a subclass instance is cast to it, which is sound
	// because every table in a hierarchy has the same slot layout.
	StructName     string
	InstName       string
	RootStructName string
}

// Entry returns the named slot, or nil.
func (v *Vtable) Entry(name string) *VtableEntry {
	for i := range v.Entries {
		if v.Entries[i].Name == name {
			return &v.Entries[i]
		}
	}
	return nil
}

// Vtable computes (or returns the cached) dispatch table for a class.
// Classes with no dispatchable methods anywhere in their hierarchy get
// a nil table.
func (e *Engine) Vtable(c *ir.Class) (*Vtable, error) {
	if !e.virtualRoot[c.Root()] {
		return nil, nil
	}
	if cached, ok := e.vtables[c]; ok {
		return cached, nil
	}

	v := &Vtable{
		Class:          c,
		StructName:     cName(e.module, c.Name) + "_vtable_t",
		InstName:       cName(e.module, c.Name) + "_vtable_inst",
		RootStructName: cName(e.module, c.Root().Name) + "_vtable_t",
	}

	if parent := c.ParentClass(); parent != nil {
		pv, err := e.Vtable(parent)
		if err != nil {
			return nil, err
		}
		v.Entries = append(v.Entries, pv.Entries...)
	}

	for i := range c.Methods {
		m := &c.Methods[i]
		if !m.Virtual() {
			continue
		}
		inherited := v.Entry(m.Name)
		switch {
		case m.Override:
			if inherited == nil {
				return nil, errors.New(errors.PhaseLower, errors.KindNotFound).
					Decl(c.Name).
					Detail("override %q matches no inherited method", m.Name).
					Build()
			}
			if len(m.Params) != len(inherited.Method.Params) {
				return nil, errors.New(errors.PhaseLower, errors.KindMalformedSignature).
					Decl(c.Name).
					Detail("override %q changes arity (%d -> %d)",
						m.Name, len(inherited.Method.Params), len(m.Params)).
					Build()
			}
			inherited.Impl = c
			inherited.Method = m
		case inherited != nil:
			return nil, errors.New(errors.PhaseLower, errors.KindDuplicate).
				Decl(c.Name).
				Detail("method %q redefines %s.%s but is not marked override",
					m.Name, inherited.Introduced.Name, m.Name).
				Build()
		default:
			v.Entries = append(v.Entries, VtableEntry{
				Name:       m.Name,
				Index:      len(v.Entries),
				Introduced: c,
				Impl:       c,
				Method:     m,
			})
		}
	}

	e.vtables[c] = v
	return v, nil
}
