package ir

import (
	"github.com/anhlt/micropyc/errors"
)

// Resolve links parent pointers, checks declaration-level consistency
// and orders classes so that every parent precedes its children. It is
// the only mutation a declaration set undergoes; after a successful
// Resolve the module is treated as immutable.
func (m *Module) Resolve() error {
	seen := make(map[string]bool)
	for _, f := range m.Functions {
		if seen[f.Name] {
			return errors.Duplicate(errors.PhaseValidate, "function", f.Name)
		}
		seen[f.Name] = true
	}

	byName := make(map[string]*Class, len(m.Classes))
	for _, c := range m.Classes {
		if seen[c.Name] || byName[c.Name] != nil {
			return errors.Duplicate(errors.PhaseValidate, "class", c.Name)
		}
		byName[c.Name] = c
	}

	for _, e := range m.Externs {
		if seen[e.Name] {
			return errors.Duplicate(errors.PhaseValidate, "extern", e.Name)
		}
		seen[e.Name] = true
	}

	for _, c := range m.Classes {
		if c.Parent == "" {
			c.parent = nil
			continue
		}
		p, ok := byName[c.Parent]
		if !ok {
			return errors.New(errors.PhaseValidate, errors.KindNotFound).
				Decl(c.Name).
				Detail("parent class %q not declared", c.Parent).
				Build()
		}
		if p == c {
			return errors.New(errors.PhaseValidate, errors.KindInvalidData).
				Decl(c.Name).
				Detail("class inherits from itself").
				Build()
		}
		c.parent = p
	}

	// Cycle check: walking up from any class must terminate.
	for _, c := range m.Classes {
		slow, fast := c, c
		for fast != nil && fast.parent != nil {
			slow = slow.parent
			fast = fast.parent.parent
			if slow == fast {
				return errors.New(errors.PhaseValidate, errors.KindInvalidData).
					Decl(c.Name).
					Detail("inheritance cycle").
					Build()
			}
		}
	}

	m.sortClasses()
	return nil
}

// sortClasses orders parents before children, preserving declaration
// order among unrelated classes.
func (m *Module) sortClasses() {
	ordered := make([]*Class, 0, len(m.Classes))
	placed := make(map[*Class]bool, len(m.Classes))

	var place func(c *Class)
	place = func(c *Class) {
		if placed[c] {
			return
		}
		if c.parent != nil {
			place(c.parent)
		}
		placed[c] = true
		ordered = append(ordered, c)
	}

	for _, c := range m.Classes {
		place(c)
	}
	m.Classes = ordered
}
