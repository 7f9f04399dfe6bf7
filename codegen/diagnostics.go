package codegen

import "errors"

// Diagnostics collects per-declaration lowering failures so one broken
// declaration does not abort the rest of the module. A failed
// declaration contributes no C at all; its name is retained so callers
// can tell which globals are missing from the output.
type Diagnostics struct {
	errs   []error
	failed map[string]bool
}

func (d *Diagnostics) record(decl string, err error) {
	if d.failed == nil {
		d.failed = make(map[string]bool)
	}
	d.failed[decl] = true
	d.errs = append(d.errs, err)
}

// Len returns the number of recorded failures.
func (d *Diagnostics) Len() int { return len(d.errs) }

// Errors returns the recorded failures in declaration order.
func (d *Diagnostics) Errors() []error {
	out := make([]error, len(d.errs))
	copy(out, d.errs)
	return out
}

// Failed reports whether the named declaration failed to lower.
func (d *Diagnostics) Failed(decl string) bool { return d.failed[decl] }

// Err joins the recorded failures into a single error, or nil.
func (d *Diagnostics) Err() error {
	if len(d.errs) == 0 {
		return nil
	}
	return errors.Join(d.errs...)
}
