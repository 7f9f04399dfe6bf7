package codegen

import (
	"fmt"
	"strings"
)

// emitter accumulates generated C lines.
type emitter struct {
	lines []string
}

func (e *emitter) line(s string) {
	e.lines = append(e.lines, s)
}

func (e *emitter) linef(format string, args ...any) {
	e.lines = append(e.lines, fmt.Sprintf(format, args...))
}

func (e *emitter) blank() {
	e.lines = append(e.lines, "")
}

func (e *emitter) extend(other *emitter) {
	e.lines = append(e.lines, other.lines...)
}

func (e *emitter) String() string {
	return strings.Join(e.lines, "\n")
}
