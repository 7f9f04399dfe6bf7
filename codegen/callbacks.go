package codegen

import (
	"fmt"
	"strings"

	"github.com/anhlt/micropyc/errors"
)

// DefaultCallbackCapacity is the registry size used when the project
// configuration does not set one.
const DefaultCallbackCapacity = 32

// CallbackRegistry tracks the callback slots a module's generated code
// will own at runtime. The registry is bounded: registration past the
// configured capacity fails with a capacity error instead of silently
// growing, because the generated C backs the slots with a fixed-size
// array in VM state.
type CallbackRegistry struct {
	module   string
	capacity int
	handles  []string
}

// NewCallbackRegistry returns a registry for one module.
func NewCallbackRegistry(module string, capacity int) *CallbackRegistry {
	if capacity <= 0 {
		capacity = DefaultCallbackCapacity
	}
	return &CallbackRegistry{module: module, capacity: capacity}
}

// Capacity returns the configured slot count.
func (r *CallbackRegistry) Capacity() int { return r.capacity }

// Len returns the number of registered trampolines.
func (r *CallbackRegistry) Len() int { return len(r.handles) }

// Register claims a slot for a trampoline and returns its stable
// handle. Handles are dense and never reused within a run.
func (r *CallbackRegistry) Register(trampoline string) (int, error) {
	if len(r.handles) >= r.capacity {
		return 0, errors.CapacityExceeded("callback registry", r.capacity)
	}
	r.handles = append(r.handles, trampoline)
	return len(r.handles) - 1, nil
}

// Handles returns the registered trampoline names in handle order.
func (r *CallbackRegistry) Handles() []string {
	out := make([]string, len(r.handles))
	copy(out, r.handles)
	return out
}

// EmitCallbackSupport emits the registry backing the module's callback
// slots. The slot array lives in VM state via MP_REGISTER_ROOT_POINTER
// so a stored callable stays alive for as long as the native side may
// fire it.
func EmitCallbackSupport(em *emitter, module string, r *CallbackRegistry) {
	upper := strings.ToUpper(sanitizeName(module))
	name := sanitizeName(module)
	em.linef("#define %s_MAX_CALLBACKS %d", upper, r.Capacity())
	em.linef("MP_REGISTER_ROOT_POINTER(mp_obj_t %s_cb_registry[%s_MAX_CALLBACKS]);", name, upper)
	em.linef("static int %s_cb_count = 0;", name)
	em.blank()
}

// emitCallbackStore emits the capacity-checked slot claim inside a
// wrapper that accepted a callable.
func emitCallbackStore(em *emitter, module string) {
	upper := strings.ToUpper(sanitizeName(module))
	name := sanitizeName(module)
	em.linef("    if (%s_cb_count >= %s_MAX_CALLBACKS) {", name, upper)
	em.line("        mp_raise_msg(&mp_type_RuntimeError, MP_ERROR_TEXT(\"too many event callbacks\"));")
	em.line("    }")
	em.linef("    int idx = %s_cb_count++;", name)
	em.linef("    MP_STATE_VM(%s_cb_registry)[idx] = callback;", name)
}

// emitTrampoline emits the native-to-encoded bridge for one callback
// parameter. The native side passes the slot handle back through its
// user-data pointer; the trampoline recovers it and invokes the stored
// callable.
func emitTrampoline(em *emitter, module, trampoline string) {
	name := sanitizeName(module)
	em.linef("static void %s(void *p0) {", trampoline)
	em.line("    int idx = (int)(intptr_t)p0;")
	em.linef("    if (idx >= 0 && idx < %s_cb_count) {", name)
	em.linef("        mp_obj_t cb = MP_STATE_VM(%s_cb_registry)[idx];", name)
	em.line("        mp_call_function_0(cb);")
	em.line("    }")
	em.line("}")
	em.blank()
}

func trampolineName(cname, param string) string {
	return fmt.Sprintf("%s_%s_trampoline", cname, sanitizeName(param))
}
