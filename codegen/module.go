package codegen

import (
	"go.uber.org/zap"

	"github.com/anhlt/micropyc/errors"
	"github.com/anhlt/micropyc/ir"
)

// Options configures one module's assembly.
type Options struct {
	// CallbackCapacity bounds the generated callback registry. Zero
	// selects DefaultCallbackCapacity.
	CallbackCapacity int
}

// GeneratedModule is the output of assembling one logical module.
type GeneratedModule struct {
	Name     string
	FileName string
	Source   string

	Functions []LoweredFunc
	Classes   []LoweredClass
	Externs   []LoweredExtern

	// Diagnostics holds the declarations that failed to lower. A failed
	// declaration is absent from the generated source and globals.
	Diagnostics Diagnostics
}

// AssembleModule lowers every declaration of one module and assembles
// the single C translation unit that registers it with the runtime.
// The module must already be resolved; classes are lowered parent
// first so a child's emitted struct can embed its parent's.
func AssembleModule(m *ir.Module, opts Options) (*GeneratedModule, error) {
	log := Logger()
	log.Debug("assembling module",
		zap.String("module", m.Name),
		zap.Int("functions", len(m.Functions)),
		zap.Int("classes", len(m.Classes)),
		zap.Int("externs", len(m.Externs)))

	gm := &GeneratedModule{
		Name:     m.Name,
		FileName: sanitizeName(m.Name) + ".c",
	}
	em := &emitter{}
	eng := NewEngine(m)
	reg := NewCallbackRegistry(m.Name, opts.CallbackCapacity)

	emitIncludes(em, m)

	if len(m.Classes) > 0 {
		EmitClassForwardDecls(em, m.Name, eng, m.Classes)
	}

	emitFloatHelper(em)
	if externsUsePtr(m) {
		emitPtrHelpers(em)
	}
	if externsUseCallback(m) {
		EmitCallbackSupport(em, m.Name, reg)
	}

	// Each declaration lowers into a scratch buffer so a failure
	// contributes no partial C; the failure is recorded and assembly
	// moves on to the next declaration.
	for i := range m.Functions {
		sub := &emitter{}
		lf, err := LowerFunction(sub, m.Name, &m.Functions[i])
		if err != nil {
			gm.Diagnostics.record(m.Functions[i].Name, err)
			log.Warn("skipping function",
				zap.String("decl", m.Functions[i].Name), zap.Error(err))
			continue
		}
		em.extend(sub)
		gm.Functions = append(gm.Functions, *lf)
	}

	for i := range m.Externs {
		sub := &emitter{}
		le, err := LowerExtern(sub, m.Name, &m.Externs[i], reg)
		if err != nil {
			gm.Diagnostics.record(m.Externs[i].Name, err)
			log.Warn("skipping extern",
				zap.String("decl", m.Externs[i].Name), zap.Error(err))
			continue
		}
		em.extend(sub)
		gm.Externs = append(gm.Externs, *le)
	}

	for _, c := range m.Classes {
		// A child cannot lower without its parent's struct.
		if p := c.ParentClass(); p != nil && gm.Diagnostics.Failed(p.Name) {
			gm.Diagnostics.record(c.Name, errors.New(errors.PhaseLower, errors.KindNotFound).
				Decl(c.Name).
				Detail("parent class %q failed to lower", p.Name).
				Build())
			continue
		}
		sub := &emitter{}
		lc, err := LowerClass(sub, m.Name, eng, c)
		if err != nil {
			gm.Diagnostics.record(c.Name, err)
			log.Warn("skipping class",
				zap.String("decl", c.Name), zap.Error(err))
			continue
		}
		em.extend(sub)
		gm.Classes = append(gm.Classes, *lc)
	}

	emitGlobalsTable(em, m.Name, gm)
	emitModuleRegistration(em, m.Name)

	gm.Source = em.String()
	log.Debug("module assembled",
		zap.String("module", m.Name),
		zap.Int("lines", len(em.lines)))
	return gm, nil
}

func emitIncludes(em *emitter, m *ir.Module) {
	em.linef("// Generated extension module %q. Do not edit.", m.Name)
	em.blank()
	em.line(`#include "py/runtime.h"`)
	em.line(`#include "py/obj.h"`)
	em.line(`#include "py/objtype.h"`)
	em.line("#include <stddef.h>")
	if modulePrints(m) {
		em.line(`#include "py/mpprint.h"`)
	}
	if externsUseStr(m) {
		em.line("#include <string.h>")
	}
	em.blank()
}

// The float accessor accepts ints where a float is expected, matching
// source-level numeric promotion, and still rejects every other kind.
func emitFloatHelper(em *emitter) {
	em.line("#if MICROPY_FLOAT_IMPL != MICROPY_FLOAT_IMPL_NONE")
	em.line("static inline mp_float_t mp_get_float_checked(mp_obj_t obj) {")
	em.line("    if (mp_obj_is_float(obj)) {")
	em.line("        return mp_obj_float_get(obj);")
	em.line("    }")
	em.line("    return (mp_float_t)mp_obj_get_int(obj);")
	em.line("}")
	em.line("#endif")
	em.blank()
}

func emitPtrHelpers(em *emitter) {
	em.line("static inline void *unwrap_ptr(mp_obj_t obj) {")
	em.line("    if (obj == mp_const_none) {")
	em.line("        return NULL;")
	em.line("    }")
	em.line("    return (void *)(uintptr_t)mp_obj_get_int(obj);")
	em.line("}")
	em.blank()
	em.line("static inline mp_obj_t wrap_ptr(void *ptr) {")
	em.line("    if (ptr == NULL) {")
	em.line("        return mp_const_none;")
	em.line("    }")
	em.line("    return mp_obj_new_int_from_uint((uintptr_t)ptr);")
	em.line("}")
	em.blank()
}

func modulePrints(m *ir.Module) bool {
	for _, c := range m.Classes {
		if c.WantsRepr || c.Method("__repr__") != nil || c.Method("__str__") != nil {
			return true
		}
	}
	return false
}

func externsUsePtr(m *ir.Module) bool {
	for _, e := range m.Externs {
		if e.Return == "ptr" {
			return true
		}
		for _, p := range e.Params {
			if p.Scalar == "ptr" {
				return true
			}
		}
	}
	return false
}

func externsUseStr(m *ir.Module) bool {
	for _, e := range m.Externs {
		if e.Return == "str" {
			return true
		}
	}
	return false
}

func externsUseCallback(m *ir.Module) bool {
	for _, e := range m.Externs {
		for _, p := range e.Params {
			if p.Callback {
				return true
			}
		}
	}
	return false
}

func emitGlobalsTable(em *emitter, module string, gm *GeneratedModule) {
	name := sanitizeName(module)
	em.linef("static const mp_rom_map_elem_t %s_module_globals_table[] = {", name)
	em.linef("    { MP_ROM_QSTR(MP_QSTR___name__), MP_ROM_QSTR(MP_QSTR_%s) },", name)
	for _, f := range gm.Functions {
		em.linef("    { MP_ROM_QSTR(MP_QSTR_%s), MP_ROM_PTR(&%s) },", f.Name, f.ObjName)
	}
	for _, e := range gm.Externs {
		em.linef("    { MP_ROM_QSTR(MP_QSTR_%s), MP_ROM_PTR(&%s) },", e.Name, e.ObjName)
	}
	for _, c := range gm.Classes {
		em.linef("    { MP_ROM_QSTR(MP_QSTR_%s), MP_ROM_PTR(&%s) },", c.Class.Name, c.TypeName)
	}
	em.line("};")
	em.linef("MP_DEFINE_CONST_DICT(%s_module_globals, %s_module_globals_table);", name, name)
	em.blank()
}

func emitModuleRegistration(em *emitter, module string) {
	name := sanitizeName(module)
	em.linef("const mp_obj_module_t %s_user_cmodule = {", name)
	em.line("    .base = { &mp_type_module },")
	em.linef("    .globals = (mp_obj_dict_t *)&%s_module_globals,", name)
	em.line("};")
	em.blank()
	em.linef("MP_REGISTER_MODULE(MP_QSTR_%s, %s_user_cmodule);", name, name)
}
