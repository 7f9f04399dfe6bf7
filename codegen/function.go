package codegen

import (
	"fmt"
	"strings"

	"github.com/anhlt/micropyc/errors"
	"github.com/anhlt/micropyc/ir"
	"github.com/anhlt/micropyc/objmodel"
)

// LoweredFunc records the artifacts of one lowered function for the
// module assembler.
type LoweredFunc struct {
	Name    string
	CName   string
	ObjName string
	Shape   Shape
}

// LowerFunction emits the native prototype, the encoding wrapper and
// the descriptor definition for one module-level function.
//
// The wrapper owns all value conversion: it unboxes arguments, applies
// literal defaults for omitted trailing arguments, packs star
// arguments, calls the native implementation and boxes the result. The
// native function sees only plain C types.
func LowerFunction(em *emitter, module string, sig *ir.Signature) (*LoweredFunc, error) {
	shape, err := Classify(sig)
	if err != nil {
		return nil, err
	}

	cname := cName(module, sig.Name)
	lf := &LoweredFunc{
		Name:    sig.Name,
		CName:   cname,
		ObjName: cname + "_obj",
		Shape:   shape,
	}

	tupleTags := sig.TupleReturn()
	if tupleTags != nil {
		emitTupleRetStruct(em, cname, tupleTags)
	}

	em.line(nativePrototype(cname, sig, tupleTags) + ";")
	em.blank()

	em.line(wrapperSignature(cname, shape) + " {")
	if err := emitUnboxArgs(em, sig, shape); err != nil {
		return nil, err
	}
	emitStarPacking(em, sig, shape)
	emitNativeCall(em, cname, sig, tupleTags)
	em.line("}")
	em.line(registerMacro(lf.ObjName, cname, shape))
	em.blank()

	return lf, nil
}

// nativePrototype renders the extern declaration of the native
// implementation the wrapper calls into.
func nativePrototype(cname string, sig *ir.Signature, tupleTags []objmodel.TypeTag) string {
	ret := sig.ReturnTag().CDecl()
	if tupleTags != nil {
		ret = cname + "_ret_t"
	}
	params := make([]string, 0, len(sig.Params))
	for _, p := range sig.Params {
		decl := "mp_obj_t"
		if p.Role == ir.Positional {
			decl = p.Tag().CDecl()
		}
		params = append(params, fmt.Sprintf("%s %s", decl, sanitizeName(p.Name)))
	}
	if len(params) == 0 {
		return fmt.Sprintf("%s %s_native(void)", ret, cname)
	}
	return fmt.Sprintf("%s %s_native(%s)", ret, cname, strings.Join(params, ", "))
}

func emitTupleRetStruct(em *emitter, cname string, tags []objmodel.TypeTag) {
	em.linef("typedef struct {")
	for i, t := range tags {
		em.linef("    %s f%d;", t.CDecl(), i)
	}
	em.linef("} %s_ret_t;", cname)
	em.blank()
}

// wrapperSignature renders the C signature the calling convention
// demands for the shape.
func wrapperSignature(cname string, shape Shape) string {
	switch shape.Kind {
	case ShapeKw:
		return fmt.Sprintf(
			"static mp_obj_t %s(size_t n_args, const mp_obj_t *pos_args, mp_map_t *kw_args)",
			cname)
	case ShapeVar, ShapeVarBetween:
		return fmt.Sprintf("static mp_obj_t %s(size_t n_args, const mp_obj_t *args)", cname)
	}
	// Fixed: up to three named object arguments, then the array form.
	if shape.Min > maxFixedArgs {
		return fmt.Sprintf("static mp_obj_t %s(size_t n_args, const mp_obj_t *args)", cname)
	}
	if shape.Min == 0 {
		return fmt.Sprintf("static mp_obj_t %s(void)", cname)
	}
	args := make([]string, shape.Min)
	for i := range args {
		args[i] = fmt.Sprintf("mp_obj_t arg%d_obj", i)
	}
	return fmt.Sprintf("static mp_obj_t %s(%s)", cname, strings.Join(args, ", "))
}

// registerMacro renders the descriptor definition binding the wrapper
// to its calling convention.
func registerMacro(objName, cname string, shape Shape) string {
	switch shape.Kind {
	case ShapeKw:
		return fmt.Sprintf("MP_DEFINE_CONST_FUN_OBJ_KW(%s, %d, %s);", objName, shape.Min, cname)
	case ShapeVar:
		return fmt.Sprintf("MP_DEFINE_CONST_FUN_OBJ_VAR(%s, %d, %s);", objName, shape.Min, cname)
	case ShapeVarBetween:
		return fmt.Sprintf("MP_DEFINE_CONST_FUN_OBJ_VAR_BETWEEN(%s, %d, %d, %s);",
			objName, shape.Min, shape.Max, cname)
	}
	if shape.Min > maxFixedArgs {
		return fmt.Sprintf("MP_DEFINE_CONST_FUN_OBJ_VAR_BETWEEN(%s, %d, %d, %s);",
			objName, shape.Min, shape.Min, cname)
	}
	return fmt.Sprintf("MP_DEFINE_CONST_FUN_OBJ_%d(%s, %s);", shape.Min, objName, cname)
}

// emitUnboxArgs declares one native local per positional parameter.
func emitUnboxArgs(em *emitter, sig *ir.Signature, shape Shape) error {
	array := "args"
	if shape.Kind == ShapeKw {
		array = "pos_args"
	}
	counted := shape.Kind != ShapeFixed || shape.Min > maxFixedArgs

	i := 0
	for _, p := range sig.Params {
		if p.Role != ir.Positional {
			continue
		}
		name := sanitizeName(p.Name)
		src := fmt.Sprintf("%s[%d]", array, i)
		if shape.Kind == ShapeFixed && shape.Min <= maxFixedArgs {
			src = fmt.Sprintf("arg%d_obj", i)
		}
		unboxed, err := unwrapParamExpr(p, src)
		if err != nil {
			return errors.New(errors.PhaseLower, errors.KindUnknownType).
				Decl(sig.Name).Path(p.Name).Cause(err).Build()
		}
		decl := p.Tag().CDecl()
		if counted && p.Default != nil {
			// Omitted trailing arguments take their literal default.
			em.linef("    %s %s = (n_args > %d) ? %s : %s;",
				decl, name, i, unboxed, defaultCExpr(p.Default, p.Tag()))
		} else {
			em.linef("    %s %s = %s;", decl, name, unboxed)
		}
		i++
	}
	return nil
}

// emitStarPacking materializes *args as a tuple of the argument tail
// and **kwargs as a dict copied from the keyword map.
func emitStarPacking(em *emitter, sig *ir.Signature, shape Shape) {
	array := "args"
	if shape.Kind == ShapeKw {
		array = "pos_args"
	}
	n := len(PositionalParams(sig))

	if shape.StarArgs != "" {
		name := "_star_" + sanitizeName(shape.StarArgs)
		em.linef("    mp_obj_t %s = mp_obj_new_tuple(n_args > %d ? n_args - %d : 0, n_args > %d ? %s + %d : NULL);",
			name, n, n, n, array, n)
	}
	if shape.StarKwargs != "" {
		name := "_star_" + sanitizeName(shape.StarKwargs)
		em.linef("    mp_obj_t %s = mp_obj_new_dict(kw_args ? kw_args->used : 0);", name)
		em.line("    if (kw_args) {")
		em.line("        for (size_t i = 0; i < kw_args->alloc; i++) {")
		em.line("            if (mp_map_slot_is_filled(kw_args, i)) {")
		em.linef("                mp_obj_dict_store(%s, kw_args->table[i].key, kw_args->table[i].value);", name)
		em.line("            }")
		em.line("        }")
		em.line("    }")
	}
}

// emitNativeCall calls the native implementation and boxes the result.
func emitNativeCall(em *emitter, cname string, sig *ir.Signature, tupleTags []objmodel.TypeTag) {
	args := make([]string, 0, len(sig.Params))
	for _, p := range sig.Params {
		name := sanitizeName(p.Name)
		if p.Role != ir.Positional {
			name = "_star_" + name
		}
		args = append(args, name)
	}
	call := fmt.Sprintf("%s_native(%s)", cname, strings.Join(args, ", "))

	switch {
	case tupleTags != nil:
		em.linef("    %s_ret_t _ret = %s;", cname, call)
		items := make([]string, len(tupleTags))
		for i, t := range tupleTags {
			items[i] = wrapExpr(t, fmt.Sprintf("_ret.f%d", i))
		}
		em.linef("    mp_obj_t _ret_items[] = {%s};", strings.Join(items, ", "))
		em.linef("    return mp_obj_new_tuple(%d, _ret_items);", len(tupleTags))
	case sig.ReturnTag() == objmodel.TagVoid:
		em.linef("    %s;", call)
		em.line("    return mp_const_none;")
	default:
		em.linef("    return %s;", wrapExpr(sig.ReturnTag(), call))
	}
}
