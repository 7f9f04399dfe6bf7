package codegen

import (
	"fmt"
	"strings"

	"github.com/anhlt/micropyc/errors"
	"github.com/anhlt/micropyc/ir"
	"github.com/anhlt/micropyc/objmodel"
)

// LoweredExtern records one emitted extern binding.
type LoweredExtern struct {
	Name    string
	CName   string
	ObjName string
}

// LowerExtern emits the wrapper binding an already-implemented C
// function into the module. Unlike lowered functions, the native
// symbol preexists; the wrapper converts between encoded values and
// the declared C scalar types and calls it by its real name.
func LowerExtern(em *emitter, module string, ext *ir.Extern, reg *CallbackRegistry) (*LoweredExtern, error) {
	cname := cName(module, ext.Name)
	le := &LoweredExtern{
		Name:    ext.Name,
		CName:   cname,
		ObjName: cname + "_obj",
	}

	ret, err := externScalar(ext.Name, ext.Return)
	if err != nil {
		return nil, err
	}
	params := make([]objmodel.CScalar, len(ext.Params))
	for i, p := range ext.Params {
		if p.Callback {
			continue
		}
		s, err := externScalar(ext.Name, p.Scalar)
		if err != nil {
			return nil, errors.New(errors.PhaseLower, errors.KindUnknownType).
				Decl(ext.Name).Path(p.Name).Cause(err).Build()
		}
		params[i] = s
	}

	if cbIndex(ext) >= 0 {
		if err := lowerCallbackExtern(em, module, ext, params, le, reg); err != nil {
			return nil, err
		}
		return le, nil
	}

	n := len(ext.Params)
	min := requiredExternArgs(ext)
	counted := n > maxFixedArgs || min < n

	em.line(externSignature(cname, n, counted) + " {")
	for i, p := range ext.Params {
		src := fmt.Sprintf("arg%d_obj", i)
		if counted {
			src = fmt.Sprintf("args[%d]", i)
		}
		em.linef("    %s", externArgConversion(p, params[i], src, counted, i))
	}
	callArgs := make([]string, n)
	for i, p := range ext.Params {
		callArgs[i] = "c_" + sanitizeName(p.Name)
	}
	emitExternCall(em, ext.CName, ret, strings.Join(callArgs, ", "))
	em.line("}")
	if counted {
		em.linef("static MP_DEFINE_CONST_FUN_OBJ_VAR_BETWEEN(%s, %d, %d, %s);",
			le.ObjName, min, n, cname)
	} else {
		em.linef("static MP_DEFINE_CONST_FUN_OBJ_%d(%s, %s);", n, le.ObjName, cname)
	}
	em.blank()
	return le, nil
}

func externScalar(decl, name string) (objmodel.CScalar, error) {
	if name == "" {
		return objmodel.CVoid, nil
	}
	s, ok := objmodel.ScalarFromName(name)
	if !ok {
		return 0, errors.New(errors.PhaseLower, errors.KindUnknownType).
			Decl(decl).TypeName(name).
			Detail("unknown C scalar type").
			Build()
	}
	return s, nil
}

func cbIndex(ext *ir.Extern) int {
	for i, p := range ext.Params {
		if p.Callback {
			return i
		}
	}
	return -1
}

func requiredExternArgs(ext *ir.Extern) int {
	n := 0
	for _, p := range ext.Params {
		if !p.Optional {
			n++
		}
	}
	return n
}

func externSignature(cname string, n int, counted bool) string {
	if counted {
		return fmt.Sprintf("static mp_obj_t %s(size_t n_args, const mp_obj_t *args)", cname)
	}
	if n == 0 {
		return fmt.Sprintf("static mp_obj_t %s(void)", cname)
	}
	args := make([]string, n)
	for i := range args {
		args[i] = fmt.Sprintf("mp_obj_t arg%d_obj", i)
	}
	return fmt.Sprintf("static mp_obj_t %s(%s)", cname, strings.Join(args, ", "))
}

// externArgConversion declares the native local for one parameter. An
// optional parameter maps the none singleton (or an omitted trailing
// argument) to the scalar's null value.
func externArgConversion(p ir.ExternParam, s objmodel.CScalar, src string, counted bool, index int) string {
	name := "c_" + sanitizeName(p.Name)
	decl := s.CDecl()
	unwrap := unwrapScalarExpr(s, src)
	if !p.Optional {
		return fmt.Sprintf("%s %s = %s;", decl, name, unwrap)
	}
	null := scalarNull(s)
	if counted {
		return fmt.Sprintf("%s %s = (n_args > %d && %s != mp_const_none) ? %s : %s;",
			decl, name, index, src, unwrap, null)
	}
	return fmt.Sprintf("%s %s = (%s == mp_const_none) ? %s : %s;", decl, name, src, null, unwrap)
}

func scalarNull(s objmodel.CScalar) string {
	switch s {
	case objmodel.CStr, objmodel.CPtr:
		return "NULL"
	case objmodel.CFloat, objmodel.CDouble:
		return "0.0"
	case objmodel.CBool:
		return "false"
	default:
		return "0"
	}
}

func emitExternCall(em *emitter, symbol string, ret objmodel.CScalar, args string) {
	if ret == objmodel.CVoid {
		em.linef("    %s(%s);", symbol, args)
		em.line("    return mp_const_none;")
		return
	}
	em.linef("    %s result = %s(%s);", ret.CDecl(), symbol, args)
	em.linef("    return %s;", wrapScalarExpr(ret, "result"))
}

// lowerCallbackExtern emits the trampoline plus a wrapper that claims
// a registry slot for the passed callable and forwards the slot handle
// through the native function's user-data parameter.
func lowerCallbackExtern(em *emitter, module string, ext *ir.Extern, params []objmodel.CScalar, le *LoweredExtern, reg *CallbackRegistry) error {
	cb := cbIndex(ext)
	tramp := trampolineName(le.CName, ext.Params[cb].Name)
	if _, err := reg.Register(tramp); err != nil {
		return err
	}
	emitTrampoline(em, module, tramp)

	n := len(ext.Params)
	min := requiredExternArgs(ext)
	em.linef("static mp_obj_t %s(size_t n_args, const mp_obj_t *args) {", le.CName)
	for i, p := range ext.Params {
		if i == cb {
			em.linef("    mp_obj_t callback = args[%d];", i)
			continue
		}
		em.linef("    %s", externArgConversion(p, params[i], fmt.Sprintf("args[%d]", i), true, i))
	}
	emitCallbackStore(em, module)

	callArgs := make([]string, n)
	for i, p := range ext.Params {
		switch {
		case i == cb:
			callArgs[i] = tramp
		case p.Name == "user_data":
			callArgs[i] = "(void *)(intptr_t)idx"
		default:
			callArgs[i] = "c_" + sanitizeName(p.Name)
		}
	}
	ret, err := externScalar(ext.Name, ext.Return)
	if err != nil {
		return err
	}
	emitExternCall(em, ext.CName, ret, strings.Join(callArgs, ", "))
	em.line("}")
	em.linef("static MP_DEFINE_CONST_FUN_OBJ_VAR_BETWEEN(%s, %d, %d, %s);", le.ObjName, min, n, le.CName)
	em.blank()
	return nil
}
