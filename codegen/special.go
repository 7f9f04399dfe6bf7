package codegen

import (
	"strings"

	"github.com/anhlt/micropyc/objmodel"
)

// EmitSpecialMethods emits the per-class runtime hooks: the print
// handler when string rendering is requested (or a __repr__/__str__
// method is declared) and the binary-op handler when equality is
// requested (or __eq__ is declared).
func EmitSpecialMethods(em *emitter, module string, lc *LoweredClass) error {
	c := lc.Class

	userRepr := c.Method("__repr__")
	userStr := c.Method("__str__")
	switch {
	case userRepr != nil || userStr != nil:
		emitUserPrint(em, module, lc, userStr != nil, userRepr != nil)
		lc.HasPrint = true
	case c.WantsRepr:
		emitStructuralPrint(em, lc)
		lc.HasPrint = true
	}

	userEq := c.Method("__eq__")
	switch {
	case userEq != nil:
		emitUserBinaryOp(em, module, lc)
		lc.HasBinaryOp = true
	case c.WantsEq:
		emitStructuralEq(em, lc)
		lc.HasBinaryOp = true
	}
	return nil
}

// emitUserPrint routes the print hook to the declared __str__ and/or
// __repr__ wrappers, honoring the requested print kind.
func emitUserPrint(em *emitter, module string, lc *LoweredClass, hasStr, hasRepr bool) {
	em.linef("static void %s_print(const mp_print_t *print, mp_obj_t self_in, mp_print_kind_t kind) {", lc.CName)
	strName := methodCName(module, lc.Class.Name, "__str__")
	reprName := methodCName(module, lc.Class.Name, "__repr__")
	switch {
	case hasStr && hasRepr:
		em.line("    mp_obj_t result;")
		em.line("    if (kind == PRINT_STR) {")
		em.linef("        result = %s_mp(self_in);", strName)
		em.line("    } else {")
		em.linef("        result = %s_mp(self_in);", reprName)
		em.line("    }")
		em.line("    mp_obj_print_helper(print, result, PRINT_STR);")
	case hasStr:
		em.line("    (void)kind;")
		em.linef("    mp_obj_t result = %s_mp(self_in);", strName)
		em.line("    mp_obj_print_helper(print, result, PRINT_STR);")
	default:
		em.line("    (void)kind;")
		em.linef("    mp_obj_t result = %s_mp(self_in);", reprName)
		em.line("    mp_obj_print_helper(print, result, PRINT_STR);")
	}
	em.line("}")
	em.blank()
}

// emitStructuralPrint renders "Name(field=value, ...)" over every
// accessible field.
func emitStructuralPrint(em *emitter, lc *LoweredClass) {
	em.linef("static void %s_print(const mp_print_t *print, mp_obj_t self_in, mp_print_kind_t kind) {", lc.CName)
	em.line("    (void)kind;")
	em.linef("    %s_obj_t *self = MP_OBJ_TO_PTR(self_in);", lc.CName)
	em.linef("    mp_printf(print, \"%s(\");", lc.Class.Name)
	for i, s := range lc.Layout.Slots {
		sep := ""
		if i > 0 {
			sep = ", "
		}
		switch s.Tag {
		case objmodel.TagInt:
			em.linef("    mp_printf(print, \"%s%s=%%d\", (int)self->%s);", sep, s.Name, s.Path)
		case objmodel.TagFloat:
			em.linef("    mp_printf(print, \"%s%s=\");", sep, s.Name)
			em.linef("    mp_obj_print_helper(print, mp_obj_new_float(self->%s), PRINT_REPR);", s.Path)
		case objmodel.TagBool:
			em.linef("    mp_printf(print, \"%s%s=%%s\", self->%s ? \"True\" : \"False\");", sep, s.Name, s.Path)
		default:
			em.linef("    mp_printf(print, \"%s%s=\");", sep, s.Name)
			em.linef("    mp_obj_print_helper(print, self->%s, PRINT_REPR);", s.Path)
		}
	}
	em.line("    mp_printf(print, \")\");")
	em.line("}")
	em.blank()
}

// emitUserBinaryOp routes equality to the declared __eq__ wrapper.
func emitUserBinaryOp(em *emitter, module string, lc *LoweredClass) {
	eqName := methodCName(module, lc.Class.Name, "__eq__")
	em.linef("static mp_obj_t %s_binary_op(mp_binary_op_t op, mp_obj_t lhs_in, mp_obj_t rhs_in) {", lc.CName)
	em.line("    if (op == MP_BINARY_OP_EQUAL) {")
	em.linef("        return %s_mp(lhs_in, rhs_in);", eqName)
	em.line("    }")
	em.line("    return MP_OBJ_NULL;")
	em.line("}")
	em.blank()
}

// emitStructuralEq compares every accessible field; a right-hand side
// of a different type compares unequal rather than raising.
func emitStructuralEq(em *emitter, lc *LoweredClass) {
	em.linef("static mp_obj_t %s_binary_op(mp_binary_op_t op, mp_obj_t lhs_in, mp_obj_t rhs_in) {", lc.CName)
	em.line("    if (op == MP_BINARY_OP_EQUAL) {")
	em.line("        if (!mp_obj_is_type(rhs_in, mp_obj_get_type(lhs_in))) {")
	em.line("            return mp_const_false;")
	em.line("        }")
	em.linef("        %s_obj_t *lhs = MP_OBJ_TO_PTR(lhs_in);", lc.CName)
	em.linef("        %s_obj_t *rhs = MP_OBJ_TO_PTR(rhs_in);", lc.CName)
	conds := make([]string, 0, len(lc.Layout.Slots))
	for _, s := range lc.Layout.Slots {
		if s.Tag == objmodel.TagObj {
			conds = append(conds, "mp_obj_equal(lhs->"+s.Path+", rhs->"+s.Path+")")
		} else {
			conds = append(conds, "lhs->"+s.Path+" == rhs->"+s.Path)
		}
	}
	if len(conds) == 0 {
		em.line("        return mp_const_true;")
	} else {
		em.line("        return mp_obj_new_bool(")
		em.linef("            %s", strings.Join(conds, " &&\n            "))
		em.line("        );")
	}
	em.line("    }")
	em.line("    return MP_OBJ_NULL;")
	em.line("}")
	em.blank()
}
