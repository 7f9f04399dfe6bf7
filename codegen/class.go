package codegen

import (
	"fmt"
	"strings"

	"github.com/anhlt/micropyc/errors"
	"github.com/anhlt/micropyc/ir"
	"github.com/anhlt/micropyc/objmodel"
)

// LoweredMethod records one emitted method wrapper.
type LoweredMethod struct {
	Name    string
	CName   string
	ObjName string

	Static      bool
	ClassMethod bool
}

// LoweredClass records the artifacts of one lowered class for the
// module assembler.
type LoweredClass struct {
	Class  *ir.Class
	Layout *ClassLayout
	Vtable *Vtable

	CName    string
	TypeName string

	// Methods are this class's own emitted wrappers.
	Methods []LoweredMethod

	HasAttr     bool
	HasPrint    bool
	HasBinaryOp bool
}

// EmitClassForwardDecls emits the typedef forward declarations for a
// module's classes so structs can reference each other freely. A class
// whose dispatch table cannot be computed still gets its struct
// typedef; the failure surfaces when the class itself is lowered.
func EmitClassForwardDecls(em *emitter, module string, eng *Engine, classes []*ir.Class) {
	for _, c := range classes {
		cname := cName(module, c.Name)
		em.linef("typedef struct _%s_obj_t %s_obj_t;", cname, cname)
		if vt, err := eng.Vtable(c); err == nil && vt != nil {
			em.linef("typedef struct _%s %s;", vt.StructName, vt.StructName)
		}
	}
	em.blank()
}

// LowerClass emits everything one class contributes to the translation
// unit: structs, the dispatch table, accessors, method wrappers, the
// constructor and the type definition.
func LowerClass(em *emitter, module string, eng *Engine, c *ir.Class) (*LoweredClass, error) {
	layout, err := eng.Layout(c)
	if err != nil {
		return nil, err
	}
	vt, err := eng.Vtable(c)
	if err != nil {
		return nil, err
	}

	lc := &LoweredClass{
		Class:    c,
		Layout:   layout,
		Vtable:   vt,
		CName:    cName(module, c.Name),
		TypeName: cName(module, c.Name) + "_type",
		HasAttr:  len(layout.Slots) > 0,
	}

	emitClassStructs(em, lc)
	EmitFieldTable(em, lc)
	EmitAttrHandler(em, lc)

	for i := range c.Methods {
		lm, err := lowerMethod(em, module, c, &c.Methods[i])
		if err != nil {
			return nil, err
		}
		lc.Methods = append(lc.Methods, *lm)
	}

	emitVtableInstance(em, module, lc)

	if err := EmitSpecialMethods(em, module, lc); err != nil {
		return nil, err
	}
	if err := emitMakeNew(em, module, lc); err != nil {
		return nil, err
	}
	if err := emitLocalsDict(em, module, lc); err != nil {
		return nil, err
	}
	emitTypeDefinition(em, module, lc)
	return lc, nil
}

// emitClassStructs emits the dispatch-table struct (when the hierarchy
// has one) and the instance struct. A child's instance struct embeds
// its parent's as the leading "super" member, so a child pointer
// reinterpreted as a parent pointer reads every inherited field at the
// same offset.
func emitClassStructs(em *emitter, lc *LoweredClass) {
	c := lc.Class
	if lc.Vtable != nil {
		em.linef("struct _%s {", lc.Vtable.StructName)
		for i := range lc.Vtable.Entries {
			en := &lc.Vtable.Entries[i]
			em.linef("    %s;", vtableSlotDecl(lc.CName, en))
		}
		em.line("};")
		em.blank()
	}

	em.linef("struct _%s_obj_t {", lc.CName)
	if c.ParentClass() != nil {
		em.linef("    %s super;", lc.Layout.ParentStruct)
	} else {
		em.line("    mp_obj_base_t base;")
		if lc.Vtable != nil {
			em.linef("    const %s *vtable;", lc.Vtable.StructName)
		}
	}
	for _, f := range c.Fields {
		em.linef("    %s %s;", f.Tag().CDecl(), sanitizeName(f.Name))
	}
	em.line("};")
	em.blank()
}

// vtableSlotDecl renders one function-pointer member, receiver typed
// as the table's owning class.
func vtableSlotDecl(ownerCName string, en *VtableEntry) string {
	params := []string{fmt.Sprintf("%s_obj_t *self", ownerCName)}
	for _, p := range en.Method.Params {
		params = append(params, p.Tag().CDecl()+" "+sanitizeName(p.Name))
	}
	return fmt.Sprintf("%s (*%s)(%s)",
		en.Method.ReturnTag().CDecl(), sanitizeName(en.Name), strings.Join(params, ", "))
}

// emitVtableInstance emits the statically-initialized dispatch table.
// An implementation inherited or overridden from a different class is
// cast to this class's slot type; the cast is sound because the
// receiver structs are prefix compatible.
func emitVtableInstance(em *emitter, module string, lc *LoweredClass) {
	if lc.Vtable == nil || len(lc.Vtable.Entries) == 0 {
		return
	}
	em.linef("static const %s %s = {", lc.Vtable.StructName, lc.Vtable.InstName)
	for i := range lc.Vtable.Entries {
		en := &lc.Vtable.Entries[i]
		impl := methodCName(module, en.Impl.Name, en.Name) + "_native"
		if en.Impl != lc.Class {
			params := []string{fmt.Sprintf("%s_obj_t *", lc.CName)}
			for _, p := range en.Method.Params {
				params = append(params, p.Tag().CDecl())
			}
			em.linef("    .%s = (%s (*)(%s))%s,",
				sanitizeName(en.Name), en.Method.ReturnTag().CDecl(),
				strings.Join(params, ", "), impl)
		} else {
			em.linef("    .%s = %s,", sanitizeName(en.Name), impl)
		}
	}
	em.line("};")
	em.blank()
}

// lowerMethod emits the native prototype, the wrapper and the
// descriptor for one method. Methods use the fixed and
// bounded-variadic conventions only; star parameters on methods are
// rejected.
func lowerMethod(em *emitter, module string, c *ir.Class, m *ir.Method) (*LoweredMethod, error) {
	shape, err := Classify(&m.Signature)
	if err != nil {
		return nil, errors.New(errors.PhaseLower, errors.KindMalformedSignature).
			Decl(c.Name).Path(m.Name).Cause(err).Build()
	}
	if shape.Kind == ShapeVar || shape.Kind == ShapeKw {
		return nil, errors.New(errors.PhaseLower, errors.KindUnsupported).
			Decl(c.Name).Path(m.Name).
			Detail("star parameters are not supported on methods").
			Build()
	}

	cname := methodCName(module, c.Name, m.Name)
	lm := &LoweredMethod{
		Name:        m.Name,
		CName:       cname,
		Static:      m.Static,
		ClassMethod: m.ClassMethod,
	}
	instance := !m.Static && !m.ClassMethod
	if instance {
		lm.ObjName = cname + "_obj"
	} else {
		lm.ObjName = cname + "_fun_obj"
	}

	emitMethodNativePrototype(em, module, c, m, cname, instance)

	recv := 0
	if instance {
		recv = 1
	}
	total := len(m.Params) + recv
	min := shape.Min + recv
	counted := total > maxFixedArgs || shape.Kind == ShapeVarBetween

	em.line(methodWrapperSignature(cname, m, instance, counted) + " {")
	if instance {
		if counted {
			em.linef("    %s_obj_t *self = MP_OBJ_TO_PTR(args[0]);", cName(module, c.Name))
		} else {
			em.linef("    %s_obj_t *self = MP_OBJ_TO_PTR(self_in);", cName(module, c.Name))
		}
	}
	for i, p := range m.Params {
		src := fmt.Sprintf("arg%d_obj", i)
		if counted {
			src = fmt.Sprintf("args[%d]", i+recv)
		}
		unboxed, err := unwrapParamExpr(p, src)
		if err != nil {
			return nil, errors.New(errors.PhaseLower, errors.KindUnknownType).
				Decl(c.Name).Path(m.Name, p.Name).Cause(err).Build()
		}
		name := sanitizeName(p.Name)
		if counted && p.Default != nil {
			em.linef("    %s %s = (n_args > %d) ? %s : %s;",
				p.Tag().CDecl(), name, i+recv, unboxed, defaultCExpr(p.Default, p.Tag()))
		} else {
			em.linef("    %s %s = %s;", p.Tag().CDecl(), name, unboxed)
		}
	}

	args := make([]string, 0, total)
	if instance {
		args = append(args, "self")
	}
	for _, p := range m.Params {
		args = append(args, sanitizeName(p.Name))
	}
	call := fmt.Sprintf("%s_native(%s)", cname, strings.Join(args, ", "))
	switch {
	case m.ReturnTag() == objmodel.TagVoid:
		em.linef("    %s;", call)
		em.line("    return mp_const_none;")
	default:
		em.linef("    return %s;", wrapExpr(m.ReturnTag(), call))
	}
	em.line("}")
	em.line(methodRegisterMacro(lm.ObjName, cname, min, total, counted))
	em.blank()
	return lm, nil
}

func emitMethodNativePrototype(em *emitter, module string, c *ir.Class, m *ir.Method, cname string, instance bool) {
	params := make([]string, 0, len(m.Params)+1)
	if instance {
		params = append(params, fmt.Sprintf("%s_obj_t *self", cName(module, c.Name)))
	}
	for _, p := range m.Params {
		params = append(params, p.Tag().CDecl()+" "+sanitizeName(p.Name))
	}
	decl := "void"
	if len(params) > 0 {
		decl = strings.Join(params, ", ")
	}
	em.linef("%s %s_native(%s);", m.ReturnTag().CDecl(), cname, decl)
	em.blank()
}

func methodWrapperSignature(cname string, m *ir.Method, instance, counted bool) string {
	if counted {
		return fmt.Sprintf("static mp_obj_t %s_mp(size_t n_args, const mp_obj_t *args)", cname)
	}
	var args []string
	if instance {
		args = append(args, "mp_obj_t self_in")
	}
	for i := range m.Params {
		args = append(args, fmt.Sprintf("mp_obj_t arg%d_obj", i))
	}
	if len(args) == 0 {
		return fmt.Sprintf("static mp_obj_t %s_mp(void)", cname)
	}
	return fmt.Sprintf("static mp_obj_t %s_mp(%s)", cname, strings.Join(args, ", "))
}

func methodRegisterMacro(objName, cname string, min, total int, counted bool) string {
	if counted {
		return fmt.Sprintf("MP_DEFINE_CONST_FUN_OBJ_VAR_BETWEEN(%s, %d, %d, %s_mp);",
			objName, min, total, cname)
	}
	return fmt.Sprintf("MP_DEFINE_CONST_FUN_OBJ_%d(%s, %s_mp);", total, objName, cname)
}

// emitMakeNew emits the constructor. A record class parses keyword
// arguments straight into fields; otherwise the constructor
// zero-initializes fields, installs the dispatch table and delegates
// to __init__ when declared.
func emitMakeNew(em *emitter, module string, lc *LoweredClass) error {
	if lc.Class.Record {
		return emitRecordMakeNew(em, lc)
	}

	c := lc.Class
	init := c.Method("__init__")

	em.linef("static mp_obj_t %s_make_new(const mp_obj_type_t *type, size_t n_args, size_t n_kw, const mp_obj_t *args) {", lc.CName)
	if init != nil {
		shape, err := Classify(&init.Signature)
		if err != nil {
			return err
		}
		em.linef("    mp_arg_check_num(n_args, n_kw, %d, %d, false);", shape.Min, len(init.Params))
	} else {
		em.line("    mp_arg_check_num(n_args, n_kw, 0, 0, false);")
	}
	em.blank()
	em.linef("    %s_obj_t *self = mp_obj_malloc(%s_obj_t, type);", lc.CName, lc.CName)
	emitVtableInstall(em, lc)
	emitFieldZeroing(em, lc)

	if init != nil {
		initName := methodCName(module, c.Name, "__init__")
		total := len(init.Params) + 1
		em.blank()
		if total > maxFixedArgs || hasDefaults(init) {
			em.linef("    mp_obj_t init_args[%d];", total)
			em.line("    init_args[0] = MP_OBJ_FROM_PTR(self);")
			// Only the supplied arguments exist in args; a defaulted
			// slot past n_args must not be read.
			for i := 0; i < len(init.Params); i++ {
				if init.Params[i].Default != nil {
					em.linef("    if (n_args > %d) {", i)
					em.linef("        init_args[%d] = args[%d];", i+1, i)
					em.line("    }")
				} else {
					em.linef("    init_args[%d] = args[%d];", i+1, i)
				}
			}
			em.linef("    %s_mp(n_args + 1, init_args);", initName)
		} else {
			callArgs := []string{"MP_OBJ_FROM_PTR(self)"}
			for i := 0; i < len(init.Params); i++ {
				callArgs = append(callArgs, fmt.Sprintf("args[%d]", i))
			}
			em.linef("    %s_mp(%s);", initName, strings.Join(callArgs, ", "))
		}
	}
	em.blank()
	em.line("    return MP_OBJ_FROM_PTR(self);")
	em.line("}")
	em.blank()
	return nil
}

func hasDefaults(m *ir.Method) bool {
	for _, p := range m.Params {
		if p.Default != nil {
			return true
		}
	}
	return false
}

func emitVtableInstall(em *emitter, lc *LoweredClass) {
	if lc.Vtable == nil {
		return
	}
	if lc.Class.ParentClass() != nil {
		em.linef("    self->%s = (const %s *)&%s;",
			lc.Layout.VtablePath, lc.Vtable.RootStructName, lc.Vtable.InstName)
	} else {
		em.linef("    self->%s = &%s;", lc.Layout.VtablePath, lc.Vtable.InstName)
	}
}

func emitFieldZeroing(em *emitter, lc *LoweredClass) {
	for _, s := range lc.Layout.Slots {
		switch s.Tag {
		case objmodel.TagInt:
			em.linef("    self->%s = 0;", s.Path)
		case objmodel.TagFloat:
			em.linef("    self->%s = 0.0;", s.Path)
		case objmodel.TagBool:
			em.linef("    self->%s = false;", s.Path)
		default:
			em.linef("    self->%s = mp_const_none;", s.Path)
		}
	}
}

// emitRecordMakeNew emits a keyword-capable constructor that parses
// one argument per field (inherited fields included), applying field
// defaults for omitted keywords.
func emitRecordMakeNew(em *emitter, lc *LoweredClass) error {
	slots := lc.Layout.Slots
	em.linef("static mp_obj_t %s_make_new(const mp_obj_type_t *type, size_t n_args, size_t n_kw, const mp_obj_t *args) {", lc.CName)
	em.line("    enum {")
	for _, s := range slots {
		em.linef("        ARG_%s,", s.Name)
	}
	em.line("    };")
	em.line("    static const mp_arg_t allowed_args[] = {")
	for _, s := range slots {
		def := fieldDefault(s.Owner, s.Name)
		em.linef("        %s,", recordArgSpec(s, def))
	}
	em.line("    };")
	em.blank()
	em.linef("    mp_arg_val_t parsed[%d];", len(slots))
	em.linef("    mp_arg_parse_all_kw_array(n_args, n_kw, args, %d, allowed_args, parsed);", len(slots))
	em.blank()
	em.linef("    %s_obj_t *self = mp_obj_malloc(%s_obj_t, type);", lc.CName, lc.CName)
	emitVtableInstall(em, lc)
	for _, s := range slots {
		def := fieldDefault(s.Owner, s.Name)
		switch s.Tag {
		case objmodel.TagInt:
			em.linef("    self->%s = parsed[ARG_%s].u_int;", s.Path, s.Name)
		case objmodel.TagFloat:
			// Float defaults parse as MP_ARG_OBJ with a none
			// sentinel, so the declared value applies here.
			if def != nil {
				em.linef("    self->%s = (parsed[ARG_%s].u_obj == mp_const_none) ? %s : mp_obj_get_float(parsed[ARG_%s].u_obj);",
					s.Path, s.Name, defaultCExpr(def, objmodel.TagFloat), s.Name)
			} else {
				em.linef("    self->%s = mp_obj_get_float(parsed[ARG_%s].u_obj);", s.Path, s.Name)
			}
		case objmodel.TagBool:
			em.linef("    self->%s = parsed[ARG_%s].u_bool;", s.Path, s.Name)
		default:
			if def != nil && def.Kind != ir.DefaultNone {
				em.linef("    self->%s = (parsed[ARG_%s].u_obj == mp_const_none) ? %s : parsed[ARG_%s].u_obj;",
					s.Path, s.Name, defaultBoxedExpr(def), s.Name)
			} else {
				em.linef("    self->%s = parsed[ARG_%s].u_obj;", s.Path, s.Name)
			}
		}
	}
	em.blank()
	em.line("    return MP_OBJ_FROM_PTR(self);")
	em.line("}")
	em.blank()
	return nil
}

func fieldDefault(owner *ir.Class, name string) *ir.Default {
	for _, f := range owner.Fields {
		if f.Name == name {
			return f.Default
		}
	}
	return nil
}

func recordArgSpec(s FieldSlot, def *ir.Default) string {
	switch s.Tag {
	case objmodel.TagInt:
		if def != nil {
			return fmt.Sprintf("{ MP_QSTR_%s, MP_ARG_INT, {.u_int = %d} }", s.Name, def.Int)
		}
		return fmt.Sprintf("{ MP_QSTR_%s, MP_ARG_REQUIRED | MP_ARG_INT }", s.Name)
	case objmodel.TagBool:
		if def != nil {
			val := "false"
			if def.Bool {
				val = "true"
			}
			return fmt.Sprintf("{ MP_QSTR_%s, MP_ARG_BOOL, {.u_bool = %s} }", s.Name, val)
		}
		return fmt.Sprintf("{ MP_QSTR_%s, MP_ARG_REQUIRED | MP_ARG_BOOL }", s.Name)
	default:
		if def != nil {
			return fmt.Sprintf("{ MP_QSTR_%s, MP_ARG_OBJ, {.u_obj = mp_const_none} }", s.Name)
		}
		return fmt.Sprintf("{ MP_QSTR_%s, MP_ARG_REQUIRED | MP_ARG_OBJ }", s.Name)
	}
}

// localsEntry pairs a visible method name with the wrapper descriptor
// that serves it, which may belong to an ancestor.
type localsEntry struct {
	name    string
	objName string
	static  bool
	classM  bool
	cname   string
	own     bool
}

// visibleMethods walks root to leaf collecting the most-derived
// definition of every locals-dict-eligible method name.
func visibleMethods(module string, c *ir.Class) []localsEntry {
	var chain []*ir.Class
	for p := c; p != nil; p = p.ParentClass() {
		chain = append([]*ir.Class{p}, chain...)
	}
	var order []string
	byName := make(map[string]localsEntry)
	for _, cls := range chain {
		for i := range cls.Methods {
			m := &cls.Methods[i]
			if strings.HasPrefix(m.Name, "__") && !m.Static && !m.ClassMethod {
				continue
			}
			cname := methodCName(module, cls.Name, m.Name)
			objName := cname + "_obj"
			if m.Static || m.ClassMethod {
				objName = cname + "_fun_obj"
			}
			if _, seen := byName[m.Name]; !seen {
				order = append(order, m.Name)
			}
			byName[m.Name] = localsEntry{
				name:    m.Name,
				objName: objName,
				static:  m.Static,
				classM:  m.ClassMethod,
				cname:   cname,
				own:     cls == c,
			}
		}
	}
	out := make([]localsEntry, 0, len(order))
	for _, n := range order {
		out = append(out, byName[n])
	}
	return out
}

func emitLocalsDict(em *emitter, module string, lc *LoweredClass) error {
	entries := visibleMethods(module, lc.Class)
	if len(entries) == 0 {
		return nil
	}

	// Static and class methods need a runtime wrapper descriptor so the
	// lookup machinery skips receiver binding.
	wrapped := false
	for _, en := range entries {
		if (en.static || en.classM) && en.own {
			kind := "mp_type_staticmethod"
			if en.classM {
				kind = "mp_type_classmethod"
			}
			em.linef("static const mp_rom_obj_static_class_method_t %s_obj = {", en.cname)
			em.linef("    {&%s}, MP_ROM_PTR(&%s)", kind, en.objName)
			em.line("};")
			wrapped = true
		}
	}
	if wrapped {
		em.blank()
	}

	em.linef("static const mp_rom_map_elem_t %s_locals_dict_table[] = {", lc.CName)
	for _, en := range entries {
		obj := en.objName
		if en.static || en.classM {
			obj = en.cname + "_obj"
		}
		em.linef("    { MP_ROM_QSTR(MP_QSTR_%s), MP_ROM_PTR(&%s) },", en.name, obj)
	}
	em.line("};")
	em.linef("static MP_DEFINE_CONST_DICT(%s_locals_dict, %s_locals_dict_table);", lc.CName, lc.CName)
	em.blank()
	return nil
}

func emitTypeDefinition(em *emitter, module string, lc *LoweredClass) {
	slots := []string{fmt.Sprintf("    make_new, %s_make_new", lc.CName)}
	if lc.HasAttr {
		slots = append(slots, fmt.Sprintf("    attr, %s_attr", lc.CName))
	}
	if lc.HasPrint {
		slots = append(slots, fmt.Sprintf("    print, %s_print", lc.CName))
	}
	if lc.HasBinaryOp {
		slots = append(slots, fmt.Sprintf("    binary_op, %s_binary_op", lc.CName))
	}
	if parent := lc.Class.ParentClass(); parent != nil {
		slots = append(slots, fmt.Sprintf("    parent, &%s_type", cName(module, parent.Name)))
	}
	if len(visibleMethods(module, lc.Class)) > 0 {
		slots = append(slots, fmt.Sprintf("    locals_dict, &%s_locals_dict", lc.CName))
	}

	em.line("MP_DEFINE_CONST_OBJ_TYPE(")
	em.linef("    %s,", lc.TypeName)
	em.linef("    MP_QSTR_%s,", lc.Class.Name)
	em.line("    MP_TYPE_FLAG_NONE,")
	em.line(strings.Join(slots, ",\n"))
	em.line(");")
	em.blank()
}
