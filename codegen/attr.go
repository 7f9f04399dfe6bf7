package codegen

// The runtime's attribute hook is a two-slot protocol: dest[0] ==
// MP_OBJ_NULL marks a load, a non-null dest[1] marks a store, and a
// handler that does not recognize the name reports that by writing the
// sentinel into dest[1] so the runtime falls through to the type's
// locals dict. The generator works with an explicit tagged outcome and
// only translates it into slot writes at the emission boundary.

// AttrIntent classifies one incoming attribute request.
type AttrIntent uint8

const (
	// AttrLoad reads the attribute value.
	AttrLoad AttrIntent = iota
	// AttrStore writes a new attribute value.
	AttrStore
	// AttrDelete removes the attribute; generated structs never
	// support it.
	AttrDelete
)

// ClassifyAttrRequest derives the intent from the two incoming slots.
func ClassifyAttrRequest(dest0Null, dest1Null bool) AttrIntent {
	if dest0Null {
		return AttrLoad
	}
	if !dest1Null {
		return AttrStore
	}
	return AttrDelete
}

// AttrOutcome is the result of dispatching one attribute request.
type AttrOutcome uint8

const (
	// AttrHandled: the request was satisfied; for a store the handler
	// clears dest[0] to signal success.
	AttrHandled AttrOutcome = iota
	// AttrNotHandled: the name is not a field; the handler writes the
	// sentinel so lookup continues in the locals dict.
	AttrNotHandled
	// AttrRejected: the name is a field but the intent is unsupported
	// (deletes); the handler leaves both slots untouched so the
	// runtime raises.
	AttrRejected
)

func (o AttrOutcome) String() string {
	switch o {
	case AttrHandled:
		return "handled"
	case AttrNotHandled:
		return "not_handled"
	case AttrRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// DispatchAttr resolves one request against a class layout. This is
// the semantic model the emitted C handler implements.
func DispatchAttr(l *ClassLayout, name string, intent AttrIntent) AttrOutcome {
	if l.Slot(name) == nil {
		return AttrNotHandled
	}
	if intent == AttrDelete {
		return AttrRejected
	}
	return AttrHandled
}

// EmitFieldTable emits the class's field descriptor table: one
// (interned name, byte offset, type id) row per accessible field,
// inherited fields included, terminated by a null name.
func EmitFieldTable(em *emitter, lc *LoweredClass) {
	if len(lc.Layout.Slots) == 0 {
		return
	}
	em.line("typedef struct {")
	em.line("    qstr name;")
	em.line("    uint16_t offset;")
	em.line("    uint8_t type;")
	em.linef("} %s_field_t;", lc.CName)
	em.blank()

	em.linef("static const %s_field_t %s_fields[] = {", lc.CName, lc.CName)
	for _, s := range lc.Layout.Slots {
		em.linef("    { MP_QSTR_%s, offsetof(%s_obj_t, %s), %d },",
			s.Name, lc.CName, s.Path, s.Tag.FieldTypeID())
	}
	em.line("    { MP_QSTR_NULL, 0, 0 }")
	em.line("};")
	em.blank()
}

// EmitAttrHandler emits the attribute hook. The generated code scans
// the field table once; a hit dispatches on the stored type id through
// the offset, a miss defers to the locals dict.
func EmitAttrHandler(em *emitter, lc *LoweredClass) {
	if len(lc.Layout.Slots) == 0 {
		return
	}
	em.linef("static void %s_attr(mp_obj_t self_in, qstr attr, mp_obj_t *dest) {", lc.CName)
	em.linef("    %s_obj_t *self = MP_OBJ_TO_PTR(self_in);", lc.CName)
	em.blank()
	em.linef("    for (const %s_field_t *f = %s_fields; f->name != MP_QSTR_NULL; f++) {", lc.CName, lc.CName)
	em.line("        if (f->name == attr) {")
	em.line("            if (dest[0] == MP_OBJ_NULL) {")
	em.line("                char *ptr = (char *)self + f->offset;")
	em.line("                switch (f->type) {")
	em.line("                    case 0: dest[0] = *(mp_obj_t *)ptr; break;")
	em.line("                    case 1: dest[0] = mp_obj_new_int(*(mp_int_t *)ptr); break;")
	em.line("                    case 2: dest[0] = mp_obj_new_float(*(mp_float_t *)ptr); break;")
	em.line("                    case 3: dest[0] = *(bool *)ptr ? mp_const_true : mp_const_false; break;")
	em.line("                }")
	em.line("            } else if (dest[1] != MP_OBJ_NULL) {")
	em.line("                char *ptr = (char *)self + f->offset;")
	em.line("                switch (f->type) {")
	em.line("                    case 0: *(mp_obj_t *)ptr = dest[1]; break;")
	em.line("                    case 1: *(mp_int_t *)ptr = mp_obj_get_int(dest[1]); break;")
	em.line("                    case 2: *(mp_float_t *)ptr = mp_obj_get_float(dest[1]); break;")
	em.line("                    case 3: *(bool *)ptr = mp_obj_is_true(dest[1]); break;")
	em.line("                }")
	em.line("                dest[0] = MP_OBJ_NULL;")
	em.line("            }")
	em.line("            return;")
	em.line("        }")
	em.line("    }")
	em.blank()
	em.line("    dest[1] = MP_OBJ_SENTINEL;")
	em.line("}")
	em.blank()
}
