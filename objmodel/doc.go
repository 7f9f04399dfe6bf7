// Package objmodel defines the MicroPython object representation contract
// that all generated C must respect.
//
// # Encoding
//
// A value is one machine word, interpreted by its low bits:
//
//	Pattern            Value
//	──────────────────────────────────────────────
//	xxxx...xxx1        small integer, payload = word >> 1 (arithmetic)
//	xxxx...x010        interned string (qstr), id = word >> 3
//	xxxx...x110        immediate singleton: none, false, true
//	0x0                null slot marker (no value in slot)
//	0x4                sentinel (not handled / delete requested)
//	xxxx...x000 (≠0,4) heap object pointer, 8-byte aligned
//
// The three tag spaces never overlap: a small integer always has the low
// bit set, a qstr or immediate always has bit 1 set with bit 0 clear, and
// a heap pointer always has the low three bits clear. The sentinel and
// null words occupy pointer space values that can never be real objects.
//
// Every heap object's first word is a kind discriminant which must be
// checked before the pointer is reinterpreted as a specific kind. The
// typed accessors on Heap perform this check; generated C delegates the
// same check to the runtime's accessors (mp_obj_get_int and friends) and
// never emits a blind cast.
//
// The Word model here exists so the tag algebra is directly testable and
// so marshaling decisions are provably consistent with the runtime; the
// generated C always goes through the runtime's own macros and never
// re-derives the encoding.
package objmodel
