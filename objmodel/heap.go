package objmodel

import (
	"github.com/anhlt/micropyc/errors"
)

// ObjKind is the leading discriminant of a heap object.
type ObjKind uint8

const (
	KindFloat ObjKind = iota
	KindStr
	KindList
	KindTuple
	KindSet
	KindDict
	KindException
	KindInstance
)

var objKindNames = [...]string{
	KindFloat:     "float",
	KindStr:       "str",
	KindList:      "list",
	KindTuple:     "tuple",
	KindSet:       "set",
	KindDict:      "dict",
	KindException: "exception",
	KindInstance:  "instance",
}

func (k ObjKind) String() string {
	if int(k) < len(objKindNames) {
		return objKindNames[k]
	}
	return "unknown"
}

type box struct {
	kind  ObjKind
	f     float64
	s     string
	items []Word
}

// Heap is a model allocator for boxed values. Pointers it hands out are
// 8-byte-aligned words that satisfy Word.IsPtr, with the kind discriminant
// stored as the box's first field. It exists for testing the contract and
// for compile-time constant folding; it is not the runtime's heap.
type Heap struct {
	boxes []box
}

// NewHeap returns an empty model heap.
func NewHeap() *Heap {
	return &Heap{}
}

func (h *Heap) alloc(b box) Word {
	h.boxes = append(h.boxes, b)
	// Index 0 would collide with Null, index 0x4>>3 is fine since the
	// shifted word is idx<<3; skip the words 0x0 and 0x4 by offsetting.
	return Word(len(h.boxes)) << 3
}

func (h *Heap) lookup(w Word) (*box, bool) {
	if !w.IsPtr() {
		return nil, false
	}
	idx := int(w>>3) - 1
	if idx < 0 || idx >= len(h.boxes) {
		return nil, false
	}
	return &h.boxes[idx], true
}

// Kind returns the discriminant of a heap object.
func (h *Heap) Kind(w Word) (ObjKind, bool) {
	b, ok := h.lookup(w)
	if !ok {
		return 0, false
	}
	return b.kind, true
}

// NewFloat boxes a float.
func (h *Heap) NewFloat(f float64) Word {
	return h.alloc(box{kind: KindFloat, f: f})
}

// NewStr boxes a string.
func (h *Heap) NewStr(s string) Word {
	return h.alloc(box{kind: KindStr, s: s})
}

// NewTuple boxes a tuple of encoded values.
func (h *Heap) NewTuple(items []Word) Word {
	cp := make([]Word, len(items))
	copy(cp, items)
	return h.alloc(box{kind: KindTuple, items: cp})
}

// NewList boxes a list of encoded values.
func (h *Heap) NewList(items []Word) Word {
	cp := make([]Word, len(items))
	copy(cp, items)
	return h.alloc(box{kind: KindList, items: cp})
}

// Float checks the discriminant then reads the float payload.
func (h *Heap) Float(w Word) (float64, error) {
	b, ok := h.lookup(w)
	if !ok || b.kind != KindFloat {
		return 0, errors.New(errors.PhaseValidate, errors.KindInvalidData).
			Detail("expected float object").
			Build()
	}
	return b.f, nil
}

// Str checks the discriminant then reads the string payload.
func (h *Heap) Str(w Word) (string, error) {
	b, ok := h.lookup(w)
	if !ok || b.kind != KindStr {
		return "", errors.New(errors.PhaseValidate, errors.KindInvalidData).
			Detail("expected str object").
			Build()
	}
	return b.s, nil
}

// Items checks the discriminant then reads a container's elements.
func (h *Heap) Items(w Word) ([]Word, error) {
	b, ok := h.lookup(w)
	if !ok || (b.kind != KindTuple && b.kind != KindList) {
		return nil, errors.New(errors.PhaseValidate, errors.KindInvalidData).
			Detail("expected tuple or list object").
			Build()
	}
	return b.items, nil
}

// Int decodes an integer from either a small int or rejects; the model
// has no big-int boxes, mirroring the contract's accessor which raises
// on non-numeric heap objects.
func (h *Heap) Int(w Word) (int64, error) {
	if w.IsSmallInt() {
		return w.SmallIntValue(), nil
	}
	if w == True {
		return 1, nil
	}
	if w == False {
		return 0, nil
	}
	return 0, errors.New(errors.PhaseValidate, errors.KindInvalidData).
		Detail("expected integer value").
		Build()
}
