package objmodel

// Word is one encoded machine word.
type Word uint64

// Low-bit tag patterns.
const (
	smallIntTagBit Word = 0x1
	lowTagMask     Word = 0x7

	qstrTag      Word = 0x2 // ...010
	immediateTag Word = 0x6 // ...110

	// Null marks an empty slot in the two-slot attribute protocol.
	Null Word = 0x0
	// Sentinel is the reserved "not handled / delete requested" marker.
	// It is pointer-shaped but can never be a real 8-byte-aligned object.
	Sentinel Word = 0x4
)

// Immediate singleton payloads.
const (
	immNone  Word = 0
	immFalse Word = 1
	immTrue  Word = 3
)

// The three immediate singletons.
const (
	None  Word = immNone<<3 | immediateTag
	False Word = immFalse<<3 | immediateTag
	True  Word = immTrue<<3 | immediateTag
)

// SmallInt range on a 64-bit word (payload is the word shifted by one).
const (
	MaxSmallInt int64 = 1<<62 - 1
	MinSmallInt int64 = -(1 << 62)
)

// NewSmallInt encodes a small integer. Values outside the small-int range
// must be boxed; callers are expected to range-check first.
func NewSmallInt(v int64) Word {
	return Word(uint64(v)<<1) | smallIntTagBit
}

// NewQstr encodes an interned string id.
func NewQstr(id uint32) Word {
	return Word(id)<<3 | qstrTag
}

// NewBool returns the immediate for a native bool.
func NewBool(b bool) Word {
	if b {
		return True
	}
	return False
}

// IsSmallInt reports whether w encodes a small integer.
func (w Word) IsSmallInt() bool {
	return w&smallIntTagBit != 0
}

// IsQstr reports whether w encodes an interned string id.
func (w Word) IsQstr() bool {
	return w&lowTagMask == qstrTag
}

// IsImmediate reports whether w is one of the singleton immediates.
func (w Word) IsImmediate() bool {
	return w&lowTagMask == immediateTag
}

// IsSentinel reports whether w is the reserved sentinel word.
func (w Word) IsSentinel() bool {
	return w == Sentinel
}

// IsNull reports whether w is the empty-slot marker.
func (w Word) IsNull() bool {
	return w == Null
}

// IsPtr reports whether w is shaped like a heap object pointer: 8-byte
// aligned and not one of the reserved pointer-space words.
func (w Word) IsPtr() bool {
	return w&lowTagMask == 0 && w != Null && w != Sentinel
}

// SmallIntValue decodes a small integer by arithmetic shift.
// The result is meaningless if w is not a small int.
func (w Word) SmallIntValue() int64 {
	return int64(w) >> 1
}

// QstrID decodes an interned string id.
func (w Word) QstrID() uint32 {
	return uint32(w >> 3)
}

// IsTruthy reports the boolean interpretation of an immediate or small int.
func (w Word) IsTruthy() bool {
	if w.IsSmallInt() {
		return w.SmallIntValue() != 0
	}
	return w == True
}
