package objmodel

import "testing"

// representative words across all encoding schemes
func sampleWords(h *Heap) map[string]Word {
	return map[string]Word{
		"small_zero":     NewSmallInt(0),
		"small_one":      NewSmallInt(1),
		"small_neg":      NewSmallInt(-7),
		"small_max":      NewSmallInt(MaxSmallInt),
		"small_min":      NewSmallInt(MinSmallInt),
		"qstr_zero":      NewQstr(0),
		"qstr_big":       NewQstr(1 << 20),
		"none":           None,
		"false":          False,
		"true":           True,
		"sentinel":       Sentinel,
		"null":           Null,
		"heap_float":     h.NewFloat(1.5),
		"heap_str":       h.NewStr("hi"),
		"heap_tuple":     h.NewTuple([]Word{NewSmallInt(1)}),
		"heap_list_deep": h.NewList([]Word{None, True}),
	}
}

func TestTagSpaceDisjoint(t *testing.T) {
	h := NewHeap()
	for name, w := range sampleWords(h) {
		t.Run(name, func(t *testing.T) {
			classes := 0
			if w.IsSmallInt() {
				classes++
			}
			if w.IsQstr() {
				classes++
			}
			if w.IsImmediate() {
				classes++
			}
			if w.IsSentinel() {
				classes++
			}
			if w.IsNull() {
				classes++
			}
			if w.IsPtr() {
				classes++
			}
			if classes != 1 {
				t.Errorf("word %#x matched %d tag classes, want exactly 1", uint64(w), classes)
			}
		})
	}
}

func TestSmallIntRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, -7, 42, 1 << 40, -(1 << 40), MaxSmallInt, MinSmallInt}
	for _, v := range values {
		w := NewSmallInt(v)
		if !w.IsSmallInt() {
			t.Fatalf("%d: not tagged as small int", v)
		}
		if got := w.SmallIntValue(); got != v {
			t.Errorf("round trip: got %d, want %d", got, v)
		}
	}
}

func TestImmediates(t *testing.T) {
	if None == False || False == True || None == True {
		t.Fatal("immediates not distinct")
	}
	if NewBool(true) != True || NewBool(false) != False {
		t.Error("NewBool does not map to singletons")
	}
	if !None.IsImmediate() || !False.IsImmediate() || !True.IsImmediate() {
		t.Error("immediates not tagged as immediate")
	}
	if True.IsTruthy() != true || False.IsTruthy() != false {
		t.Error("truthiness wrong")
	}
}

func TestSentinelIsNotAValue(t *testing.T) {
	if Sentinel.IsSmallInt() || Sentinel.IsImmediate() || Sentinel.IsQstr() || Sentinel.IsPtr() {
		t.Error("sentinel overlaps a value tag space")
	}
	if Null.IsPtr() {
		t.Error("null slot marker classified as pointer")
	}
}

func TestQstrRoundTrip(t *testing.T) {
	for _, id := range []uint32{0, 1, 77, 1 << 20} {
		w := NewQstr(id)
		if !w.IsQstr() {
			t.Fatalf("qstr %d not tagged", id)
		}
		if got := w.QstrID(); got != id {
			t.Errorf("round trip: got %d, want %d", got, id)
		}
	}
}

func TestHeapCheckThenCast(t *testing.T) {
	h := NewHeap()
	f := h.NewFloat(1.5)
	s := h.NewStr("abc")

	t.Run("float round trip", func(t *testing.T) {
		got, err := h.Float(f)
		if err != nil || got != 1.5 {
			t.Errorf("got %v, %v", got, err)
		}
	})

	t.Run("wrong kind rejected", func(t *testing.T) {
		if _, err := h.Float(s); err == nil {
			t.Error("reading str box as float did not fail")
		}
		if _, err := h.Str(f); err == nil {
			t.Error("reading float box as str did not fail")
		}
	})

	t.Run("non-pointer rejected", func(t *testing.T) {
		if _, err := h.Float(NewSmallInt(3)); err == nil {
			t.Error("small int accepted as heap float")
		}
		if _, err := h.Float(Sentinel); err == nil {
			t.Error("sentinel accepted as heap float")
		}
	})

	t.Run("int accessor accepts ints and bools only", func(t *testing.T) {
		if v, err := h.Int(NewSmallInt(-7)); err != nil || v != -7 {
			t.Errorf("got %d, %v", v, err)
		}
		if v, err := h.Int(True); err != nil || v != 1 {
			t.Errorf("bool as int: got %d, %v", v, err)
		}
		if _, err := h.Int(f); err == nil {
			t.Error("float box accepted by int accessor")
		}
	})

	t.Run("kind discriminant", func(t *testing.T) {
		k, ok := h.Kind(f)
		if !ok || k != KindFloat {
			t.Errorf("got %v, %v", k, ok)
		}
		if _, ok := h.Kind(NewSmallInt(1)); ok {
			t.Error("kind reported for non-pointer")
		}
	})
}

func TestContainers(t *testing.T) {
	h := NewHeap()
	tup := h.NewTuple([]Word{NewSmallInt(1), None})
	items, err := h.Items(tup)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].SmallIntValue() != 1 || items[1] != None {
		t.Errorf("tuple contents wrong: %v", items)
	}
	if _, err := h.Items(h.NewFloat(2.0)); err == nil {
		t.Error("float box accepted as container")
	}
}
