package engine

import "testing"

func TestStoreThenProbeRoundTrips(t *testing.T) {
	var tt = newTransTable(1)
	var key = uint64(0x1122334455667788)
	tt.store(key, 7, 123, boundExact, 0)

	depth, value, bound, _, ok := tt.probe(key)
	if !ok {
		t.Fatal("expected a hit for the stored key")
	}
	if depth != 7 || value != 123 || bound != boundExact {
		t.Errorf("got (depth=%v, value=%v, bound=%v), want (7, 123, %v)", depth, value, bound, boundExact)
	}
}

func TestProbeMissesOnDifferentKey(t *testing.T) {
	var tt = newTransTable(1)
	tt.store(1, 5, 10, boundExact, 0)
	if _, _, _, _, ok := tt.probe(2); ok {
		t.Error("expected no hit for a key that was never stored")
	}
}

// TestMateValueRoundTripsThroughPlyNormalization exercises Open
// Question 1's resolution: a mate score stored at one ply and probed
// from another must come back adjusted by exactly the ply difference,
// including when the store happens at the root (ply 0).
func TestMateValueRoundTripsThroughPlyNormalization(t *testing.T) {
	var tt = newTransTable(1)
	var key = uint64(42)

	for _, storePly := range []int{0, 3, 10} {
		var raw = winIn(storePly + 2) // a mate found two plies below storePly
		tt.store(key, 5, valueToTT(raw, storePly), boundExact, 0)

		for _, probePly := range []int{0, 1, 5} {
			var _, stored, _, _, ok = tt.probe(key)
			if !ok {
				t.Fatal("expected a hit")
			}
			var got = valueFromTT(stored, probePly)
			var want = raw + storePly - probePly
			if got != want {
				t.Errorf("storePly=%v probePly=%v: got %v, want %v", storePly, probePly, got, want)
			}
		}
	}
}

func TestEmptySlotAlwaysReplaces(t *testing.T) {
	var tt = newTransTable(1)
	tt.store(99, 1, 1, boundExact, 0)
	if _, _, _, _, ok := tt.probe(99); !ok {
		t.Fatal("expected the first store into an empty slot to stick")
	}
}

func TestDeeperExactEntryResistsShallowerReplacement(t *testing.T) {
	var tt = newTransTable(1)
	var key = uint64(7)
	tt.store(key, 10, 500, boundExact, 0)
	tt.store(key, 3, -500, boundExact, 0)

	depth, value, _, _, ok := tt.probe(key)
	if !ok {
		t.Fatal("expected a hit")
	}
	if depth != 10 || value != 500 {
		t.Errorf("shallower EXACT store overwrote a deeper EXACT entry: got (depth=%v, value=%v)", depth, value)
	}
}

func TestClearRemovesEntries(t *testing.T) {
	var tt = newTransTable(1)
	tt.store(5, 4, 4, boundExact, 0)
	tt.clear()
	if _, _, _, _, ok := tt.probe(5); ok {
		t.Error("expected clear to drop every entry")
	}
}

func TestSizeInfoReflectsOccupancy(t *testing.T) {
	var tt = newTransTable(1)
	if full := tt.sizeInfo(); full != 0 {
		t.Errorf("fresh table reports hashfull=%v, want 0", full)
	}
	for i := 0; i < 500; i++ {
		tt.store(uint64(i), 1, 1, boundExact, 0)
	}
	if full := tt.sizeInfo(); full == 0 {
		t.Error("expected a nonzero hashfull after stores")
	}
}
