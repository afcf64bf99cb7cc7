package engine

import (
	"sync/atomic"

	"github.com/corvid-engine/corvid/pkg/common"
)

const (
	boundNone  = 0
	boundUpper = 1
	boundLower = 2
	boundExact = boundUpper | boundLower
)

// transEntry packs one TT record into 16 bytes: moveGen packs the best
// move together with the generation counter so both age and move
// replace in a single write, and gate guards the whole record with a
// short CAS spin. The search is single threaded in this design, so
// gate never actually contends; it is kept so a future multi-threaded
// port can share this layout without a redesign.
type transEntry struct {
	gate    int32
	key32   uint32
	moveGen uint32
	value   int16
	depth   int8
	bound   uint8
}

func (e *transEntry) move() common.Move {
	return common.Move(e.moveGen & 0x1fffff)
}

func (e *transEntry) generation() uint16 {
	return uint16(e.moveGen >> 21)
}

func (e *transEntry) setMoveAndGeneration(m common.Move, gen uint16) {
	e.moveGen = uint32(m) + uint32(gen)<<21
}

func (e *transEntry) empty() bool {
	return e.key32 == 0 && e.moveGen == 0 && e.depth == 0 && e.bound == boundNone
}

func roundPowerOfTwo(size int) int {
	var x = 1
	for (x << 1) <= size {
		x <<= 1
	}
	return x
}

// transTable is the flat, open-addressed bucket array described in
// §4.4: index = hash & mask, one 16-byte entry per bucket, no chaining.
type transTable struct {
	megabytes  int
	entries    []transEntry
	generation uint16
	mask       uint32
}

func newTransTable(megabytes int) *transTable {
	if megabytes < 1 {
		megabytes = 1
	}
	var size = roundPowerOfTwo(1024 * 1024 * megabytes / 16)
	return &transTable{
		megabytes: megabytes,
		entries:   make([]transEntry, size),
		mask:      uint32(size - 1),
	}
}

func (tt *transTable) Size() int {
	return tt.megabytes
}

// ageEntries advances the generation counter; called once at the start
// of every search so a stale entry from a prior search is preferred
// for replacement even when its depth looks attractive.
func (tt *transTable) ageEntries() {
	tt.generation = (tt.generation + 1) & 0x7ff
}

func (tt *transTable) clear() {
	tt.generation = 0
	for i := range tt.entries {
		tt.entries[i] = transEntry{}
	}
}

// sizeInfo samples up to 1000 buckets and returns the used fraction in
// UCI hashfull's permille units.
func (tt *transTable) sizeInfo() int {
	if len(tt.entries) == 0 {
		return 0
	}
	var n = 1000
	if n > len(tt.entries) {
		n = len(tt.entries)
	}
	var used = 0
	for i := 0; i < n; i++ {
		var e = &tt.entries[i]
		if !e.empty() && e.generation() == tt.generation {
			used++
		}
	}
	return used * 1000 / n
}

// probe returns the raw stored value; callers translate it out of
// mate-normalized form with valueFromTT.
func (tt *transTable) probe(key uint64) (depth, value, bound int, move common.Move, ok bool) {
	var entry = &tt.entries[uint32(key)&tt.mask]
	if !atomic.CompareAndSwapInt32(&entry.gate, 0, 1) {
		return
	}
	if !entry.empty() && entry.key32 == uint32(key>>32) {
		entry.setMoveAndGeneration(entry.move(), tt.generation)
		depth = int(entry.depth)
		value = int(entry.value)
		bound = int(entry.bound)
		move = entry.move()
		ok = true
	}
	atomic.StoreInt32(&entry.gate, 0)
	return
}

// store applies the three-tier replacement policy:
//  1. an empty slot always accepts;
//  2. the same key replaces unless the stored entry is EXACT at
//     strictly greater depth than the incoming one;
//  3. a different key replaces only if the stored entry is aged out of
//     the current generation, or the incoming depth is at least as deep.
func (tt *transTable) store(key uint64, depth, value, bound int, move common.Move) {
	var entry = &tt.entries[uint32(key)&tt.mask]
	if !atomic.CompareAndSwapInt32(&entry.gate, 0, 1) {
		return
	}
	var key32 = uint32(key >> 32)
	var replace bool
	switch {
	case entry.empty():
		replace = true
	case entry.key32 == key32:
		replace = !(entry.bound == boundExact && int(entry.depth) > depth)
	default:
		replace = entry.generation() != tt.generation || depth >= int(entry.depth)
	}
	if replace {
		entry.key32 = key32
		entry.value = int16(value)
		entry.depth = int8(depth)
		entry.bound = uint8(bound)
		entry.setMoveAndGeneration(move, tt.generation)
	}
	atomic.StoreInt32(&entry.gate, 0)
}
