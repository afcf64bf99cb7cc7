package engine

import (
	"github.com/corvid-engine/corvid/pkg/common"
)

// pv holds one ply's principal variation as a flat array instead of a
// recursion-local slice, matching the per-ply-state design §9 asks
// for: no allocation on the hot path, only the touched prefix is ever
// written.
type pv struct {
	items [maxPly]common.Move
	size  int
}

func (v *pv) clear() {
	v.size = 0
}

// assign writes move followed by child's moves into v, the standard
// "prepend this ply's move to the child's PV" step run every time a
// move raises alpha.
func (v *pv) assign(move common.Move, child *pv) {
	v.size = 1
	v.items[0] = move
	if child.size > 0 {
		copy(v.items[1:], child.items[:child.size])
		v.size += child.size
	}
}

func (v *pv) toSlice() []common.Move {
	var result = make([]common.Move, v.size)
	copy(result, v.items[:v.size])
	return result
}
