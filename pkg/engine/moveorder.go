package engine

import (
	"github.com/corvid-engine/corvid/pkg/common"
)

// Per-move sort keys for the staged generator described in §4.5: the
// PV/TT move always sorts first, then captures ordered by MVV-LVA,
// then the two killers, then quiets in generation order. The bands are
// spaced far enough apart that no MVV-LVA score can cross into the
// next one.
const (
	keyPvMove  int32 = 1_000_000
	keyCapture int32 = 500_000
	keyKiller1 int32 = 400_000
	keyKiller2 int32 = 400_000 - 1
)

var pieceOrderValue = [common.King + 1]int32{
	common.Empty:  0,
	common.Pawn:   1,
	common.Knight: 2,
	common.Bishop: 3,
	common.Rook:   4,
	common.Queen:  5,
	common.King:   6,
}

// mvvlva scores a capture by most-valuable-victim minus
// least-valuable-attacker, folding any promotion piece into the victim
// side of the scale so a queening push sorts with the captures.
func mvvlva(m common.Move) int32 {
	return 8*(pieceOrderValue[m.CapturedPiece()]+pieceOrderValue[m.Promotion()]) -
		pieceOrderValue[m.MovingPiece()]
}

func scoreMoves(ml *common.MoveList, ttMove, killer1, killer2 common.Move) {
	for i := 0; i < ml.Size; i++ {
		var m = ml.Items[i].Move
		var key int32
		switch {
		case m == ttMove:
			key = keyPvMove
		case isCaptureOrPromotion(m):
			key = keyCapture + mvvlva(m)
		case m == killer1:
			key = keyKiller1
		case m == killer2:
			key = keyKiller2
		default:
			key = 0
		}
		ml.Items[i].Key = key
	}
}

// sortMoves is a plain insertion sort: move lists rarely exceed a few
// dozen entries, so the quadratic worst case never shows up, and it
// sorts in place with no allocation.
func sortMoves(items []common.OrderedMove) {
	for i := 1; i < len(items); i++ {
		var j, t = i, items[i]
		for ; j > 0 && items[j-1].Key < t.Key; j-- {
			items[j] = items[j-1]
		}
		items[j] = t
	}
}

// generateOrdered fills the ply's move list with every pseudo-legal
// move at position, staged PV move first, then MVV-LVA captures, then
// killers, then quiets.
func (w *worker) generateOrdered(ply int, ttMove common.Move) *common.MoveList {
	var node = &w.stack[ply]
	var buf [common.MaxMoves]common.Move
	var moves = common.GenerateMoves(buf[:], &node.position)
	node.moveList.Clear()
	for _, m := range moves {
		node.moveList.Add(m)
	}
	scoreMoves(&node.moveList, ttMove, node.killer1, node.killer2)
	sortMoves(node.moveList.Items[:node.moveList.Size])
	return &node.moveList
}

// generateQuiescenceMoves fills the ply's move list with captures (or,
// when in check, every pseudo-legal reply, so mate is still detected)
// ordered by MVV-LVA.
func (w *worker) generateQuiescenceMoves(ply int, inCheck bool) *common.MoveList {
	var node = &w.stack[ply]
	var buf [common.MaxMoves]common.Move
	var moves []common.Move
	if inCheck {
		moves = common.GenerateMoves(buf[:], &node.position)
	} else {
		moves = common.GenerateCaptures(buf[:], &node.position, false)
	}
	node.moveList.Clear()
	for _, m := range moves {
		node.moveList.Add(m)
	}
	scoreMoves(&node.moveList, common.MoveEmpty, common.MoveEmpty, common.MoveEmpty)
	sortMoves(node.moveList.Items[:node.moveList.Size])
	return &node.moveList
}

// updateKiller pushes move to the head of the ply's killer pair, only
// once the move is confirmed quiet; a capture killer would never be
// tried again ahead of the real MVV-LVA ordering.
func (node *plyState) updateKiller(move common.Move) {
	if node.killer1 != move {
		node.killer2 = node.killer1
		node.killer1 = move
	}
}
