package engine

import (
	"github.com/corvid-engine/corvid/pkg/common"
)

const (
	maxPly        = 128
	maxHeight     = maxPly - 1
	valueDraw     = 0
	valueMate     = 30000
	valueInfinity = valueMate + 1
	// valueWin/valueLoss bound the range past which a value is treated
	// as a mate score rather than a centipawn one.
	valueWin  = valueMate - 2*maxHeight
	valueLoss = -valueWin
)

func winIn(ply int) int {
	return valueMate - ply
}

func lossIn(ply int) int {
	return -valueMate + ply
}

// valueToTT and valueFromTT apply the mate-value normalization rule
// uniformly at every ply, including the root: a mate score is stored
// as a distance from the node it belongs to by adding ply on the way
// in and subtracting it on the way out, so the same entry is reusable
// no matter how deep it is probed from.
func valueToTT(v, ply int) int {
	if v >= valueWin {
		return v + ply
	}
	if v <= valueLoss {
		return v - ply
	}
	return v
}

func valueFromTT(v, ply int) int {
	if v >= valueWin {
		return v - ply
	}
	if v <= valueLoss {
		return v + ply
	}
	return v
}

func newUciScore(v int) common.UciScore {
	switch {
	case v >= valueWin:
		return common.UciScore{Mate: (valueMate - v + 1) / 2}
	case v <= valueLoss:
		return common.UciScore{Mate: (-valueMate - v) / 2}
	default:
		return common.UciScore{Centipawns: v}
	}
}

func isLateEndgame(p *common.Position, side bool) bool {
	var ownPieces = p.PiecesByColor(side)
	return ((p.Rooks|p.Queens)&ownPieces) == 0 &&
		!common.MoreThanOne((p.Knights|p.Bishops)&ownPieces)
}

func isCaptureOrPromotion(move common.Move) bool {
	return move.CapturedPiece() != common.Empty || move.Promotion() != common.Empty
}

func isQueenOrKnightPromotion(move common.Move) bool {
	var promo = move.Promotion()
	return promo == common.Queen || promo == common.Knight
}

// materialValue gives each piece a plain centipawn weight for the
// cheap gain estimates the futility family reasons with; independent
// of the evaluator's own tapered piece values.
var materialValue = [common.King + 1]int{
	common.Empty:  0,
	common.Pawn:   100,
	common.Knight: 320,
	common.Bishop: 330,
	common.Rook:   500,
	common.Queen:  900,
	common.King:   0,
}

func captureGain(move common.Move) int {
	var gain = materialValue[move.CapturedPiece()]
	if move.Promotion() != common.Empty {
		gain += materialValue[move.Promotion()] - materialValue[common.Pawn]
	}
	return gain
}

func hasNonPawnMaterial(p *common.Position, white bool) bool {
	var own = p.PiecesByColor(white)
	return (p.Knights|p.Bishops|p.Rooks|p.Queens)&own != 0
}
