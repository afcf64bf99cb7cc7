// Package eval provides the default static evaluator: material plus
// piece-square tables, tapered between a middlegame and an endgame
// score by remaining non-pawn material.
package eval

import (
	"github.com/corvid-engine/corvid/pkg/common"
)

// Score packs a middlegame and an endgame term into one int64 so the
// whole position can be accumulated with plain += through the scan
// and split apart once at the end.
type Score int64

func S(mg, eg int) Score {
	return Score(mg)<<32 + Score(eg)
}

func (s Score) Mg() int {
	return int(int32((s + 1<<31) >> 32))
}

func (s Score) Eg() int {
	return int(int32(s))
}

const (
	sideWhite = 0
	sideBlack = 1
)

var pieceValue = [common.King + 1]Score{
	common.Empty:  S(0, 0),
	common.Pawn:   S(82, 94),
	common.Knight: S(337, 281),
	common.Bishop: S(365, 297),
	common.Rook:   S(477, 512),
	common.Queen:  S(1025, 936),
	common.King:   S(0, 0),
}

const bishopPairBonus = 30

// Game-phase weights used to taper between mg/eg scores; a position
// with every piece still on the board has phase == totalPhase, an
// end-game with only kings and pawns has phase == 0.
const (
	knightPhase = 1
	bishopPhase = 1
	rookPhase   = 2
	queenPhase  = 4
	totalPhase  = 4*knightPhase + 4*bishopPhase + 4*rookPhase + 2*queenPhase
)

// pst holds piece-square values from white's perspective, indexed
// [piece][square] with square 0 = a1; EvaluationService mirrors the
// square for black via common.FlipSquare.
var pst [common.King + 1][64]Score

func init() {
	initPawnPST()
	initKnightPST()
	initBishopPST()
	initRookPST()
	initQueenPST()
	initKingPST()
}

// EvaluationService is the engine's default IEvaluator: stateless
// beyond a couple of scratch counters re-zeroed on every call, safe to
// share across positions as long as calls are not concurrent on the
// same instance (pkg/engine gives each search worker its own).
type EvaluationService struct {
	pieceCount [2][common.King + 1]int
}

func NewEvaluationService() *EvaluationService {
	return &EvaluationService{}
}

// Evaluate returns a centipawn score from the side-to-move's
// perspective: positive favours p.WhiteMove ? white : black.
func (e *EvaluationService) Evaluate(p *common.Position) int {
	for piece := common.Pawn; piece <= common.King; piece++ {
		e.pieceCount[sideWhite][piece] = 0
		e.pieceCount[sideBlack][piece] = 0
	}

	var s Score
	var phase int

	for x := p.White; x != 0; x &= x - 1 {
		var sq = common.FirstOne(x)
		var piece = p.WhatPiece(sq)
		s += pieceValue[piece] + pst[piece][sq]
		e.pieceCount[sideWhite][piece]++
		phase += phaseWeight(piece)
	}
	for x := p.Black; x != 0; x &= x - 1 {
		var sq = common.FirstOne(x)
		var piece = p.WhatPiece(sq)
		s -= pieceValue[piece] + pst[piece][common.FlipSquare(sq)]
		e.pieceCount[sideBlack][piece]++
		phase += phaseWeight(piece)
	}

	if e.pieceCount[sideWhite][common.Bishop] >= 2 {
		s += S(bishopPairBonus, bishopPairBonus)
	}
	if e.pieceCount[sideBlack][common.Bishop] >= 2 {
		s -= S(bishopPairBonus, bishopPairBonus)
	}

	if phase > totalPhase {
		phase = totalPhase
	}
	var result = (s.Mg()*phase + s.Eg()*(totalPhase-phase)) / totalPhase

	if !p.WhiteMove {
		result = -result
	}
	return result
}

func phaseWeight(piece int) int {
	switch piece {
	case common.Knight:
		return knightPhase
	case common.Bishop:
		return bishopPhase
	case common.Rook:
		return rookPhase
	case common.Queen:
		return queenPhase
	default:
		return 0
	}
}
