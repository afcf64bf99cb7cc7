package engine

import (
	"context"
	"time"

	"github.com/corvid-engine/corvid/pkg/common"
)

// legalRootMoves generates every legal move at root and, when the "go"
// command restricted the search to a subset, filters down to the
// moves both lists agree on. An empty intersection (a malformed or
// stale searchmoves list) falls back to the full legal move set rather
// than searching nothing.
func legalRootMoves(root *common.Position, searchMoves []common.Move) []common.Move {
	var legal = common.GenerateLegalMoves(root)
	if len(searchMoves) == 0 {
		return legal
	}
	var restricted = make([]common.Move, 0, len(searchMoves))
	for _, m := range legal {
		for _, sm := range searchMoves {
			if m == sm {
				restricted = append(restricted, m)
				break
			}
		}
	}
	if len(restricted) == 0 {
		return legal
	}
	return restricted
}

// aspirationSearch implements the §4.1 narrowing window: try ±30
// around the previous iteration's value, widen to ±200 on failure,
// then fall back to a full window. A fail-low also nudges the time
// budget, since it is a signal the position needs more thinking
// before committing to a move.
func (e *Engine) aspirationSearch(ctx context.Context, w *worker, depth, prevValue int) int {
	for _, delta := range [...]int{e.Options.AspirationDelta1, e.Options.AspirationDelta2} {
		var alpha = prevValue - delta
		var beta = prevValue + delta
		var value = w.alphaBeta(ctx, alpha, beta, depth, 0, true)
		if w.stopped {
			return value
		}
		if value > alpha && value < beta {
			return value
		}
		if value <= alpha {
			e.tc.addExtraTime(1.3)
		}
	}
	return w.alphaBeta(ctx, -valueInfinity, valueInfinity, depth, 0, true)
}

// mtdf is the §4.1 alternative driver: a sequence of null-window
// probes bisecting toward the true minimax value instead of widening
// an aspiration window around it.
func (e *Engine) mtdf(ctx context.Context, w *worker, depth, firstGuess int) int {
	var g = firstGuess
	var lowerBound, upperBound = -valueInfinity, valueInfinity
	for lowerBound < upperBound {
		var beta = g
		if g == lowerBound {
			beta = g + 1
		}
		var value = w.alphaBeta(ctx, beta-1, beta, depth, 0, true)
		if w.stopped {
			return value
		}
		if value < beta {
			upperBound = value
		} else {
			lowerBound = value
		}
		g = value
	}
	return g
}

// runSearch is the iterative-deepening driver described in §4.1. It
// signals ready as soon as the root position and move list are set up
// so StartSearch can return to its caller while the depth loop runs.
func (e *Engine) runSearch(ctx context.Context, params common.SearchParams, ready chan struct{}) common.SearchResult {
	var w = e.w
	var root = &w.stack[0].position
	var start = e.now()

	var rootMoves = legalRootMoves(root, params.Limits.SearchMoves)
	if len(rootMoves) == 0 {
		close(ready)
		return common.SearchResult{BestMove: common.MoveEmpty}
	}
	w.rootMoves = rootMoves
	if len(rootMoves) == 1 {
		e.tc.addExtraTime(1.5)
	}

	e.progress = params.Progress
	e.lastCurrMoveTick = time.Time{}
	defer func() { e.progress = nil }()

	close(ready)

	var bestMove = rootMoves[0]
	var ponderMove = common.MoveEmpty
	var bestValue int
	var lastDepth int
	var prevBestMove = common.MoveEmpty

	var maxDepth = maxHeight
	if params.Limits.Depth > 0 && params.Limits.Depth < maxDepth {
		maxDepth = params.Limits.Depth
	}

	for depth := 1; depth <= maxDepth; depth++ {
		var value int
		switch {
		case e.Options.UseMTDF && depth >= aspirationStartDepth:
			value = e.mtdf(ctx, w, depth, bestValue)
		case e.Options.AspirationWindow && depth >= aspirationStartDepth:
			value = e.aspirationSearch(ctx, w, depth, bestValue)
		default:
			value = w.alphaBeta(ctx, -valueInfinity, valueInfinity, depth, 0, true)
		}

		if w.stopped && depth > 1 {
			break
		}

		bestValue = value
		lastDepth = depth

		var pvMoves = w.stack[0].pv.toSlice()
		if len(pvMoves) > 0 {
			bestMove = pvMoves[0]
			ponderMove = common.MoveEmpty
			if len(pvMoves) > 1 {
				ponderMove = pvMoves[1]
			}
			if prevBestMove != common.MoveEmpty && bestMove != prevBestMove {
				e.tc.addExtraTime(1.4)
				w.counters.bestMoveChange++
			}
			prevBestMove = bestMove
		}

		if params.Progress != nil {
			params.Progress(common.SearchInfo{
				Score:    newUciScore(value),
				Depth:    depth,
				SelDepth: w.counters.selDepth,
				Nodes:    w.counters.nodes + w.counters.qNodes,
				Time:     e.now().Sub(start).Milliseconds(),
				MainLine: pvMoves,
				HashFull: e.tt.sizeInfo(),
			})
		}

		if w.stopped {
			break
		}
		if params.Limits.Mate > 0 && value >= valueWin {
			var mateIn = (valueMate - value + 1) / 2
			if mateIn <= params.Limits.Mate {
				break
			}
		}
		if e.tc.softExceeded(e.tc.elapsedSince(e.now())) {
			break
		}
	}

	if ctx.Err() == nil && (params.Limits.Infinite || params.Limits.Ponder) {
		<-ctx.Done()
	}

	return common.SearchResult{
		BestMove:   bestMove,
		PonderMove: ponderMove,
		Score:      newUciScore(bestValue),
		Depth:      lastDepth,
		SelDepth:   w.counters.selDepth,
		Nodes:      w.counters.nodes + w.counters.qNodes,
		ElapsedMs:  e.now().Sub(start).Milliseconds(),
	}
}
