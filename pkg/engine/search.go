package engine

import (
	"context"

	"github.com/corvid-engine/corvid/pkg/common"
)

// plyState is the per-ply scratch the worker reuses across the whole
// search instead of allocating recursion-local state: one slot per
// ply, indexed by ply, touched only by the worker goroutine.
type plyState struct {
	position       common.Position
	pv             pv
	moveList       common.MoveList
	quietsSearched [common.MaxMoves]common.Move
	staticEval     int
	killer1        common.Move
	killer2        common.Move
	mateThreat     bool
}

// worker is the engine's one dedicated search thread. Nothing here is
// safe to touch from another goroutine while a search is in flight;
// the engine enforces that by ever running one at a time.
type worker struct {
	engine           *Engine
	counters         searchCounters
	stopped          bool
	stack            [maxPly]plyState
	currentVariation [maxPly]common.Move
	variationLen     int
	historyKeys      map[uint64]int
	rootMoves        []common.Move
}

func newWorker(e *Engine) *worker {
	return &worker{engine: e}
}

func (w *worker) reset() {
	w.counters.reset()
	w.stopped = false
	w.variationLen = 0
	for i := range w.stack {
		w.stack[i].killer1 = common.MoveEmpty
		w.stack[i].killer2 = common.MoveEmpty
		w.stack[i].mateThreat = false
	}
}

// checkStop is called on every node entry but only pays for the
// context/clock read every 1024 nodes, the same node-count-bitmask
// sampling the corpus uses to keep a cancellable search from spending
// most of its time checking whether it should stop.
func (w *worker) checkStop(ctx context.Context) bool {
	w.counters.nodes++
	if w.stopped {
		return true
	}
	if w.counters.nodes&1023 == 0 {
		if ctx.Err() != nil {
			w.stopped = true
			return true
		}
		if w.engine.limits.Nodes > 0 && w.counters.nodes >= int64(w.engine.limits.Nodes) {
			w.stopped = true
			return true
		}
		if hard, ok := w.engine.tc.hardDeadline(); ok {
			if w.engine.tc.elapsedSince(w.engine.now()) >= hard {
				w.stopped = true
				return true
			}
		}
	}
	return false
}

func (w *worker) makeMove(move common.Move, ply int) bool {
	var src = &w.stack[ply].position
	var dst = &w.stack[ply+1].position
	if move == common.MoveEmpty {
		src.MakeNullMove(dst)
	} else if !src.MakeMove(move, dst) {
		return false
	}
	w.currentVariation[w.variationLen] = move
	w.variationLen++
	return true
}

func (w *worker) unmakeMove() {
	w.variationLen--
}

// isRootMoveAllowed reports whether move is in the root move list the
// depth loop is driving from — the full legal set, or the UCI
// "searchmoves" restriction when one was given. Callers only consult
// this at ply 0; elsewhere every pseudo-legal move is tried.
func (w *worker) isRootMoveAllowed(move common.Move) bool {
	for _, m := range w.rootMoves {
		if m == move {
			return true
		}
	}
	return false
}

func isMaterialDraw(p *common.Position) bool {
	if p.Rule50 >= 100 {
		return true
	}
	if (p.Pawns|p.Rooks|p.Queens) == 0 && !common.MoreThanOne(p.Knights|p.Bishops) {
		return true
	}
	return false
}

// isTreeRepeat reports a one-fold repeat strictly within the search
// tree: an ancestor ply reached the same position. It stops looking
// past the most recent irreversible move, since nothing before that
// point could ever repeat.
func (w *worker) isTreeRepeat(ply int) bool {
	var p = &w.stack[ply].position
	if p.Rule50 == 0 || p.LastMove == common.MoveEmpty {
		return false
	}
	for i := ply - 1; i >= 0; i-- {
		var ancestor = &w.stack[i].position
		if ancestor.Key == p.Key {
			return true
		}
		if ancestor.Rule50 == 0 || ancestor.LastMove == common.MoveEmpty {
			return false
		}
	}
	return false
}

// historyRepeatCount is how many times the position at ply has
// occurred in the actual played game, pre-root, counting the root
// occurrence itself at ply 0.
func (w *worker) historyRepeatCount(ply int) int {
	return w.historyKeys[w.stack[ply].position.Key]
}

// alphaBeta is the negamax/PVS main search. Non-PV callers pass a null
// window (beta == alpha+1). Mate values come back encoded as
// ±(valueMate∓ply); callers cross the TT boundary through
// valueToTT/valueFromTT so the same entry is meaningful at any ply.
func (w *worker) alphaBeta(ctx context.Context, alpha, beta, depth, ply int, mayNullMove bool) int {
	if depth <= 0 || ply >= maxHeight {
		return w.quiescence(ctx, alpha, beta, ply)
	}

	var node = &w.stack[ply]
	node.pv.clear()

	var rootNode = ply == 0
	var pvNode = beta != alpha+1
	var position = &node.position
	var isCheck = position.IsCheck()

	if w.checkStop(ctx) {
		return 0
	}

	if !rootNode {
		if !isCheck && isMaterialDraw(position) {
			return valueDraw
		}
		if w.isTreeRepeat(ply) || w.historyRepeatCount(ply) >= 2 {
			return w.contemptValue(ply)
		}
	} else if position.Rule50 >= 100 || w.historyRepeatCount(ply) >= 3 {
		return valueDraw
	}

	alpha = common.Max(alpha, -valueMate+ply)
	beta = common.Min(beta, valueMate-ply)
	if alpha >= beta {
		return alpha
	}

	var ttDepth, ttValue, ttBound int
	var ttMove common.Move
	var ttHit bool
	ttDepth, ttValue, ttBound, ttMove, ttHit = w.engine.tt.probe(position.Key)
	if ttHit {
		w.counters.ttHits++
		ttValue = valueFromTT(ttValue, ply)
		if ttDepth >= depth {
			if ttBound == boundExact {
				return ttValue
			}
			if !pvNode && ttBound == boundLower && ttValue >= beta {
				if ttMove != common.MoveEmpty && !isCaptureOrPromotion(ttMove) {
					node.updateKiller(ttMove)
				}
				return ttValue
			}
			if !pvNode && ttBound == boundUpper && ttValue <= alpha {
				return ttValue
			}
		}
	}

	var staticEval = w.engine.evaluator.Evaluate(position)
	node.staticEval = staticEval

	var options = &w.engine.Options
	if ply+2 < maxHeight {
		w.stack[ply+2].killer1 = common.MoveEmpty
		w.stack[ply+2].killer2 = common.MoveEmpty
	}

	if !rootNode && !isCheck && !pvNode {
		if options.ReverseFutility && depth == futilityDepth && mayNullMove {
			var margin = pawnValue * depth
			if staticEval-margin >= beta {
				w.engine.tt.store(position.Key, depth, valueToTT(staticEval-margin, ply), boundLower, common.MoveEmpty)
				return staticEval - margin
			}
		}

		if options.NullMovePruning && depth >= nmpMinDepth && mayNullMove &&
			hasNonPawnMaterial(position, position.WhiteMove) &&
			!node.mateThreat && staticEval >= beta {
			var verified = w.tryNullMove(ctx, position, node, alpha, beta, depth, ply, options)
			if verified != nil {
				return *verified
			}
		}

		if options.Razoring && depth <= razorDepth && !node.mateThreat &&
			staticEval+razorMargin <= alpha {
			return w.quiescence(ctx, alpha, beta, ply)
		}
	}

	var mi = w.generateOrdered(ply, ttMove)
	var killer1, killer2 = node.killer1, node.killer2

	var movesSearched = 0
	var hasLegalMove = false
	var bestMove common.Move
	var best = -valueInfinity
	var oldAlpha = alpha

	for i := 0; i < mi.Size; i++ {
		var move = mi.Items[i].Move

		if rootNode && !w.isRootMoveAllowed(move) {
			continue
		}

		if move.Promotion() != common.Empty && !isQueenOrKnightPromotion(move) {
			continue
		}

		var extraReduction = 0
		if !rootNode && !isCheck && hasLegalMove && best > valueLoss {
			var gain = staticEval + captureGain(move)
			var noisy = isCaptureOrPromotion(move)
			switch {
			case options.LimitedRazoring && depth == limitedRazorDepth &&
				gain+materialValue[common.Queen] <= alpha:
				extraReduction = 1
			case options.ExtendedFutility && depth == extFutilityDepth &&
				gain+materialValue[common.Rook] <= alpha:
				continue
			case options.Futility && depth == futilityDepth &&
				gain+2*pawnValue <= alpha:
				best = common.Max(best, gain+2*pawnValue)
				continue
			case !noisy && move != killer1 && move != killer2 &&
				options.Lmp && depth < lmpMinDepth && movesSearched >= lmpMinMoves:
				continue
			}
		}

		if !w.makeMove(move, ply) {
			continue
		}
		hasLegalMove = true
		movesSearched++

		if rootNode {
			w.engine.emitCurrMove(w, move, movesSearched)
		}

		var noisy = isCaptureOrPromotion(move)
		var childIsCheck = w.stack[ply+1].position.IsCheck()
		var extension = 0
		if options.ExtendInCheck && childIsCheck {
			extension = 1
		}

		var reduction = extraReduction
		if options.Lmr && !noisy && !isCheck && !childIsCheck && extension == 0 &&
			depth >= lmrMinDepth && movesSearched > lmrMinMoves &&
			move != killer1 && move != killer2 {
			reduction += lmrReduction
		}

		var newDepth = depth - 1 + extension
		var score = alpha + 1

		if reduction > 0 && newDepth-reduction > 0 {
			score = -w.alphaBeta(ctx, -(alpha + 1), -alpha, newDepth-reduction, ply+1, true)
		}
		if score > alpha && pvNode && movesSearched > 1 && newDepth > 0 {
			score = -w.alphaBeta(ctx, -(alpha + 1), -alpha, newDepth, ply+1, true)
		}
		if movesSearched == 1 || score > alpha {
			score = -w.alphaBeta(ctx, -beta, -alpha, newDepth, ply+1, true)
		}

		w.unmakeMove()

		if w.stopped {
			return 0
		}

		if score > best {
			best = score
			bestMove = move
		}
		if score > alpha {
			alpha = score
			node.pv.assign(move, &w.stack[ply+1].pv)
			if alpha >= beta {
				w.counters.cutoffs++
				break
			}
		}

		if rootNode && w.engine.tc.softExceeded(w.engine.tc.elapsedSince(w.engine.now())) {
			break
		}
	}

	if !hasLegalMove {
		if isCheck {
			return lossIn(ply)
		}
		return valueDraw
	}

	if alpha > oldAlpha && bestMove != common.MoveEmpty && !isCaptureOrPromotion(bestMove) {
		node.updateKiller(bestMove)
	}

	var bound = boundUpper
	if best > oldAlpha {
		bound = boundExact
	}
	if best >= beta {
		bound = boundLower
	}
	w.engine.tt.store(position.Key, depth, valueToTT(best, ply), bound, bestMove)

	return best
}

// tryNullMove runs the null-move search and, if configured, the
// reduced-depth non-null verification search that guards against
// zugzwang false cutoffs. A non-nil return is the value alphaBeta
// should return immediately; nil means the caller should keep
// searching normally.
func (w *worker) tryNullMove(ctx context.Context, position *common.Position, node *plyState, alpha, beta, depth, ply int, options *Options) *int {
	var reduction = 2
	if depth > 6 {
		reduction = 3
	}
	if options.NullMoveVerify {
		reduction++
	}
	if depth-reduction <= 0 {
		return nil
	}

	w.makeMove(common.MoveEmpty, ply)
	var score = -w.alphaBeta(ctx, -beta, -(beta - 1), depth-reduction, ply+1, false)
	w.unmakeMove()

	if w.stopped {
		var zero = 0
		return &zero
	}

	if score < beta {
		if score <= lossIn(ply+2) {
			node.mateThreat = true
		}
		return nil
	}
	w.counters.nullMoveCuts++

	if options.NullMoveVerify && depth > reduction {
		var verify = w.alphaBeta(ctx, beta-1, beta, depth-reduction, ply, false)
		if verify < beta {
			return nil
		}
	}

	if score >= valueWin {
		score = beta
	}
	w.engine.tt.store(position.Key, depth, valueToTT(score, ply), boundLower, common.MoveEmpty)
	return &score
}

// quiescence is the §4.3 horizon extension: depth never decrements,
// only the move set narrows (captures, or every reply while in check)
// until the position settles into a quiet stand-pat.
func (w *worker) quiescence(ctx context.Context, alpha, beta, ply int) int {
	var node = &w.stack[ply]
	node.pv.clear()

	if w.checkStop(ctx) {
		return 0
	}
	w.counters.qNodes++

	var position = &node.position
	var isCheck = position.IsCheck()

	if !isCheck && isMaterialDraw(position) {
		return valueDraw
	}
	if w.isTreeRepeat(ply) || w.historyRepeatCount(ply) >= 2 {
		return w.contemptValue(ply)
	}
	if ply > w.counters.selDepth {
		w.counters.selDepth = ply
	}
	if ply >= maxHeight {
		return w.engine.evaluator.Evaluate(position)
	}

	alpha = common.Max(alpha, -valueMate+ply)
	beta = common.Min(beta, valueMate-ply)
	if alpha >= beta {
		return alpha
	}

	var pvNode = beta != alpha+1
	var _, ttValue, ttBound, _, ttHit = w.engine.tt.probe(position.Key)
	if ttHit {
		ttValue = valueFromTT(ttValue, ply)
		if ttBound == boundExact ||
			(!pvNode && ttBound == boundLower && ttValue >= beta) ||
			(!pvNode && ttBound == boundUpper && ttValue <= alpha) {
			return ttValue
		}
	}

	var best = -valueInfinity
	if !isCheck {
		var standPat = w.engine.evaluator.Evaluate(position)
		best = standPat
		if standPat >= beta {
			w.engine.tt.store(position.Key, 0, valueToTT(standPat, ply), boundLower, common.MoveEmpty)
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
	}

	var mi = w.generateQuiescenceMoves(ply, isCheck)
	var hasLegalMove = false
	var bestMove common.Move

	for i := 0; i < mi.Size; i++ {
		var move = mi.Items[i].Move
		if move.Promotion() != common.Empty && !isQueenOrKnightPromotion(move) {
			continue
		}
		if !w.makeMove(move, ply) {
			continue
		}
		hasLegalMove = true
		var score = -w.quiescence(ctx, -beta, -alpha, ply+1)
		w.unmakeMove()

		if w.stopped {
			return 0
		}

		if score > best {
			best = score
			bestMove = move
		}
		if score > alpha {
			alpha = score
			node.pv.assign(move, &w.stack[ply+1].pv)
			if alpha >= beta {
				break
			}
		}
	}

	if isCheck && !hasLegalMove {
		return lossIn(ply)
	}

	var bound = boundUpper
	if best >= beta {
		bound = boundLower
	} else if best > alpha {
		bound = boundExact
	}
	w.engine.tt.store(position.Key, 0, valueToTT(best, ply), bound, bestMove)

	return best
}
