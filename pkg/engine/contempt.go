package engine

import (
	"github.com/corvid-engine/corvid/pkg/common"
)

// gamePhaseFactor is 1.0 while the side to move still has a rook, a
// queen or more than one minor piece, and drops straight to 0.25 once
// it has none of those (isLateEndgame's material test); there is no
// gradual taper between the two levels. A draw is
// much less embarrassing to grab back with only pawns left than to
// offer away with a queen still on the board. Returned scaled by 100
// so the caller can stay in integer arithmetic.
func gamePhaseFactor(p *common.Position, white bool) int {
	if isLateEndgame(p, white) {
		return 25
	}
	return 100
}

// contemptValue is the within-search repetition score from the
// perspective of the side to move at ply: a bias against accepting a
// draw scaled by how much material remains, so the engine avoids easy
// repetitions while material is still on the board but won't fight a
// bare king-and-pawn draw just as hard.
func (w *worker) contemptValue(ply int) int {
	var p = &w.stack[ply].position
	var factor = gamePhaseFactor(p, p.WhiteMove)
	return -(factor * w.engine.Options.Contempt) / 100
}
