package engine

import (
	"sync"
	"time"

	"github.com/corvid-engine/corvid/pkg/common"
)

const (
	defaultMovesToGo = 40
	safetyMargin     = 1000 * time.Millisecond
	minTimeLimit     = 1 * time.Millisecond
	shortBudget      = 100 * time.Millisecond
	shrinkFactor     = 0.9
	softFraction     = 0.8
)

// timeController implements §4.6. It is mutated by PonderHit after
// construction, so every field is read and written under mu; the
// worker's node-check interval makes the lock cheap to pay.
type timeController struct {
	mu        sync.Mutex
	start     time.Time
	soft      time.Duration
	hard      time.Duration
	extraTime time.Duration
	// infinite is true for the infinite and ponder modes: no hard
	// deadline applies until PonderHit converts the search.
	infinite bool
}

func newTimeController(start time.Time, limits common.LimitsType, whiteToMove bool) *timeController {
	var tc = &timeController{start: start}
	tc.configure(limits, whiteToMove)
	return tc
}

func (tc *timeController) configure(limits common.LimitsType, whiteToMove bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	switch {
	case limits.Infinite || limits.Ponder:
		tc.infinite = true
		tc.soft, tc.hard = 0, 0
	case limits.MoveTime > 0:
		tc.infinite = false
		tc.hard = time.Duration(limits.MoveTime) * time.Millisecond
		tc.soft = tc.hard
	case limits.WhiteTime > 0 || limits.BlackTime > 0:
		tc.infinite = false
		var remaining, increment time.Duration
		if whiteToMove {
			remaining = time.Duration(limits.WhiteTime) * time.Millisecond
			increment = time.Duration(limits.WhiteIncrement) * time.Millisecond
		} else {
			remaining = time.Duration(limits.BlackTime) * time.Millisecond
			increment = time.Duration(limits.BlackIncrement) * time.Millisecond
		}
		tc.soft, tc.hard = calcLimits(remaining, increment, limits.MovesToGo)
	default:
		// Fixed-depth, fixed-nodes, and mate-search modes have no
		// clock budget of their own; the driver terminates them by
		// depth/node/mate-distance instead.
		tc.infinite = true
	}
	tc.extraTime = 0
}

// calcLimits implements the §4.6 time-control formula exactly: reserve
// a safety margin, spread what is left over the expected remaining
// moves with the increment folded in as the hard limit, set soft to
// 0.8× hard, and shrink a budget under 100ms by another 0.9×.
func calcLimits(remaining, increment time.Duration, movesToGo int) (soft, hard time.Duration) {
	var left = remaining - safetyMargin
	if left < minTimeLimit {
		left = minTimeLimit
	}

	var movesLeft = movesToGo
	if movesLeft <= 0 {
		movesLeft = defaultMovesToGo
	}
	left += time.Duration(defaultMovesToGo) * increment

	hard = left / time.Duration(movesLeft)
	soft = time.Duration(float64(hard) * softFraction)

	if hard < shortBudget {
		hard = time.Duration(float64(hard) * shrinkFactor)
		soft = time.Duration(float64(hard) * softFraction)
	}

	if hard < minTimeLimit {
		hard = minTimeLimit
		soft = time.Duration(float64(hard) * softFraction)
	}
	return
}

// addExtraTime implements the addExtraTime(factor) mechanism: it adds
// hard·(factor−1) into the accumulated extraTime budget, which both
// the soft and hard checks below consult.
func (tc *timeController) addExtraTime(factor float64) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.hard == 0 {
		return
	}
	tc.extraTime += time.Duration(float64(tc.hard) * (factor - 1))
}

func (tc *timeController) softExceeded(elapsed time.Duration) bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.infinite || tc.soft == 0 {
		return false
	}
	return elapsed >= tc.soft+time.Duration(float64(tc.extraTime)*softFraction)
}

func (tc *timeController) hardExceeded(elapsed time.Duration) bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.infinite || tc.hard == 0 {
		return false
	}
	return elapsed >= tc.hard+tc.extraTime
}

func (tc *timeController) hardDeadline() (time.Duration, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.infinite || tc.hard == 0 {
		return 0, false
	}
	return tc.hard + tc.extraTime, true
}

// ponderHit rebases the controller onto now and reconfigures it as a
// normal time-controlled search; it never restarts iterative deepening,
// it only changes what the next node-entry check compares elapsed time
// against.
func (tc *timeController) ponderHit(now time.Time, limits common.LimitsType, whiteToMove bool) {
	tc.mu.Lock()
	tc.start = now
	tc.mu.Unlock()
	// configure takes tc.mu itself; the brief gap between the two
	// critical sections only risks a node-check reading a stale start
	// against the not-yet-updated budget, never a torn field.
	tc.configure(limits, whiteToMove)
}

func (tc *timeController) elapsedSince(now time.Time) time.Duration {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return now.Sub(tc.start)
}
