package engine

import (
	"testing"
	"time"

	"github.com/corvid-engine/corvid/pkg/common"
)

func TestInfiniteModeHasNoDeadline(t *testing.T) {
	var tc = newTimeController(time.Now(), common.LimitsType{Infinite: true}, true)
	if _, ok := tc.hardDeadline(); ok {
		t.Error("expected no hard deadline under Infinite")
	}
	if tc.softExceeded(time.Hour) {
		t.Error("infinite mode must never report soft-exceeded")
	}
}

func TestMoveTimeUsesExactBudget(t *testing.T) {
	var tc = newTimeController(time.Now(), common.LimitsType{MoveTime: 500}, true)
	var hard, ok = tc.hardDeadline()
	if !ok {
		t.Fatal("expected a hard deadline under MoveTime")
	}
	if hard != 500*time.Millisecond {
		t.Errorf("got hard=%v, want 500ms", hard)
	}
}

func TestClockBudgetSoftIsBelowHard(t *testing.T) {
	var tc = newTimeController(time.Now(), common.LimitsType{WhiteTime: 60000, MovesToGo: 30}, true)
	var hard, ok = tc.hardDeadline()
	if !ok {
		t.Fatal("expected a hard deadline with WhiteTime set")
	}
	if !tc.softExceeded(hard) {
		t.Error("soft limit should already have been exceeded once the hard deadline is reached")
	}
}

func TestShortBudgetShrinks(t *testing.T) {
	// A near-empty clock forces calcLimits through its <100ms shrink path.
	var soft, hard = calcLimits(50*time.Millisecond, 0, 1)
	if hard >= shortBudget {
		t.Fatalf("expected the short-budget shrink to engage, got hard=%v", hard)
	}
	if soft >= hard {
		t.Errorf("soft (%v) should stay below hard (%v)", soft, hard)
	}
}

func TestAddExtraTimeWidensBothLimits(t *testing.T) {
	var tc = newTimeController(time.Now(), common.LimitsType{MoveTime: 1000}, true)
	var before, _ = tc.hardDeadline()
	tc.addExtraTime(1.5)
	var after, _ = tc.hardDeadline()
	if after <= before {
		t.Errorf("expected addExtraTime to widen the hard deadline: before=%v after=%v", before, after)
	}
}

func TestPonderHitConvertsInfiniteIntoTimeControlled(t *testing.T) {
	var tc = newTimeController(time.Now(), common.LimitsType{Ponder: true}, true)
	if _, ok := tc.hardDeadline(); ok {
		t.Fatal("ponder mode should start with no hard deadline")
	}
	tc.ponderHit(time.Now(), common.LimitsType{MoveTime: 200}, true)
	var hard, ok = tc.hardDeadline()
	if !ok {
		t.Fatal("expected PonderHit to install a hard deadline")
	}
	if hard != 200*time.Millisecond {
		t.Errorf("got hard=%v, want 200ms", hard)
	}
}

func TestFixedDepthModeHasNoClockBudget(t *testing.T) {
	var tc = newTimeController(time.Now(), common.LimitsType{Depth: 10}, true)
	if _, ok := tc.hardDeadline(); ok {
		t.Error("a fixed-depth search should have no clock-driven hard deadline")
	}
}
