package eval

import (
	"testing"

	"github.com/corvid-engine/corvid/pkg/common"
)

func TestEvaluateStartPositionIsRoughlySymmetric(t *testing.T) {
	p, err := common.NewPositionFromFEN(common.InitialPositionFen)
	if err != nil {
		t.Fatal(err)
	}
	var e = NewEvaluationService()
	if got := e.Evaluate(&p); got != 0 {
		t.Errorf("start position should evaluate to 0 (symmetric), got %d", got)
	}
}

func TestEvaluateFavoursExtraMaterial(t *testing.T) {
	p, err := common.NewPositionFromFEN("4k3/8/8/8/8/8/Q7/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var e = NewEvaluationService()
	if got := e.Evaluate(&p); got <= 0 {
		t.Errorf("white up a queen should score positive, got %d", got)
	}
}

func TestEvaluateIsSideRelative(t *testing.T) {
	white, err := common.NewPositionFromFEN("4k3/8/8/8/8/8/Q7/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	black, err := common.NewPositionFromFEN("4k3/8/8/8/8/8/Q7/4K3 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var e = NewEvaluationService()
	if e.Evaluate(&white) != -e.Evaluate(&black) {
		t.Error("flipping the side to move on an identical board must negate the score")
	}
}

func TestEvaluateBishopPairBonus(t *testing.T) {
	withPair, err := common.NewPositionFromFEN("4k3/8/8/8/8/2B2B2/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	onePiece, err := common.NewPositionFromFEN("4k3/8/8/8/8/5B2/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var e = NewEvaluationService()
	var pairScore = e.Evaluate(&withPair)
	var singleScore = e.Evaluate(&onePiece)
	if pairScore-singleScore <= 300 {
		t.Errorf("two bishops should be worth more than one bishop plus a small bonus: pair=%d single=%d", pairScore, singleScore)
	}
}
