package common

import "testing"

func TestGenerateMovesStartPosition(t *testing.T) {
	p, err := NewPositionFromFEN(InitialPositionFen)
	if err != nil {
		t.Fatal(err)
	}
	var buffer [MaxMoves]Move
	var moves = GenerateMoves(buffer[:], &p)
	if len(moves) != 20 {
		t.Errorf("got %d pseudo-legal moves from the start position, want 20", len(moves))
	}
}

func TestGenerateMovesEnPassant(t *testing.T) {
	p, err := NewPositionFromFEN("rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var buffer [MaxMoves]Move
	var found = false
	for _, m := range GenerateMoves(buffer[:], &p) {
		if m.CapturedPiece() == Pawn && m.To() == SquareE3 && m.MovingPiece() == Pawn {
			found = true
		}
	}
	if !found {
		t.Error("en-passant capture on e3 not found among pseudo-legal moves")
	}
}

func TestGenerateMovesCastling(t *testing.T) {
	p, err := NewPositionFromFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var buffer [MaxMoves]Move
	var kingSide, queenSide = false, false
	for _, m := range GenerateMoves(buffer[:], &p) {
		if m.MovingPiece() == King && m.From() == SquareE1 {
			if m.To() == SquareG1 {
				kingSide = true
			}
			if m.To() == SquareC1 {
				queenSide = true
			}
		}
	}
	if !kingSide || !queenSide {
		t.Errorf("castling moves missing: kingSide=%v queenSide=%v", kingSide, queenSide)
	}
}

func TestGenerateMovesCastlingBlockedByCheck(t *testing.T) {
	// black rook on h1 attacks e1 along the back rank, so white's
	// queen-side castle must not be generated even though d1/c1/b1 are clear.
	p, err := NewPositionFromFEN("4k3/8/8/8/8/8/8/R3K2r w Q - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var buffer [MaxMoves]Move
	for _, m := range GenerateMoves(buffer[:], &p) {
		if m.MovingPiece() == King && m.To() == SquareC1 {
			t.Error("queen-side castle generated while e1 is attacked")
		}
	}
}

func TestGenerateMovesPromotion(t *testing.T) {
	p, err := NewPositionFromFEN("8/P7/8/8/8/8/8/4k2K w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var buffer [MaxMoves]Move
	var promotions = 0
	for _, m := range GenerateMoves(buffer[:], &p) {
		if m.From() == SquareA7 && m.To() == SquareA8 {
			promotions++
		}
	}
	if promotions != 4 {
		t.Errorf("got %d promotion moves from a7-a8, want 4", promotions)
	}
}

func TestGenerateMovesCheckEvasionOnlyBlocksOrCaptures(t *testing.T) {
	p, err := NewPositionFromFEN("4k3/8/8/8/8/8/4r3/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsCheck() {
		t.Fatal("expected king on e1 to be in check from the rook on e2")
	}
	var allowed = map[int]bool{SquareD1: true, SquareD2: true, SquareE2: true, SquareF1: true, SquareF2: true}
	var legal = GenerateLegalMoves(&p)
	for _, m := range legal {
		if m.MovingPiece() == King && !allowed[m.To()] {
			t.Errorf("unexpected king evasion %v", m)
		}
	}
	if len(legal) == 0 {
		t.Error("expected at least one legal evasion")
	}
}

func TestGenerateCapturesOnlyProducesCapturesAndPromotions(t *testing.T) {
	p, err := NewPositionFromFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -")
	if err != nil {
		t.Fatal(err)
	}
	var buffer [MaxMoves]Move
	for _, m := range GenerateCaptures(buffer[:], &p, false) {
		if m.CapturedPiece() == Empty && m.Promotion() == Empty {
			t.Errorf("GenerateCaptures produced a quiet move: %v", m)
		}
	}
}

func TestMakeMoveRejectsSelfCheck(t *testing.T) {
	// the d2 pawn is pinned to the king on e1 by the bishop on a5;
	// pushing it opens the a5-e1 diagonal.
	p, err := NewPositionFromFEN("4k3/8/8/b7/8/8/3P4/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var move = makeMove(SquareD2, SquareD3, Pawn, Empty)
	var child Position
	if p.MakeMove(move, &child) {
		t.Error("expected pinned pawn push to be rejected as illegal")
	}
}
