package common

import "testing"

func TestNewPositionFromFENRoundTrip(t *testing.T) {
	var fens = []string{
		InitialPositionFen,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	}
	for _, fen := range fens {
		p, err := NewPositionFromFEN(fen)
		if err != nil {
			t.Fatalf("%v: %v", fen, err)
		}
		if got := p.String(); got != fen {
			t.Errorf("round trip %v -> %v", fen, got)
		}
	}
}

func TestNewPositionFromFENRejectsGarbage(t *testing.T) {
	if _, err := NewPositionFromFEN("not a fen"); err == nil {
		t.Error("expected an error parsing a malformed FEN")
	}
}

func TestZobristKeyDependsOnPosition(t *testing.T) {
	p1, err := NewPositionFromFEN(InitialPositionFen)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := NewPositionFromFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if p1.Key == p2.Key {
		t.Error("different positions produced the same Zobrist key")
	}
}

func TestMakeMoveThenNullMoveRestoresSideToMove(t *testing.T) {
	p, err := NewPositionFromFEN(InitialPositionFen)
	if err != nil {
		t.Fatal(err)
	}
	var afterE4 Position
	var e2e4 = makeMove(SquareE2, SquareE4, Pawn, Empty)
	if !p.MakeMove(e2e4, &afterE4) {
		t.Fatal("e2-e4 should be legal from the start position")
	}
	if afterE4.WhiteMove {
		t.Error("expected black to move after 1.e4")
	}
	if afterE4.EpSquare != SquareE3 {
		t.Errorf("expected e3 as the en-passant square after a double pawn push, got %v", SquareName(afterE4.EpSquare))
	}

	var nullPos Position
	afterE4.MakeNullMove(&nullPos)
	if !nullPos.WhiteMove {
		t.Error("null move should flip the side to move back to white")
	}
	if nullPos.EpSquare != SquareNone {
		t.Error("null move must clear the en-passant square")
	}
}

func TestIsRepetitionIgnoresRule50(t *testing.T) {
	p1, err := NewPositionFromFEN("8/8/8/4k3/8/4K3/8/8 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	p2, err := NewPositionFromFEN("8/8/8/4k3/8/4K3/8/8 w - - 12 7")
	if err != nil {
		t.Fatal(err)
	}
	if !p1.IsRepetition(&p2) {
		t.Error("identical boards with different halfmove clocks should be a repetition")
	}
}

func TestMirrorPositionPreservesLegality(t *testing.T) {
	p, err := NewPositionFromFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var mirrored = MirrorPosition(&p)
	if mirrored.WhiteMove == p.WhiteMove {
		t.Error("mirroring must flip the side to move")
	}
	if PopCount(mirrored.White|mirrored.Black) != PopCount(p.White|p.Black) {
		t.Error("mirroring must preserve the piece count")
	}
}
