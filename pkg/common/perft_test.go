package common

import "testing"

// https://www.chessprogramming.org/Perft_Results
func TestPerft(t *testing.T) {
	var tests = []struct {
		fen   string
		depth int
		nodes int
	}{
		{
			fen:   InitialPositionFen,
			depth: 5,
			nodes: 4865609,
		},
		{
			fen:   "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -",
			depth: 4,
			nodes: 4085603,
		},
		{
			fen:   "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -",
			depth: 5,
			nodes: 674624,
		},
		{
			fen:   "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
			depth: 4,
			nodes: 422333,
		},
		{
			fen:   "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
			depth: 4,
			nodes: 2103487,
		},
		{
			fen:   "r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
			depth: 4,
			nodes: 3894594,
		},
	}
	for i, test := range tests {
		p, err := NewPositionFromFEN(test.fen)
		if err != nil {
			t.Fatal(i, err)
		}
		var nodes = Perft(&p, test.depth)
		if nodes != test.nodes {
			t.Errorf("case %d %v: got %d nodes, want %d", i, test.fen, nodes, test.nodes)
		}
	}
}

// https://www.chessprogramming.org/Perft_Results
func TestPerftWithStatsMatchesPublishedBreakdown(t *testing.T) {
	p, err := NewPositionFromFEN(InitialPositionFen)
	if err != nil {
		t.Fatal(err)
	}
	var got = PerftWithStats(&p, 4)
	var want = PerftStats{Nodes: 197281, Captures: 1576, Checks: 469, Mates: 8}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestPerftDivideSumsToPerft(t *testing.T) {
	p, err := NewPositionFromFEN(InitialPositionFen)
	if err != nil {
		t.Fatal(err)
	}
	var total int
	for _, n := range PerftDivide(&p, 3) {
		total += n
	}
	if want := Perft(&p, 3); total != want {
		t.Errorf("divide sum = %d, want %d", total, want)
	}
}
