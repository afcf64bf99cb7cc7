package common

// Perft counts the leaf nodes of the full-width move tree rooted at p
// to the given depth, the standard move-generator correctness check.
func Perft(p *Position, depth int) int {
	var result = 0
	var buffer [MaxMoves]Move
	var child Position
	for _, move := range GenerateMoves(buffer[:], p) {
		if p.MakeMove(move, &child) {
			if depth > 1 {
				result += Perft(&child, depth-1)
			} else {
				result++
			}
		}
	}
	return result
}

// PerftDivide breaks down the perft count by root move, returned
// keyed by the move's LAN string; this package's tests use it to
// localise a movegen discrepancy to a single root move (cmd/corvid's
// "perft divide" mode runs its own parallel per-move loop instead).
func PerftDivide(p *Position, depth int) map[string]int {
	var result = make(map[string]int)
	var buffer [MaxMoves]Move
	var child Position
	for _, move := range GenerateMoves(buffer[:], p) {
		if p.MakeMove(move, &child) {
			if depth > 1 {
				result[move.String()] = Perft(&child, depth-1)
			} else {
				result[move.String()] = 1
			}
		}
	}
	return result
}

// PerftStats is the standard "Perft Results" breakdown: a leaf node
// count plus, over only the moves that produce a leaf (the last ply of
// the walk), how many were captures, were captures specifically by en
// passant, gave check, or delivered checkmate.
type PerftStats struct {
	Nodes     int
	Captures  int
	EnPassant int
	Checks    int
	Mates     int
}

// PerftWithStats walks the same tree as Perft while classifying each
// leaf-producing move, the UCI "go perft D" search mode.
func PerftWithStats(p *Position, depth int) PerftStats {
	var stats PerftStats
	perftStatsWalk(p, depth, &stats)
	return stats
}

func perftStatsWalk(p *Position, depth int, stats *PerftStats) {
	var buffer [MaxMoves]Move
	var child Position
	for _, move := range GenerateMoves(buffer[:], p) {
		if !p.MakeMove(move, &child) {
			continue
		}
		if depth > 1 {
			perftStatsWalk(&child, depth-1, stats)
			continue
		}
		stats.Nodes++
		if move.CapturedPiece() != Empty {
			stats.Captures++
		}
		if move.IsEnPassant(p) {
			stats.EnPassant++
		}
		if child.IsCheck() {
			stats.Checks++
			if len(GenerateLegalMoves(&child)) == 0 {
				stats.Mates++
			}
		}
	}
}
