package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/corvid-engine/corvid/pkg/common"
)

// materialEvaluator is a minimal IEvaluator good enough to drive the
// search in tests without depending on pkg/eval, keeping the search
// core's tests free of any coupling to a specific evaluator.
type materialEvaluator struct{}

func (materialEvaluator) Evaluate(p *common.Position) int {
	var score = 0
	for _, pc := range [...]struct {
		bb  uint64
		val int
	}{
		{p.Pawns, 100}, {p.Knights, 320}, {p.Bishops, 330}, {p.Rooks, 500}, {p.Queens, 900},
	} {
		score += common.PopCount(pc.bb&p.White) * pc.val
		score -= common.PopCount(pc.bb&p.Black) * pc.val
	}
	if !p.WhiteMove {
		score = -score
	}
	return score
}

type resultCollector struct {
	mu       sync.Mutex
	result   common.SearchResult
	got      bool
	perft    common.PerftStats
	gotPerft bool
}

func (r *resultCollector) SendResult(result common.SearchResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.result = result
	r.got = true
}

func (r *resultCollector) SendPerft(stats common.PerftStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.perft = stats
	r.gotPerft = true
}

func (r *resultCollector) wait(t *testing.T) common.SearchResult {
	t.Helper()
	for i := 0; i < 200; i++ {
		r.mu.Lock()
		var got, result = r.got, r.result
		r.mu.Unlock()
		if got {
			return result
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("search did not report a result in time")
	return common.SearchResult{}
}

func (r *resultCollector) waitPerft(t *testing.T) common.PerftStats {
	t.Helper()
	for i := 0; i < 200; i++ {
		r.mu.Lock()
		var got, stats = r.gotPerft, r.perft
		r.mu.Unlock()
		if got {
			return stats
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("search did not report perft stats in time")
	return common.PerftStats{}
}

func startPosition(t *testing.T) common.Position {
	t.Helper()
	var p, err = common.NewPositionFromFEN(common.InitialPositionFen)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// TestStartSearchReturnsALegalMove covers §8's literal guarantee: any
// completed search returns a move from the root's legal move list,
// never an empty or fabricated one.
func TestStartSearchReturnsALegalMove(t *testing.T) {
	var sink = &resultCollector{}
	var e = NewEngine(materialEvaluator{}, sink)
	var root = startPosition(t)

	if err := e.StartSearch(common.SearchParams{
		Positions: []common.Position{root},
		Limits:    common.LimitsType{Depth: 3},
	}); err != nil {
		t.Fatal(err)
	}

	var result = sink.wait(t)
	var legal = common.GenerateLegalMoves(&root)
	var found = false
	for _, m := range legal {
		if m == result.BestMove {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("BestMove %v is not in the root's legal move list", result.BestMove)
	}
}

// TestStopSearchIsIdempotent covers §8's stop-idempotence guarantee: a
// second StopSearch call after the worker has already reported its
// result must not block or panic.
func TestStopSearchIsIdempotent(t *testing.T) {
	var sink = &resultCollector{}
	var e = NewEngine(materialEvaluator{}, sink)
	var root = startPosition(t)

	if err := e.StartSearch(common.SearchParams{
		Positions: []common.Position{root},
		Limits:    common.LimitsType{Infinite: true},
	}); err != nil {
		t.Fatal(err)
	}

	e.StopSearch()
	sink.wait(t)
	e.StopSearch() // must return promptly, not block or panic
}

// TestStartSearchRejectsConcurrentSearch covers the illegal-state
// guarantee: calling StartSearch while one is already running is
// rejected rather than silently clobbering the running search.
func TestStartSearchRejectsConcurrentSearch(t *testing.T) {
	var sink = &resultCollector{}
	var e = NewEngine(materialEvaluator{}, sink)
	var root = startPosition(t)

	if err := e.StartSearch(common.SearchParams{
		Positions: []common.Position{root},
		Limits:    common.LimitsType{Infinite: true},
	}); err != nil {
		t.Fatal(err)
	}
	defer e.StopSearch()

	if err := e.StartSearch(common.SearchParams{
		Positions: []common.Position{root},
		Limits:    common.LimitsType{Depth: 1},
	}); err != errSearchInProgress {
		t.Errorf("got err=%v, want errSearchInProgress", err)
	}
}

// TestStartSearchPerftReportsStatsInsteadOfAMove covers the "go perft
// D" search mode (§6/§8 scenario 6): StartSearch with Limits.Perft set
// must report the standard node/capture/e.p./check/mate breakdown
// through SendPerft rather than picking a move.
func TestStartSearchPerftReportsStatsInsteadOfAMove(t *testing.T) {
	var sink = &resultCollector{}
	var e = NewEngine(materialEvaluator{}, sink)
	var root = startPosition(t)

	if err := e.StartSearch(common.SearchParams{
		Positions: []common.Position{root},
		Limits:    common.LimitsType{Perft: 3},
	}); err != nil {
		t.Fatal(err)
	}

	var stats = sink.waitPerft(t)
	var want = common.PerftStats{Nodes: 8902, Captures: 34, Checks: 12}
	if stats != want {
		t.Errorf("got %+v, want %+v", stats, want)
	}
}

// TestStartSearchHonoursSearchMovesRestriction covers §3/§4.1/§6:
// restricting the root to a single UCI move must make the search
// return that move even when it is not what an unrestricted search
// would have preferred.
func TestStartSearchHonoursSearchMovesRestriction(t *testing.T) {
	var sink = &resultCollector{}
	var e = NewEngine(materialEvaluator{}, sink)
	var root = startPosition(t)

	var legal = common.GenerateLegalMoves(&root)
	var restriction common.Move
	for _, m := range legal {
		if m.String() == "a2a3" {
			restriction = m
			break
		}
	}
	if restriction == common.MoveEmpty {
		t.Fatal("a2a3 should be a legal opening move")
	}

	if err := e.StartSearch(common.SearchParams{
		Positions: []common.Position{root},
		Limits:    common.LimitsType{Depth: 4, SearchMoves: []common.Move{restriction}},
	}); err != nil {
		t.Fatal(err)
	}

	var result = sink.wait(t)
	if result.BestMove != restriction {
		t.Errorf("got bestmove %v, want the restricted move %v", result.BestMove, restriction)
	}
}

func TestClearHashResetsHashfull(t *testing.T) {
	var sink = &resultCollector{}
	var e = NewEngine(materialEvaluator{}, sink)
	var root = startPosition(t)

	if err := e.StartSearch(common.SearchParams{
		Positions: []common.Position{root},
		Limits:    common.LimitsType{Depth: 4},
	}); err != nil {
		t.Fatal(err)
	}
	sink.wait(t)

	e.ClearHash()
	if full := e.HashFull(); full != 0 {
		t.Errorf("got hashfull=%v after ClearHash, want 0", full)
	}
}
