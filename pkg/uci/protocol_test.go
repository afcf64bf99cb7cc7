package uci

import (
	"testing"

	"github.com/corvid-engine/corvid/pkg/common"
)

type fakeEngine struct {
	prepareErr   error
	started      []common.SearchParams
	startErr     error
	stopped      int
	ponderHits   int
	debugStates  []bool
	clearedHash  int
}

func (f *fakeEngine) Prepare() error { return f.prepareErr }
func (f *fakeEngine) ClearHash()     { f.clearedHash++ }
func (f *fakeEngine) SetDebug(on bool) {
	f.debugStates = append(f.debugStates, on)
}
func (f *fakeEngine) StartSearch(params common.SearchParams) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = append(f.started, params)
	return nil
}
func (f *fakeEngine) StopSearch() { f.stopped++ }
func (f *fakeEngine) PonderHit()  { f.ponderHits++ }

func newTestProtocol(eng *fakeEngine) *Protocol {
	var p = New("Corvid", "test", "dev", nil)
	p.SetEngine(eng)
	return p
}

func TestSetOptionParsesMultiWordNameAndValue(t *testing.T) {
	var eng = &fakeEngine{}
	var p = newTestProtocol(eng)
	var hash = 16
	p.SetOptions([]Option{&IntOption{Name: "Hash", Min: 1, Max: 1024, Value: &hash}})

	if err := p.handle("setoption name Hash value 256"); err != nil {
		t.Fatal(err)
	}
	if hash != 256 {
		t.Errorf("got Hash=%v, want 256", hash)
	}
}

func TestSetOptionHandlesButtonWithNoValueToken(t *testing.T) {
	var eng = &fakeEngine{}
	var p = newTestProtocol(eng)
	p.SetOptions([]Option{&ButtonOption{Name: "Clear Hash", Action: eng.ClearHash}})

	if err := p.handle("setoption name Clear Hash"); err != nil {
		t.Fatal(err)
	}
	if eng.clearedHash != 1 {
		t.Errorf("got clearedHash=%v, want 1", eng.clearedHash)
	}
}

func TestPositionCommandStopsAtFirstBadMove(t *testing.T) {
	var eng = &fakeEngine{}
	var p = newTestProtocol(eng)

	if err := p.handle("position startpos moves e2e4 e7e5 zz99"); err != nil {
		t.Fatal(err)
	}
	if len(p.positions) != 3 {
		t.Errorf("got %d positions, want 3 (start + two legal moves, stopping before the bad token)", len(p.positions))
	}
}

func TestGoCommandRejectedWhileAlreadyThinking(t *testing.T) {
	var eng = &fakeEngine{}
	var p = newTestProtocol(eng)

	if err := p.handle("go infinite"); err != nil {
		t.Fatal(err)
	}
	if err := p.handle("go depth 5"); err == nil {
		t.Error("expected a second \"go\" to be rejected while the first search is still running")
	}
	if len(eng.started) != 1 {
		t.Errorf("got %d StartSearch calls, want 1", len(eng.started))
	}
}

func TestStopWhileThinkingCallsStopSearch(t *testing.T) {
	var eng = &fakeEngine{}
	var p = newTestProtocol(eng)

	if err := p.handle("go infinite"); err != nil {
		t.Fatal(err)
	}
	if err := p.handle("stop"); err != nil {
		t.Fatal(err)
	}
	if eng.stopped != 1 {
		t.Errorf("got stopped=%v, want 1", eng.stopped)
	}
}

func TestStopWithNoSearchRunningIsANoop(t *testing.T) {
	var eng = &fakeEngine{}
	var p = newTestProtocol(eng)
	if err := p.handle("stop"); err != nil {
		t.Fatal(err)
	}
	if eng.stopped != 0 {
		t.Errorf("got stopped=%v, want 0", eng.stopped)
	}
}

func TestDebugOnTogglesEngine(t *testing.T) {
	var eng = &fakeEngine{}
	var p = newTestProtocol(eng)
	if err := p.handle("debug on"); err != nil {
		t.Fatal(err)
	}
	if err := p.handle("debug off"); err != nil {
		t.Fatal(err)
	}
	if len(eng.debugStates) != 2 || eng.debugStates[0] != true || eng.debugStates[1] != false {
		t.Errorf("got %v, want [true false]", eng.debugStates)
	}
}

func TestSendResultFormatsPonderMove(t *testing.T) {
	var eng = &fakeEngine{}
	var p = newTestProtocol(eng)
	var legal = common.GenerateLegalMoves(&p.positions[0])
	if len(legal) < 2 {
		t.Fatal("expected at least two legal moves from the start position")
	}
	// SendResult prints the bestmove/ponder line straight to stdout,
	// which is not captured here: this only checks that formatting a
	// result with a ponder move does not panic.
	p.SendResult(common.SearchResult{BestMove: legal[0], PonderMove: legal[1]})
}

func TestSearchInfoToUciIncludesSeldepthAndHashfull(t *testing.T) {
	var si = common.SearchInfo{Depth: 5, SelDepth: 9, HashFull: 123, Nodes: 1000, Time: 500}
	var line = searchInfoToUci(si)
	if !containsAll(line, "depth 5", "seldepth 9", "hashfull 123") {
		t.Errorf("got %q, missing expected fields", line)
	}
}

func TestCurrMoveToUciOmitsCurrlineWhenNotDebugging(t *testing.T) {
	var si = common.SearchInfo{CurrMove: 0, CurrMoveNumber: 3}
	var line = currMoveToUci(si)
	if containsAll(line, "currline") {
		t.Errorf("got %q, expected no currline without debug mode", line)
	}
}

func containsAll(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if !contains(s, sub) {
			return false
		}
	}
	return true
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
