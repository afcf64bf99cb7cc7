// Package engine implements the search core: iterative-deepening
// negamax with a transposition table, the forward-pruning family and
// a single dedicated worker goroutine. It knows nothing about UCI; it
// is driven entirely through StartSearch/StopSearch/PonderHit and
// reports back through SearchParams.Progress and a SearchSink.
package engine

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/corvid-engine/corvid/pkg/book"
	"github.com/corvid-engine/corvid/pkg/common"
)

// IEvaluator is the only thing the search needs from an evaluation
// function: a side-to-move-relative centipawn score for one position.
// pkg/eval.EvaluationService satisfies this without pkg/engine ever
// importing pkg/eval.
type IEvaluator interface {
	Evaluate(p *common.Position) int
}

// SearchSink receives the one terminal result a completed or stopped
// search produces. Per-iteration progress goes through
// SearchParams.Progress instead, since the caller already supplies
// that per request. SendPerft reports the outcome of a "perft" search
// mode instead, which counts nodes rather than choosing a move.
type SearchSink interface {
	SendResult(result common.SearchResult)
	SendPerft(stats common.PerftStats)
}

var errSearchInProgress = errors.New("search already in progress")

// Engine owns exactly one search worker. Every exported method is
// safe to call from any goroutine; internally it serializes through
// mu and hands the actual search off to the single worker.
type Engine struct {
	Options   Options
	evaluator IEvaluator
	sink      SearchSink
	book      *book.Book
	rng       *rand.Rand

	mu          sync.Mutex
	tt          *transTable
	w           *worker
	tc          *timeController
	limits      common.LimitsType
	cancel      context.CancelFunc
	group       *errgroup.Group
	hardTimer   *time.Timer
	searching   bool
	lastBook    string
	rootIsWhite bool
	debug       bool

	progress         func(common.SearchInfo)
	lastCurrMoveTick time.Time
}

// SetDebug toggles the UCI "debug on|off" mode. While on, currmove
// progress ticks also carry the worker's current search line.
func (e *Engine) SetDebug(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.debug = on
}

// emitCurrMove reports the root move currently being searched, at
// most once every 500ms, the cadence UCI GUIs expect for "currmove"
// lines. It is called from the root move loop in search.go.
func (e *Engine) emitCurrMove(w *worker, move common.Move, moveNumber int) {
	if e.progress == nil {
		return
	}
	var now = e.now()
	if !e.lastCurrMoveTick.IsZero() && now.Sub(e.lastCurrMoveTick) < 500*time.Millisecond {
		return
	}
	e.lastCurrMoveTick = now
	var info = common.SearchInfo{
		CurrMove:       move,
		CurrMoveNumber: moveNumber,
		Nodes:          w.counters.nodes + w.counters.qNodes,
	}
	if e.debug {
		info.CurrLine = append([]common.Move{}, w.currentVariation[:w.variationLen]...)
	}
	e.progress(info)
}

func NewEngine(evaluator IEvaluator, sink SearchSink) *Engine {
	var e = &Engine{
		Options:   NewOptions(),
		evaluator: evaluator,
		sink:      sink,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	e.tt = newTransTable(e.Options.Hash)
	e.w = newWorker(e)
	return e
}

// Prepare reallocates the transposition table when Hash has changed
// and (re)loads the opening book when OwnBook/BookFile has changed.
// The protocol driver calls this after setoption and before the first
// "isready" is acknowledged.
func (e *Engine) Prepare() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tt.Size() != e.Options.Hash {
		e.tt = newTransTable(e.Options.Hash)
	}
	if e.Options.OwnBook && e.Options.BookFile != "" && e.Options.BookFile != e.lastBook {
		var b, err = book.Load(e.Options.BookFile)
		if err != nil {
			return err
		}
		e.book = b
		e.lastBook = e.Options.BookFile
	}
	if !e.Options.OwnBook {
		e.book = nil
	}
	return nil
}

func (e *Engine) now() time.Time {
	return time.Now()
}

// ClearHash drops every transposition table entry; wired to UCI's
// "Clear_Hash" button.
func (e *Engine) ClearHash() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tt.clear()
}

// HashFull reports the table's fullness in UCI hashfull permille.
func (e *Engine) HashFull() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tt.sizeInfo()
}

// timeControlled reports whether limits describes a real-game clock
// budget rather than analysis (infinite/ponder) or a fixed
// depth/nodes/mate search — the condition under which an opening book
// move is worth taking without searching at all.
func timeControlled(limits common.LimitsType) bool {
	if limits.Infinite || limits.Ponder {
		return false
	}
	return limits.WhiteTime > 0 || limits.BlackTime > 0 || limits.MoveTime > 0
}

// StartSearch launches the worker goroutine and returns once the
// worker has copied the root position and is ready to report
// progress; it does not wait for the search to finish. Calling it
// while a search is already running is an illegal-state error the
// caller should log and ignore, per the protocol's one-search-at-a-time
// contract.
func (e *Engine) StartSearch(params common.SearchParams) error {
	e.mu.Lock()
	if e.searching {
		e.mu.Unlock()
		return errSearchInProgress
	}
	e.searching = true
	e.limits = params.Limits
	var root = params.Positions[len(params.Positions)-1]
	e.rootIsWhite = root.WhiteMove

	e.w.reset()
	e.w.historyKeys = gameHistoryKeys(params.Positions)
	e.w.stack[0].position = root
	e.tt.ageEntries()

	var now = e.now()
	e.tc = newTimeController(now, params.Limits, root.WhiteMove)

	var ctx, cancel = context.WithCancel(context.Background())
	e.cancel = cancel
	if hard, ok := e.tc.hardDeadline(); ok {
		e.hardTimer = time.AfterFunc(hard, cancel)
	}

	var g, gctx = errgroup.WithContext(ctx)
	e.group = g
	var book, useBook = e.selectBookMove(root, params)

	var ready = make(chan struct{})

	g.Go(func() error {
		if params.Limits.Perft > 0 {
			close(ready)
			var stats = common.PerftWithStats(&root, params.Limits.Perft)
			e.mu.Lock()
			e.searching = false
			e.mu.Unlock()
			e.sink.SendPerft(stats)
			return nil
		}
		var result common.SearchResult
		if useBook {
			close(ready)
			result = common.SearchResult{BestMove: book, PonderMove: common.MoveEmpty}
		} else {
			result = e.runSearch(gctx, params, ready)
		}
		e.mu.Lock()
		e.searching = false
		e.mu.Unlock()
		e.sink.SendResult(result)
		return nil
	})

	e.mu.Unlock()
	<-ready
	return nil
}

// selectBookMove returns a book move and true when OwnBook is enabled,
// a book is loaded, the search mode is a real-game clock budget (not
// analysis, not a fixed-depth/nodes/mate search) and the book actually
// has an entry for the root position.
func (e *Engine) selectBookMove(root common.Position, params common.SearchParams) (common.Move, bool) {
	if e.book == nil || !timeControlled(params.Limits) {
		return common.MoveEmpty, false
	}
	var legal = common.GenerateLegalMoves(&root)
	return e.book.Pick(&root, legal, e.rng)
}

// StopSearch cancels the running search and waits for the worker to
// finish reporting its result. Stopping an already-stopped search is
// a no-op, matching the idempotence the protocol layer assumes.
func (e *Engine) StopSearch() {
	e.mu.Lock()
	if !e.searching {
		e.mu.Unlock()
		return
	}
	var g, cancel = e.group, e.cancel
	e.mu.Unlock()

	cancel()
	g.Wait()
}

// PonderHit converts a running ponder search into a time-controlled
// one: it rebases the time controller onto now and, if that produces
// a hard deadline, arranges for the context to be cancelled when it
// arrives. It never restarts iterative deepening. A PonderHit with no
// search running, or one that arrives after the worker has already
// finished and reported, is a no-op.
func (e *Engine) PonderHit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.searching || e.tc == nil {
		return
	}

	var now = e.now()
	var limits = e.limits
	limits.Ponder = false
	limits.Infinite = false
	e.tc.ponderHit(now, limits, e.rootIsWhite)

	if e.hardTimer != nil {
		e.hardTimer.Stop()
	}
	if hard, ok := e.tc.hardDeadline(); ok {
		var remaining = hard - e.tc.elapsedSince(now)
		if remaining <= 0 {
			e.cancel()
		} else {
			e.hardTimer = time.AfterFunc(remaining, e.cancel)
		}
	}
}

func gameHistoryKeys(positions []common.Position) map[uint64]int {
	var keys = make(map[uint64]int, len(positions))
	for _, p := range positions {
		keys[p.Key]++
	}
	return keys
}
