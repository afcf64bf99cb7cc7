// Package uci implements the UCI text protocol on top of an engine
// that exposes StartSearch/StopSearch/PonderHit and reports back
// through the SearchSink this package provides.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/corvid-engine/corvid/pkg/common"
)

// Engine is the surface pkg/engine.Engine presents to the protocol
// layer. StartSearch/StopSearch/PonderHit are synchronous: StopSearch
// does not return until the worker has already delivered its result
// through SendResult or SendPerft, so the protocol never needs its own
// channel to learn a search has ended.
type Engine interface {
	Prepare() error
	ClearHash()
	SetDebug(on bool)
	StartSearch(params common.SearchParams) error
	StopSearch()
	PonderHit()
}

// Protocol drives one UCI session over stdin/stdout. It owns the game
// history (the position list the "position" command builds) and the
// option table; the engine owns everything about how to search.
type Protocol struct {
	name    string
	author  string
	version string
	options []Option
	engine  Engine

	out sync.Mutex // serializes stdout between info lines and bestmove

	mu        sync.Mutex
	positions []common.Position
	thinking  bool
	debug     bool
}

// New builds a Protocol. SetEngine must be called once before Run,
// since the engine and the protocol are constructed in a cycle: the
// engine needs a SearchSink (this Protocol) and the protocol needs the
// engine.
func New(name, author, version string, options []Option) *Protocol {
	var initPosition, err = common.NewPositionFromFEN(common.InitialPositionFen)
	if err != nil {
		panic(err)
	}
	return &Protocol{
		name:      name,
		author:    author,
		version:   version,
		options:   options,
		positions: []common.Position{initPosition},
	}
}

// SetEngine completes the construction cycle; see New.
func (p *Protocol) SetEngine(e Engine) {
	p.engine = e
}

// SetOptions installs the option table. Separate from New because the
// options bind pointers into the engine's Options struct, and the
// engine itself needs this Protocol as its SearchSink before it can
// be constructed.
func (p *Protocol) SetOptions(options []Option) {
	p.options = options
}

// SendResult implements engine.SearchSink. It is called from the
// engine's worker goroutine once a search has finished or been
// stopped, which in the synchronous design is always before
// Engine.StopSearch returns.
func (p *Protocol) SendResult(result common.SearchResult) {
	p.mu.Lock()
	p.thinking = false
	p.mu.Unlock()

	p.out.Lock()
	defer p.out.Unlock()
	if result.BestMove == common.MoveEmpty {
		fmt.Println("bestmove 0000")
		return
	}
	if result.PonderMove != common.MoveEmpty {
		fmt.Printf("bestmove %v ponder %v\n", result.BestMove, result.PonderMove)
	} else {
		fmt.Printf("bestmove %v\n", result.BestMove)
	}
}

// SendPerft implements engine.SearchSink's other half: the outcome of
// a "go perft D" search mode, reported as an info string rather than a
// bestmove, since a perft run never chooses a move.
func (p *Protocol) SendPerft(stats common.PerftStats) {
	p.mu.Lock()
	p.thinking = false
	p.mu.Unlock()

	p.out.Lock()
	defer p.out.Unlock()
	fmt.Printf("info string perft nodes %v captures %v ep %v checks %v mates %v\n",
		stats.Nodes, stats.Captures, stats.EnPassant, stats.Checks, stats.Mates)
}

// Run reads commands from stdin until "quit" or EOF, dispatching each
// one to the matching handler. Errors are logged and otherwise
// ignored, per the protocol's don't-crash-the-GUI-connection contract.
func (p *Protocol) Run(logger *log.Logger) {
	var scanner = bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		var line = strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" {
			p.mu.Lock()
			var thinking = p.thinking
			p.mu.Unlock()
			if thinking {
				p.engine.StopSearch()
			}
			return
		}
		if err := p.handle(line); err != nil {
			logger.Println(err)
		}
	}
}

func (p *Protocol) handle(commandLine string) error {
	var fields = strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil
	}
	var commandName = fields[0]
	fields = fields[1:]

	p.mu.Lock()
	var thinking = p.thinking
	p.mu.Unlock()

	if thinking {
		switch commandName {
		case "stop":
			p.engine.StopSearch()
			return nil
		case "ponderhit":
			p.engine.PonderHit()
			return nil
		default:
			return fmt.Errorf("command %q rejected: search in progress", commandName)
		}
	}

	switch commandName {
	case "uci":
		return p.uciCommand()
	case "setoption":
		return p.setOptionCommand(fields)
	case "isready":
		return p.isReadyCommand()
	case "position":
		return p.positionCommand(fields)
	case "go":
		return p.goCommand(fields)
	case "ucinewgame":
		return p.uciNewGameCommand()
	case "stop", "ponderhit":
		return nil // no search running; both are no-ops
	case "debug":
		return p.debugCommand(fields)
	default:
		return fmt.Errorf("command not found: %v", commandName)
	}
}

func (p *Protocol) uciCommand() error {
	p.out.Lock()
	defer p.out.Unlock()
	fmt.Printf("id name %s %s\n", p.name, p.version)
	fmt.Printf("id author %s\n", p.author)
	for _, option := range p.options {
		fmt.Println(option.UciString())
	}
	fmt.Println("uciok")
	return nil
}

// setOptionCommand parses "setoption name <N words> [value <M words>]".
// Option names can themselves contain spaces ("Clear Hash"), so the
// split point is the literal "value" token, not a fixed field index.
func (p *Protocol) setOptionCommand(fields []string) error {
	if len(fields) < 2 || fields[0] != "name" {
		return errors.New("invalid setoption arguments")
	}
	fields = fields[1:]
	var valueIndex = findIndexString(fields, "value")
	var name string
	var value string
	if valueIndex == -1 {
		name = strings.Join(fields, " ")
	} else {
		name = strings.Join(fields[:valueIndex], " ")
		value = strings.Join(fields[valueIndex+1:], " ")
	}
	for _, option := range p.options {
		if strings.EqualFold(option.UciName(), name) {
			return option.Set(value)
		}
	}
	return fmt.Errorf("unhandled option: %v", name)
}

func (p *Protocol) isReadyCommand() error {
	if err := p.engine.Prepare(); err != nil {
		// A bad book file or similar setup problem: log it, but the
		// GUI still needs its readyok or it will consider us hung.
		fmt.Println("readyok")
		return err
	}
	fmt.Println("readyok")
	return nil
}

func (p *Protocol) positionCommand(fields []string) error {
	if len(fields) == 0 {
		return errors.New("missing position arguments")
	}
	var token = fields[0]
	var fen string
	var movesIndex = findIndexString(fields, "moves")
	switch token {
	case "startpos":
		fen = common.InitialPositionFen
	case "fen":
		if movesIndex == -1 {
			fen = strings.Join(fields[1:], " ")
		} else {
			fen = strings.Join(fields[1:movesIndex], " ")
		}
	default:
		return errors.New("unknown position command")
	}
	var pos, err = common.NewPositionFromFEN(fen)
	if err != nil {
		return err
	}
	var positions = []common.Position{pos}
	if movesIndex >= 0 {
		for _, lan := range fields[movesIndex+1:] {
			var next, ok = positions[len(positions)-1].MakeMoveLAN(lan)
			if !ok {
				// Stop at the first bad move rather than rejecting the
				// whole command: everything up to here is still valid.
				break
			}
			positions = append(positions, next)
		}
	}
	p.mu.Lock()
	p.positions = positions
	p.mu.Unlock()
	return nil
}

func (p *Protocol) goCommand(fields []string) error {
	p.mu.Lock()
	var positions = p.positions
	p.mu.Unlock()

	var limits = parseLimits(fields, &positions[len(positions)-1])

	p.mu.Lock()
	p.thinking = true
	p.mu.Unlock()

	var err = p.engine.StartSearch(common.SearchParams{
		Positions: positions,
		Limits:    limits,
		Progress:  p.sendInfo,
	})
	if err != nil {
		p.mu.Lock()
		p.thinking = false
		p.mu.Unlock()
		return err
	}
	return nil
}

func (p *Protocol) uciNewGameCommand() error {
	p.engine.ClearHash()
	return nil
}

func (p *Protocol) debugCommand(fields []string) error {
	if len(fields) == 0 {
		return errors.New("missing debug argument")
	}
	var on bool
	switch fields[0] {
	case "on":
		on = true
	case "off":
		on = false
	default:
		return errors.New("unknown debug argument")
	}
	p.mu.Lock()
	p.debug = on
	p.mu.Unlock()
	p.engine.SetDebug(on)
	return nil
}

// sendInfo formats one progress tick as a UCI "info" line. A periodic
// currmove tick (Depth==0, CurrMove set) is formatted differently from
// a completed-iteration summary.
func (p *Protocol) sendInfo(si common.SearchInfo) {
	p.out.Lock()
	defer p.out.Unlock()
	if si.Depth == 0 && si.CurrMove != common.MoveEmpty {
		fmt.Println(currMoveToUci(si))
		return
	}
	fmt.Println(searchInfoToUci(si))
}

func currMoveToUci(si common.SearchInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "info currmove %v currmovenumber %v nodes %v",
		si.CurrMove, si.CurrMoveNumber, si.Nodes)
	if len(si.CurrLine) != 0 {
		fmt.Fprintf(&sb, " currline")
		for _, move := range si.CurrLine {
			sb.WriteString(" ")
			sb.WriteString(move.String())
		}
	}
	return sb.String()
}

func searchInfoToUci(si common.SearchInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %v seldepth %v", si.Depth, si.SelDepth)
	if si.Score.Mate != 0 {
		fmt.Fprintf(&sb, " score mate %v", si.Score.Mate)
	} else {
		fmt.Fprintf(&sb, " score cp %v", si.Score.Centipawns)
	}
	var nps = si.Nodes * 1000 / (si.Time + 1)
	fmt.Fprintf(&sb, " nodes %v time %v nps %v hashfull %v",
		si.Nodes, si.Time, nps, si.HashFull)
	if len(si.MainLine) != 0 {
		sb.WriteString(" pv")
		for _, move := range si.MainLine {
			sb.WriteString(" ")
			sb.WriteString(move.String())
		}
	}
	return sb.String()
}

func parseLimits(args []string, root *common.Position) (result common.LimitsType) {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "ponder":
			result.Ponder = true
		case "infinite":
			result.Infinite = true
		case "wtime":
			i++
			result.WhiteTime = atoiField(args, i)
		case "btime":
			i++
			result.BlackTime = atoiField(args, i)
		case "winc":
			i++
			result.WhiteIncrement = atoiField(args, i)
		case "binc":
			i++
			result.BlackIncrement = atoiField(args, i)
		case "movestogo":
			i++
			result.MovesToGo = atoiField(args, i)
		case "depth":
			i++
			result.Depth = atoiField(args, i)
		case "nodes":
			i++
			result.Nodes = atoiField(args, i)
		case "mate":
			i++
			result.Mate = atoiField(args, i)
		case "movetime":
			i++
			result.MoveTime = atoiField(args, i)
		case "perft":
			i++
			result.Perft = atoiField(args, i)
		case "searchmoves":
			// The rest of the line names root moves to restrict the
			// search to, given as LAN tokens ("e2e4"); resolve them
			// against the root position now, since "searchmoves" is
			// always the last token group on the line.
			result.SearchMoves = resolveSearchMoves(root, args[i+1:])
			i = len(args)
		}
	}
	return
}

// resolveSearchMoves matches each LAN token against root's legal
// moves. A token that matches nothing is dropped rather than rejecting
// the whole restriction list; legalRootMoves falls back to the full
// legal set if every token turns out unmatched.
func resolveSearchMoves(root *common.Position, tokens []string) []common.Move {
	if len(tokens) == 0 {
		return nil
	}
	var legal = common.GenerateLegalMoves(root)
	var result = make([]common.Move, 0, len(tokens))
	for _, token := range tokens {
		for _, m := range legal {
			if m.String() == token {
				result = append(result, m)
				break
			}
		}
	}
	return result
}

func atoiField(args []string, i int) int {
	if i >= len(args) {
		return 0
	}
	var v, _ = strconv.Atoi(args[i])
	return v
}

func findIndexString(slice []string, value string) int {
	for i, v := range slice {
		if v == value {
			return i
		}
	}
	return -1
}

// RunCli runs an arbitrary non-UCI command handler the way Run runs
// UCI commands: read a line from stdin, dispatch, repeat until EOF or
// "quit". Used by cmd/corvid's perft mode, which has no search state
// to coordinate and so needs none of Protocol's locking.
func RunCli(logger *log.Logger, handle func(ctx context.Context, line string) error) {
	var ctx = context.Background()
	var scanner = bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		var line = strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" {
			return
		}
		if err := handle(ctx, line); err != nil {
			logger.Println(err)
		}
	}
}
