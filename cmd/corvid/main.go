package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/profile"
	"golang.org/x/sync/errgroup"

	"github.com/corvid-engine/corvid/pkg/common"
	"github.com/corvid-engine/corvid/pkg/engine"
	"github.com/corvid-engine/corvid/pkg/eval"
	"github.com/corvid-engine/corvid/pkg/uci"
)

const (
	name    = "Corvid"
	author  = "Corvid contributors"
	version = "dev"
)

var (
	flgPerft   string
	flgProfile bool
)

func main() {
	flag.StringVar(&flgPerft, "perft", "", `run "perft" or "perft divide" against stdin FEN/depth pairs instead of speaking UCI`)
	flag.BoolVar(&flgProfile, "profile", false, "write a CPU profile for the duration of the run")
	flag.Parse()

	var logger = log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile)

	if flgProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	if flgPerft != "" {
		runPerftCli(logger, flgPerft == "divide")
		return
	}

	logger.Println(name,
		"Version", version,
		"RuntimeVersion", runtime.Version(),
		"GOARCH", runtime.GOARCH,
		"GOOS", runtime.GOOS,
		"NumCPU", runtime.NumCPU(),
	)

	var evaluator = eval.NewEvaluationService()
	var protocol = uci.New(name, author, version, nil)
	var eng = engine.NewEngine(evaluator, protocol)
	protocol.SetOptions(buildOptions(eng))
	protocol.SetEngine(eng)
	protocol.Run(logger)
}

// buildOptions binds UCI options directly to the engine's live
// Options struct, plus Clear_Hash (a button with no backing field),
// Ponder (announces that "go ponder" is accepted; its value is not
// read) and MultiPV, accepted and pinned to 1 since this engine only
// ever reports a single principal variation.
func buildOptions(eng *engine.Engine) []uci.Option {
	var opts = &eng.Options
	var multiPV = 1
	var ponder = false
	return []uci.Option{
		&uci.IntOption{Name: "Hash", Min: 1, Max: 1 << 16, Value: &opts.Hash},
		&uci.BoolOption{Name: "Ponder", Value: &ponder},
		&uci.ButtonOption{Name: "Clear_Hash", Action: eng.ClearHash},
		&uci.BoolOption{Name: "OwnBook", Value: &opts.OwnBook},
		&uci.StringOption{Name: "BookFile", Value: &opts.BookFile},
		&uci.IntOption{Name: "Contempt", Min: -100, Max: 100, Value: &opts.Contempt},
		&uci.IntOption{Name: "MultiPV", Min: 1, Max: 1, Value: &multiPV},
		&uci.BoolOption{Name: "AspirationWindow", Value: &opts.AspirationWindow},
		&uci.IntOption{Name: "AspirationDelta1", Min: 1, Max: 1000, Value: &opts.AspirationDelta1},
		&uci.IntOption{Name: "AspirationDelta2", Min: 1, Max: 2000, Value: &opts.AspirationDelta2},
		&uci.BoolOption{Name: "UseMTDF", Value: &opts.UseMTDF},
		&uci.BoolOption{Name: "ExtendInCheck", Value: &opts.ExtendInCheck},
	}
}

// runPerftCli reads "<fen> <depth>" lines from stdin and prints the
// perft node count for each, or (with divide=true) a per-root-move
// breakdown. Each divide line fans its root moves out across an
// errgroup, an ordinary bounded-parallelism use of the same package
// the search core uses to own its worker goroutine — not parallel
// game-tree search.
func runPerftCli(logger *log.Logger, divide bool) {
	uci.RunCli(logger, func(ctx context.Context, line string) error {
		var fields = strings.Fields(line)
		if len(fields) < 2 {
			return fmt.Errorf("expected \"<fen> <depth>\", got %q", line)
		}
		var depth, err = strconv.Atoi(fields[len(fields)-1])
		if err != nil {
			return err
		}
		var fen = strings.Join(fields[:len(fields)-1], " ")
		var pos, posErr = common.NewPositionFromFEN(fen)
		if posErr != nil {
			return posErr
		}
		if !divide {
			fmt.Println(common.Perft(&pos, depth))
			return nil
		}
		return perftDivideParallel(ctx, &pos, depth)
	})
}

func perftDivideParallel(ctx context.Context, pos *common.Position, depth int) error {
	var buffer [common.MaxMoves]common.Move
	var moves = common.GenerateMoves(buffer[:], pos)

	type line struct {
		move  string
		nodes int
	}
	var results = make([]line, len(moves))

	var g, _ = errgroup.WithContext(ctx)
	for i, move := range moves {
		var i, move = i, move
		g.Go(func() error {
			var child common.Position
			if !pos.MakeMove(move, &child) {
				return nil
			}
			var nodes = 1
			if depth > 1 {
				nodes = common.Perft(&child, depth-1)
			}
			results[i] = line{move: move.String(), nodes: nodes}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var total int
	for _, r := range results {
		if r.move == "" {
			continue
		}
		fmt.Printf("%v: %v\n", r.move, r.nodes)
		total += r.nodes
	}
	fmt.Println("total", total)
	return nil
}
