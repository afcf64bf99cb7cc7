// Package book loads a read-only opening book: a JSON file mapping
// normalized FEN to a ranked list of UCI moves. The engine consults it
// before starting a search; it never writes the file back and carries
// no learning/self-play state, unlike the richer book formats this
// package is adapted from.
package book

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"

	"github.com/corvid-engine/corvid/pkg/common"
)

// Move is a single ranked recommendation for a book position.
type Move struct {
	UCI    string `json:"uci"`
	Weight int    `json:"weight"`
}

// entry is one book position as stored on disk, keyed by FEN in onDisk.Positions.
type entry struct {
	Moves []Move `json:"moves"`
}

// onDisk is the JSON document's top-level shape.
type onDisk struct {
	Positions map[string]entry `json:"positions"`
}

// Book is an in-memory, read-only opening book indexed by both the
// normalized FEN string and the position's Zobrist key, so a lookup
// never has to re-derive a key the caller already computed.
type Book struct {
	mu    sync.RWMutex
	byFEN map[string]entry
	byKey map[uint64]entry
}

// Load reads and indexes a book file. A book is optional ambient
// state: callers that fail to load one should fall back to searching,
// not fail startup.
func Load(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("book: read %v: %w", path, err)
	}
	var doc onDisk
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("book: parse %v: %w", path, err)
	}

	var b = &Book{
		byFEN: make(map[string]entry, len(doc.Positions)),
		byKey: make(map[uint64]entry, len(doc.Positions)),
	}
	for fen, e := range doc.Positions {
		var normalized = normalizeFEN(fen)
		b.byFEN[normalized] = e
		if pos, err := common.NewPositionFromFEN(fen); err == nil {
			b.byKey[pos.Key] = e
		}
	}
	return b, nil
}

// normalizeFEN keeps only the fields that define the position proper
// (board, side to move, castling rights, en-passant square), dropping
// the halfmove clock and fullmove number so two games that reach the
// same position at different move counts still hit the same entry.
func normalizeFEN(fen string) string {
	var fields = strings.Fields(fen)
	if len(fields) < 4 {
		return fen
	}
	return strings.Join(fields[:4], " ")
}

// Probe returns the book's ranked moves for p, if any. It prefers the
// Zobrist-key index and falls back to a normalized-FEN lookup, which
// matters only for a book built without matching zobrist parameters.
func (b *Book) Probe(p *common.Position) ([]Move, bool) {
	if b == nil {
		return nil, false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if e, ok := b.byKey[p.Key]; ok && len(e.Moves) > 0 {
		return e.Moves, true
	}
	if e, ok := b.byFEN[normalizeFEN(p.String())]; ok && len(e.Moves) > 0 {
		return e.Moves, true
	}
	return nil, false
}

// Pick selects one legal move from the book's recommendations for p,
// weighted by Move.Weight. It returns common.MoveEmpty, false when
// either the book has nothing for p or none of its moves are legal
// (the book and the move generator disagreeing means the book is
// stale for this position; callers should fall back to searching).
func (b *Book) Pick(p *common.Position, legal []common.Move, rng *rand.Rand) (common.Move, bool) {
	bookMoves, ok := b.Probe(p)
	if !ok {
		return common.MoveEmpty, false
	}

	type candidate struct {
		move   common.Move
		weight int
	}
	var candidates []candidate
	var totalWeight int
	for _, bm := range bookMoves {
		for _, lm := range legal {
			if lm.String() == bm.UCI {
				var w = bm.Weight
				if w <= 0 {
					w = 1
				}
				candidates = append(candidates, candidate{lm, w})
				totalWeight += w
			}
		}
	}
	if len(candidates) == 0 {
		return common.MoveEmpty, false
	}

	var pick = rng.Intn(totalWeight)
	for _, c := range candidates {
		pick -= c.weight
		if pick < 0 {
			return c.move, true
		}
	}
	return candidates[len(candidates)-1].move, true
}
