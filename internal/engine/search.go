package engine

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/hailam/chessmove/internal/board"
)

// Search constants
const (
	Infinity = 1000000
	MaxPly   = 128

	// MateThreshold is the smallest magnitude of a mate score. A mate
	// found at ply p scores Infinity - p.
	MateThreshold = Infinity - MaxPly

	// MaxQuiescenceDepth caps the number of tactical plies searched
	// beyond the nominal depth.
	MaxQuiescenceDepth = 4
)

// SearchResult is either Decisive, a score with the move that achieves
// it, or Terminal, a score with no move: checkmate, a draw, or a
// frontier value from quiescence.
type SearchResult struct {
	Score int
	Move  board.Move
}

// Decisive returns a result that carries a move.
func Decisive(score int, move board.Move) SearchResult {
	return SearchResult{Score: score, Move: move}
}

// Terminal returns a result without a move.
func Terminal(score int) SearchResult {
	return SearchResult{Score: score, Move: board.NoMove}
}

// IsTerminal reports whether the result carries no move.
func (r SearchResult) IsTerminal() bool {
	return r.Move.IsNone()
}

// SearchOptions configures a search.
type SearchOptions struct {
	HashMB       int
	Eval         EvalOptions
	DeltaPruning bool
}

// DefaultSearchOptions returns the options used by NewEngine.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		HashMB:       16,
		Eval:         EvalOptions{CenterControl: true},
		DeltaPruning: true,
	}
}

// SearchContext holds the state of one top-level search: the position
// being searched, the caches and the node counter. A context is used by
// one goroutine at a time and never shared between searches.
type SearchContext struct {
	pos     *board.Position
	color   board.Color
	rootPly int

	tt      *TranspositionTable
	killers *KillerTable
	orderer *MoveOrderer
	eval    *Evaluator
	opts    SearchOptions

	nodes   uint64
	counter *atomic.Uint64
	log     zerolog.Logger
}

// NewSearchContext creates a context searching pos for the side to move.
// counter, if not nil, is incremented for every position evaluated.
func NewSearchContext(pos *board.Position, opts SearchOptions, logger zerolog.Logger, counter *atomic.Uint64) *SearchContext {
	killers := NewKillerTable()
	return &SearchContext{
		pos:     pos,
		color:   pos.SideToMove(),
		rootPly: pos.Ply(),
		tt:      NewTranspositionTable(opts.HashMB),
		killers: killers,
		orderer: NewMoveOrderer(killers),
		eval:    NewEvaluator(opts.Eval, logger),
		opts:    opts,
		counter: counter,
		log:     logger,
	}
}

// Search runs a fixed-depth search from the root position.
func (sc *SearchContext) Search(depth int) SearchResult {
	return sc.search(depth, -Infinity, Infinity, true)
}

// Color returns the side the context searches for.
func (sc *SearchContext) Color() board.Color {
	return sc.color
}

// Nodes returns the number of positions visited by this context.
func (sc *SearchContext) Nodes() uint64 {
	return sc.nodes
}

// TT returns the context's transposition table.
func (sc *SearchContext) TT() *TranspositionTable {
	return sc.tt
}

// Clear empties the transposition table and killer moves.
func (sc *SearchContext) Clear() {
	sc.tt.Clear()
	sc.killers.Clear()
	sc.nodes = 0
}

func (sc *SearchContext) visit() {
	sc.nodes++
	if sc.counter != nil {
		sc.counter.Add(1)
	}
}

// ply returns the distance from the root of the current position.
func (sc *SearchContext) ply() int {
	return sc.pos.Ply() - sc.rootPly
}

// terminalScore scores a finished position from the searching side's
// point of view. Mates closer to the root score further from zero.
func (sc *SearchContext) terminalScore(status board.Status) int {
	switch {
	case status == board.Checkmate:
		mate := Infinity - sc.ply()
		if sc.pos.SideToMove() == sc.color {
			return -mate
		}
		return mate
	case status.IsDraw():
		return 0
	default:
		sc.log.Warn().
			Str("fen", sc.pos.FEN()).
			Stringer("status", status).
			Msg("no legal moves in an unclassified position, scoring as draw")
		return 0
	}
}

// PrincipalVariation follows best moves through the transposition table
// from the current position, up to maxLen moves.
func (sc *SearchContext) PrincipalVariation(maxLen int) []board.Move {
	var pv []board.Move
	var guards []*board.MoveGuard
	defer func() {
		for i := len(guards) - 1; i >= 0; i-- {
			guards[i].Release()
		}
	}()

	seen := make(map[uint64]bool)
	for len(pv) < maxLen {
		hash := sc.pos.Hash()
		if seen[hash] {
			break
		}
		seen[hash] = true

		entry, ok := sc.tt.Probe(hash)
		if !ok || entry.BestMove.IsNone() {
			break
		}
		g, err := sc.pos.MakeMove(entry.BestMove)
		if err != nil {
			break
		}
		guards = append(guards, g)
		pv = append(pv, entry.BestMove)
	}
	return pv
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
