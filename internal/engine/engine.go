package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/chessmove/internal/board"
)

// SearchInfo contains information about the current search.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // Permille of hash table used
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Maximum depth (0 = MaxSearchDepth)
	MoveTime time.Duration // Time for this move (0 = no limit)
}

// SearchOutcome is the result of an iterative deepening search.
type SearchOutcome struct {
	Move    board.Move
	Score   int
	Depth   int // deepest completed depth, 0 if none
	Nodes   uint64
	Elapsed time.Duration
	PV      []board.Move
}

// MaxSearchDepth bounds iterative deepening when no depth is given.
const MaxSearchDepth = 64

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // 2 ply, 1s
	Medium                   // 3 ply, 3s
	Hard                     // 4 ply, 5s
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 2, MoveTime: time.Second},
	Medium: {Depth: 3, MoveTime: 3 * time.Second},
	Hard:   {Depth: 4, MoveTime: 5 * time.Second},
}

// ParseDifficulty converts a name such as "medium" to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch s {
	case "easy", "Easy":
		return Easy, nil
	case "medium", "Medium", "":
		return Medium, nil
	case "hard", "Hard":
		return Hard, nil
	}
	return Medium, errors.Errorf("unknown difficulty %q", s)
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Hard:
		return "hard"
	default:
		return "medium"
	}
}

// Engine is the chess AI engine. It holds configuration only; every
// search gets a fresh SearchContext, so caches never leak between calls.
// An Engine runs one search at a time.
type Engine struct {
	opts       SearchOptions
	difficulty Difficulty
	log        zerolog.Logger

	positions atomic.Uint64
	stopFlag  atomic.Bool

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates a new chess engine with the given transposition table size in MB.
func NewEngine(ttSizeMB int) *Engine {
	opts := DefaultSearchOptions()
	if ttSizeMB > 0 {
		opts.HashMB = ttSizeMB
	}
	return &Engine{
		opts:       opts,
		difficulty: Medium,
		log:        log.Logger,
	}
}

// SetLogger replaces the engine's logger.
func (e *Engine) SetLogger(l zerolog.Logger) {
	e.log = l
}

// SetOptions replaces the search options.
func (e *Engine) SetOptions(opts SearchOptions) {
	e.opts = opts
}

// Options returns the current search options.
func (e *Engine) Options() SearchOptions {
	return e.opts
}

// SetDifficulty sets the engine difficulty.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.difficulty = d
}

// Difficulty returns the engine difficulty.
func (e *Engine) Difficulty() Difficulty {
	return e.difficulty
}

// Search finds the best move for the given position using the
// difficulty's depth and time limits.
func (e *Engine) Search(pos *board.Position) board.Move {
	return e.SearchWithLimits(pos, DifficultySettings[e.difficulty]).Move
}

// FindBestMove runs iterative deepening up to maxDepth within budget and
// returns the best move found, or board.NoMove if there is no legal move.
func (e *Engine) FindBestMove(pos *board.Position, maxDepth int, budget time.Duration) board.Move {
	return e.SearchWithLimits(pos, SearchLimits{Depth: maxDepth, MoveTime: budget}).Move
}

// SearchWithLimits runs iterative deepening on pos. The position is
// searched in place and is restored before returning.
//
// The time budget is checked before each depth only; a depth that has
// started always completes. If no depth completes, the first legal move
// is returned.
func (e *Engine) SearchWithLimits(pos *board.Position, limits SearchLimits) (out SearchOutcome) {
	defer e.stopFlag.Store(false)

	tm := NewTimeManager()
	tm.Start(limits.MoveTime)

	if pos == nil {
		e.log.Warn().Msg("search called without a position")
		return SearchOutcome{Move: board.NoMove}
	}

	legal := pos.LegalMoves()
	if len(legal) == 0 {
		e.log.Debug().Str("fen", pos.FEN()).Stringer("status", pos.Status()).Msg("no legal moves")
		return SearchOutcome{Move: board.NoMove}
	}

	out = SearchOutcome{Move: legal[0]}
	sc := NewSearchContext(pos, e.opts, e.log, &e.positions)

	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Str("fen", pos.FEN()).Msg("search failed, using first legal move")
			out = SearchOutcome{Move: legal[0], Nodes: sc.Nodes(), Elapsed: tm.Elapsed()}
		}
	}()

	maxDepth := limits.Depth
	if maxDepth <= 0 || maxDepth > MaxSearchDepth {
		maxDepth = MaxSearchDepth
	}

	for depth := 1; depth <= maxDepth; depth++ {
		if tm.ShouldStop() || e.stopFlag.Load() {
			break
		}

		res := sc.Search(depth)
		if !res.IsTerminal() {
			out.Move = res.Move
			out.Score = res.Score
			out.Depth = depth
		}

		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth:    depth,
				Score:    res.Score,
				Nodes:    sc.Nodes(),
				Time:     tm.Elapsed(),
				PV:       sc.PrincipalVariation(depth),
				HashFull: sc.TT().HashFull(),
			})
		}

		// Early termination: found mate
		if abs(res.Score) >= MateThreshold {
			break
		}
	}

	out.Nodes = sc.Nodes()
	out.Elapsed = tm.Elapsed()
	out.PV = sc.PrincipalVariation(max(out.Depth, 1))
	if len(out.PV) == 0 || !out.PV[0].SameAs(out.Move) {
		out.PV = []board.Move{out.Move}
	}

	e.log.Debug().
		Str("move", out.Move.String()).
		Int("score", out.Score).
		Int("depth", out.Depth).
		Uint64("nodes", out.Nodes).
		Dur("elapsed", out.Elapsed).
		Msg("search finished")
	return out
}

// Stop asks a running search to stop before its next depth. A Stop that
// arrives before the search starts ends it before depth 1; the flag is
// cleared when the search returns.
func (e *Engine) Stop() {
	e.stopFlag.Store(true)
}

// ResetStop withdraws a Stop that no search has consumed.
func (e *Engine) ResetStop() {
	e.stopFlag.Store(false)
}

// PositionsEvaluated returns the number of positions visited by all
// searches since the last reset. Safe to call from other goroutines.
func (e *Engine) PositionsEvaluated() uint64 {
	return e.positions.Load()
}

// ResetPositionsEvaluated zeroes the positions counter.
func (e *Engine) ResetPositionsEvaluated() {
	e.positions.Store(0)
}

// Evaluate returns the static evaluation of a position from color's view.
func (e *Engine) Evaluate(pos *board.Position, color board.Color) int {
	return NewEvaluator(e.opts.Eval, e.log).Evaluate(pos, color)
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score >= MateThreshold {
		return fmt.Sprintf("Mate in %d", MateIn(score))
	}
	if score <= -MateThreshold {
		return fmt.Sprintf("Mated in %d", -MateIn(score))
	}

	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	return fmt.Sprintf("%s%d.%02d", sign, score/100, score%100)
}

// MateIn returns the number of moves to mate for a mate score, negative
// when the searching side is mated, and 0 for other scores.
func MateIn(score int) int {
	switch {
	case score >= MateThreshold:
		return (Infinity - score + 1) / 2
	case score <= -MateThreshold:
		return -(Infinity + score + 1) / 2
	default:
		return 0
	}
}
