// Package suite runs the engine over a fixed set of test positions and
// checks the moves it picks.
package suite

import (
	"context"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/chessmove/internal/board"
	"github.com/hailam/chessmove/internal/engine"
)

// Case is one test position.
type Case struct {
	Name string
	FEN  string
	// Expect lists acceptable moves in UCI notation. An empty list
	// accepts any legal move.
	Expect []string
	// Strict cases fail when another move is chosen. Non-strict cases
	// only report the mismatch.
	Strict bool
	Depth  int // 0 uses Options.Depth
}

// DefaultCases returns the standard tactical and sanity positions.
func DefaultCases() []Case {
	return []Case{
		{
			Name:   "Mate in 1 - Back Rank Mate",
			FEN:    "6k1/5ppp/8/8/8/8/5PPP/4R1K1 w - - 0 1",
			Expect: []string{"e1e8"},
			Strict: true,
		},
		{
			// Kd8 escapes, so Qxf7 is only check here.
			Name:   "Queen Takes f7",
			FEN:    "rnb1kbnr/pppp1ppp/8/4p2Q/6P1/8/PPPP1P1P/RNB1KBNR w KQkq - 0 1",
			Expect: []string{"h5f7"},
		},
		{
			Name:   "Free Material - exd5",
			FEN:    "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2",
			Expect: []string{"e4d5"},
			Strict: true,
		},
		{
			Name:   "Reasonable Opening Move",
			FEN:    board.StartFEN,
			Expect: []string{"e2e4", "d2d4", "g1f3", "c2c4", "b1c3"},
		},
		{
			Name: "Legal Move",
			FEN:  "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 1",
		},
	}
}

// Options configures a suite run.
type Options struct {
	Workers  int           // concurrent cases, 0 means GOMAXPROCS
	Depth    int           // default search depth, 0 means 4
	MoveTime time.Duration // per-case budget, 0 means none
	HashMB   int
	Logger   zerolog.Logger
}

// Result is the outcome of one case.
type Result struct {
	Case    Case
	Move    string
	Score   int
	Depth   int
	Nodes   uint64
	Elapsed time.Duration
	Legal   bool
	Matched bool // move is in Case.Expect
	Mate    bool // move delivers checkmate
	Passed  bool
	Err     error
}

// Summary aggregates a run.
type Summary struct {
	RunID   string
	Total   int
	Passed  int
	Failed  []string // names of failed cases
	Nodes   uint64
	Elapsed time.Duration
}

// SuccessRate returns the share of passed cases as a percentage.
func (s Summary) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Total) * 100
}

// Run searches every case, several at a time. Each worker owns its own
// engine and position. Results are returned in case order.
func Run(ctx context.Context, cases []Case, opts Options) ([]Result, Summary, error) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Depth <= 0 {
		opts.Depth = 4
	}

	start := time.Now()
	results := make([]Result, len(cases))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, c := range cases {
		i, c := i, c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = runCase(c, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, errors.Wrap(err, "suite run")
	}

	summary := Summary{
		RunID:  uuid.NewString(),
		Total:  len(results),
		Passed: lo.CountBy(results, func(r Result) bool { return r.Passed }),
		Failed: lo.FilterMap(results, func(r Result, _ int) (string, bool) {
			return r.Case.Name, !r.Passed
		}),
		Nodes:   lo.SumBy(results, func(r Result) uint64 { return r.Nodes }),
		Elapsed: time.Since(start),
	}
	return results, summary, nil
}

func runCase(c Case, opts Options) Result {
	res := Result{Case: c}
	log := opts.Logger.With().Str("case", c.Name).Logger()

	pos, err := board.ParseFEN(c.FEN)
	if err != nil {
		res.Err = err
		log.Warn().Err(err).Msg("bad test position")
		return res
	}

	eng := engine.NewEngine(opts.HashMB)
	eng.SetLogger(log)

	depth := c.Depth
	if depth <= 0 {
		depth = opts.Depth
	}
	out := eng.SearchWithLimits(pos, engine.SearchLimits{Depth: depth, MoveTime: opts.MoveTime})

	res.Score = out.Score
	res.Depth = out.Depth
	res.Nodes = eng.PositionsEvaluated()
	res.Elapsed = out.Elapsed
	if out.Move.IsNone() {
		res.Err = errors.Errorf("no move returned in %s", pos.Status())
		return res
	}
	res.Move = out.Move.String()

	guard, err := pos.MakeMove(out.Move)
	if err != nil {
		res.Err = err
		return res
	}
	res.Legal = true
	res.Mate = pos.IsCheckmate()
	guard.Release()

	res.Matched = lo.Contains(c.Expect, res.Move)
	switch {
	case len(c.Expect) == 0, res.Matched, res.Mate:
		res.Passed = true
	default:
		res.Passed = !c.Strict
	}

	log.Debug().
		Str("move", res.Move).
		Bool("matched", res.Matched).
		Bool("passed", res.Passed).
		Uint64("nodes", res.Nodes).
		Msg("case finished")
	return res
}
