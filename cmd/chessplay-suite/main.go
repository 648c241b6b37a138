package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/chessmove/internal/config"
	"github.com/hailam/chessmove/internal/suite"
)

var (
	depth    = flag.Int("depth", 4, "search depth per position")
	moveTime = flag.Duration("movetime", 0, "time budget per position (0 = none)")
	workers  = flag.Int("workers", 0, "positions searched at once (0 = GOMAXPROCS)")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
		log.Fatal().Err(err).Msg("loading config")
	}
	log := cfg.Logs.Logger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, summary, err := suite.Run(ctx, suite.DefaultCases(), suite.Options{
		Workers:  *workers,
		Depth:    *depth,
		MoveTime: *moveTime,
		HashMB:   cfg.Engine.HashMB,
		Logger:   log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("suite aborted")
	}

	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		switch {
		case r.Err != nil:
			fmt.Printf("%s  %-32s error: %v\n", status, r.Case.Name, r.Err)
		default:
			fmt.Printf("%s  %-32s %-6s depth %d  %d nodes  %v\n",
				status, r.Case.Name, r.Move, r.Depth, r.Nodes, r.Elapsed.Round(time.Millisecond))
		}
	}

	fmt.Printf("\nrun %s: %d/%d passed (%.1f%%), %d nodes in %v\n",
		summary.RunID, summary.Passed, summary.Total, summary.SuccessRate(),
		summary.Nodes, summary.Elapsed.Round(time.Millisecond))

	if len(summary.Failed) > 0 {
		os.Exit(1)
	}
}
