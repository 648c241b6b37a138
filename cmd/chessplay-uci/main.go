package main

import (
	"flag"
	"os"
	"runtime/pprof"

	"github.com/rs/zerolog"

	"github.com/hailam/chessmove/internal/config"
	"github.com/hailam/chessmove/internal/engine"
	"github.com/hailam/chessmove/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	hashMB     = flag.Int("hash", 0, "transposition table size in MB (overrides CHESSPLAY_HASH_MB)")
	difficulty = flag.String("difficulty", "", "default limits for a bare go: easy, medium or hard")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
		log.Fatal().Err(err).Msg("loading config")
	}
	// stdout carries the protocol, so logs go to stderr.
	log := cfg.Logs.Logger(os.Stderr)

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	size := cfg.Engine.HashMB
	if *hashMB > 0 {
		size = *hashMB
	}
	eng := engine.NewEngine(size)
	eng.SetLogger(log)

	name := cfg.Engine.Difficulty
	if *difficulty != "" {
		name = *difficulty
	}
	d, err := engine.ParseDifficulty(name)
	if err != nil {
		log.Warn().Err(err).Msg("using medium difficulty")
	}
	eng.SetDifficulty(d)

	// Create and run UCI protocol handler
	protocol := uci.New(eng, os.Stdout, log)
	if err := protocol.Run(os.Stdin); err != nil {
		log.Error().Err(err).Msg("uci loop stopped")
	}
}
