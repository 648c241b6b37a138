package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/chessmove/internal/board"
	"github.com/hailam/chessmove/internal/config"
	"github.com/hailam/chessmove/internal/engine"
	"github.com/hailam/chessmove/internal/storage"
)

var (
	fen       = flag.String("fen", board.StartFEN, "starting position")
	games     = flag.Int("games", 1, "number of games to play")
	maxPlies  = flag.Int("maxplies", 200, "adjudicate a draw after this many plies")
	depth     = flag.Int("depth", 0, "search depth (0 = stored preference)")
	moveTime  = flag.Duration("movetime", 0, "time per move (0 = stored preference)")
	savePrefs = flag.Bool("save-prefs", false, "store the depth and move time flags as preferences")
	list      = flag.Bool("list", false, "list recorded games and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
		log.Fatal().Err(err).Msg("loading config")
	}
	log := cfg.Logs.Logger(os.Stderr)

	store, err := storage.OpenDefault(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("opening storage")
	}
	defer store.Close()

	if *list {
		if err := listGames(store); err != nil {
			log.Fatal().Err(err).Msg("listing games")
		}
		return
	}

	prefs, err := store.LoadPreferences()
	if err != nil {
		log.Warn().Err(err).Msg("using default preferences")
	}
	if *depth > 0 {
		prefs.MaxDepth = *depth
	} else if cfg.Engine.MaxDepth > 0 {
		prefs.MaxDepth = cfg.Engine.MaxDepth
	}
	if *moveTime > 0 {
		prefs.MoveTimeMS = int(moveTime.Milliseconds())
	} else if cfg.Engine.MoveTime > 0 {
		prefs.MoveTimeMS = int(cfg.Engine.MoveTime.Milliseconds())
	}
	if *savePrefs {
		if err := store.SavePreferences(prefs); err != nil {
			log.Error().Err(err).Msg("saving preferences")
		}
	}

	eng := engine.NewEngine(prefs.HashMB)
	eng.SetLogger(log)
	limits := engine.SearchLimits{
		Depth:    prefs.MaxDepth,
		MoveTime: time.Duration(prefs.MoveTimeMS) * time.Millisecond,
	}

	for i := 0; i < *games; i++ {
		rec, err := playGame(eng, *fen, limits, *maxPlies, log)
		if err != nil {
			log.Fatal().Err(err).Msg("playing game")
		}
		id, err := store.RecordGame(rec)
		if err != nil {
			log.Fatal().Err(err).Msg("recording game")
		}
		fmt.Printf("game %s: %s (%s) after %d plies\n", id, rec.Result, rec.Termination, rec.Plies)
	}

	if stats, err := store.LoadStats(); err == nil {
		fmt.Printf("%d games recorded: +%d -%d =%d, %.1f plies on average\n",
			stats.GamesPlayed, stats.WhiteWins, stats.BlackWins, stats.Draws, stats.AveragePlies())
	}
}

// playGame lets the engine play both sides from fen.
func playGame(eng *engine.Engine, fen string, limits engine.SearchLimits, maxPlies int, log zerolog.Logger) (storage.GameRecord, error) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return storage.GameRecord{}, err
	}

	rec := storage.GameRecord{
		StartFEN:  pos.FEN(),
		Result:    storage.ResultUnknown,
		StartedAt: time.Now(),
	}
	eng.ResetPositionsEvaluated()

	for rec.Plies < maxPlies {
		if status := pos.Status(); status != board.Ongoing {
			rec.Termination = status.String()
			rec.Result = resultFor(pos, status)
			break
		}

		move := eng.SearchWithLimits(pos, limits).Move
		if move.IsNone() {
			rec.Termination = pos.Status().String()
			break
		}
		if err := pos.Apply(move); err != nil {
			return rec, err
		}
		rec.Moves = append(rec.Moves, move.String())
		rec.Plies++

		log.Debug().Int("ply", rec.Plies).Str("move", move.String()).Msg("move played")
	}
	if rec.Termination == "" {
		rec.Termination = "ply limit"
		rec.Result = storage.ResultDraw
	}

	rec.PositionsEvaluated = eng.PositionsEvaluated()
	rec.FinishedAt = time.Now()
	return rec, nil
}

func resultFor(pos *board.Position, status board.Status) string {
	switch {
	case status == board.Checkmate && pos.SideToMove() == board.White:
		return storage.ResultBlackWins
	case status == board.Checkmate:
		return storage.ResultWhiteWins
	case status.IsDraw():
		return storage.ResultDraw
	default:
		return storage.ResultUnknown
	}
}

func listGames(store *storage.Storage) error {
	recs, err := store.ListGames()
	if err != nil {
		return err
	}
	for _, r := range recs {
		fmt.Printf("%s  %s  %-7s %3d plies  %s\n",
			r.StartedAt.Format(time.DateTime), r.ID, r.Result, r.Plies, r.Termination)
	}
	return nil
}
