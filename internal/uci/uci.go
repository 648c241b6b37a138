// Package uci implements a minimal Universal Chess Interface front end
// for the engine.
package uci

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hailam/chessmove/internal/board"
	"github.com/hailam/chessmove/internal/engine"
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine   *engine.Engine
	position *board.Position
	log      zerolog.Logger

	outMu sync.Mutex
	out   io.Writer

	// Search state
	searchDone chan struct{}
}

// New creates a new UCI protocol handler writing responses to out.
func New(eng *engine.Engine, out io.Writer, logger zerolog.Logger) *UCI {
	return &UCI{
		engine:   eng,
		position: board.NewPosition(),
		log:      logger,
		out:      out,
	}
}

// Run reads commands from in until "quit" or end of input. A search that
// is still running when input ends is allowed to finish.
func (u *UCI) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			if err := u.handlePosition(args); err != nil {
				u.log.Warn().Err(err).Msg("bad position command")
				u.println("info string " + err.Error())
			}
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "setoption":
			u.handleSetOption(args)
		case "quit":
			u.handleStop()
			return nil
		// Debug commands
		case "d":
			u.println(u.position.FEN())
		default:
			u.log.Debug().Str("command", cmd).Msg("unknown command ignored")
		}
	}

	u.wait()
	return errors.Wrap(scanner.Err(), "reading commands")
}

func (u *UCI) println(s string) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintln(u.out, s)
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.println("id name ChessMove")
	u.println("id author ChessMove Team")
	u.println("")
	u.println(fmt.Sprintf("option name Hash type spin default %d min 1 max 1024", u.engine.Options().HashMB))
	u.println("option name Difficulty type combo default medium var easy var medium var hard")
	u.println("uciok")
}

// handleNewGame resets the position for a new game.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.position = board.NewPosition()
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
//
// The current position is left unchanged on error.
func (u *UCI) handlePosition(args []string) error {
	if len(args) == 0 {
		return errors.New("position: missing arguments")
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var pos *board.Position
	switch args[0] {
	case "startpos":
		pos = board.NewPosition()
	case "fen":
		var err error
		pos, err = board.ParseFEN(strings.Join(args[1:movesAt], " "))
		if err != nil {
			return err
		}
	default:
		return errors.Errorf("position: unknown keyword %q", args[0])
	}

	// Moves are applied permanently so repetitions against the game
	// history are seen by the search.
	if movesAt < len(args) {
		for _, s := range args[movesAt+1:] {
			m, err := pos.ParseMove(s)
			if err != nil {
				return err
			}
			if err := pos.Apply(m); err != nil {
				return err
			}
		}
	}

	u.position = pos
	return nil
}

// GoOptions contains parsed "go" command options.
type GoOptions struct {
	Depth     int
	MoveTime  time.Duration
	Infinite  bool
	WTime     time.Duration
	BTime     time.Duration
	WInc      time.Duration
	BInc      time.Duration
	MovesToGo int
}

// handleGo starts a search in the background. Only one search runs at a
// time; a new "go" waits for the previous one.
func (u *UCI) handleGo(args []string) {
	u.wait()

	limits := u.calculateLimits(parseGoOptions(args))
	u.engine.OnInfo = u.sendInfo

	pos := u.position.Copy()
	done := make(chan struct{})
	u.searchDone = done

	go func() {
		defer close(done)

		out := u.engine.SearchWithLimits(pos, limits)
		if out.Move.IsNone() {
			u.println("bestmove 0000")
			return
		}
		u.println("bestmove " + out.Move.String())
	}()
}

func parseGoOptions(args []string) GoOptions {
	opts := GoOptions{}

	ms := func(i int) time.Duration {
		n, _ := strconv.Atoi(args[i])
		return time.Duration(n) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		hasValue := i+1 < len(args)
		switch args[i] {
		case "depth":
			if hasValue {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "movetime":
			if hasValue {
				opts.MoveTime = ms(i + 1)
				i++
			}
		case "infinite":
			opts.Infinite = true
		case "wtime":
			if hasValue {
				opts.WTime = ms(i + 1)
				i++
			}
		case "btime":
			if hasValue {
				opts.BTime = ms(i + 1)
				i++
			}
		case "winc":
			if hasValue {
				opts.WInc = ms(i + 1)
				i++
			}
		case "binc":
			if hasValue {
				opts.BInc = ms(i + 1)
				i++
			}
		case "movestogo":
			if hasValue {
				opts.MovesToGo, _ = strconv.Atoi(args[i+1])
				i++
			}
		}
	}

	return opts
}

// calculateLimits converts go options to search limits. With no depth or
// clock given, the engine's difficulty limits apply.
func (u *UCI) calculateLimits(opts GoOptions) engine.SearchLimits {
	if opts.Infinite {
		return engine.SearchLimits{}
	}

	limits := engine.SearchLimits{Depth: opts.Depth}
	clock := engine.ClockLimits{
		Time:      [2]time.Duration{opts.WTime, opts.BTime},
		Inc:       [2]time.Duration{opts.WInc, opts.BInc},
		MovesToGo: opts.MovesToGo,
		MoveTime:  opts.MoveTime,
	}
	limits.MoveTime = engine.AllocateTime(clock, u.position.SideToMove(), u.position.Ply())

	if limits.Depth == 0 && limits.MoveTime == 0 {
		return engine.DifficultySettings[u.engine.Difficulty()]
	}
	return limits
}

// sendInfo writes one "info" line for a completed depth.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	parts := []string{fmt.Sprintf("depth %d", info.Depth)}

	if mate := engine.MateIn(info.Score); mate != 0 {
		parts = append(parts, fmt.Sprintf("score mate %d", mate))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %d", info.Score))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))

	if len(info.PV) > 0 {
		pv := make([]string, len(info.PV))
		for i, m := range info.PV {
			pv[i] = m.String()
		}
		parts = append(parts, "pv "+strings.Join(pv, " "))
	}

	u.println("info " + strings.Join(parts, " "))
}

// handleSetOption handles "setoption name <id> value <x>".
func (u *UCI) handleSetOption(args []string) {
	u.wait()

	var name, value string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "name":
			if i+1 < len(args) {
				name = args[i+1]
				i++
			}
		case "value":
			if i+1 < len(args) {
				value = strings.Join(args[i+1:], " ")
				i = len(args)
			}
		}
	}

	switch strings.ToLower(name) {
	case "hash":
		mb, err := strconv.Atoi(value)
		if err != nil || mb < 1 {
			u.println("info string invalid Hash value " + value)
			return
		}
		opts := u.engine.Options()
		opts.HashMB = mb
		u.engine.SetOptions(opts)
	case "difficulty":
		d, err := engine.ParseDifficulty(strings.ToLower(value))
		if err != nil {
			u.println("info string " + err.Error())
			return
		}
		u.engine.SetDifficulty(d)
	default:
		u.log.Debug().Str("option", name).Msg("unknown option ignored")
	}
}

// handleStop stops a running search and waits for its bestmove. The
// engine only checks for a stop between depths.
func (u *UCI) handleStop() {
	if u.searchDone == nil {
		return
	}
	u.engine.Stop()
	<-u.searchDone
	u.searchDone = nil
	// The search may have finished before seeing the flag.
	u.engine.ResetStop()
}

// wait blocks until the running search, if any, has finished.
func (u *UCI) wait() {
	if u.searchDone != nil {
		<-u.searchDone
		u.searchDone = nil
	}
}
