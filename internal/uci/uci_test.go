package uci

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hailam/chessmove/internal/board"
	"github.com/hailam/chessmove/internal/engine"
)

func run(t *testing.T, input string) (*UCI, string) {
	t.Helper()
	eng := engine.NewEngine(1)
	eng.SetLogger(zerolog.Nop())

	var out bytes.Buffer
	u := New(eng, &out, zerolog.Nop())
	if err := u.Run(strings.NewReader(input)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return u, out.String()
}

func TestHandshake(t *testing.T) {
	_, out := run(t, "uci\nisready\n")
	for _, want := range []string{"id name ChessMove", "option name Hash", "uciok", "readyok"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGoFindsMate(t *testing.T) {
	_, out := run(t, "position fen 6k1/5ppp/8/8/8/8/5PPP/4R1K1 w - - 0 1\ngo depth 3\n")

	if !strings.Contains(out, "info depth 1 score mate 1") {
		t.Errorf("missing mate info line:\n%s", out)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "bestmove e1e8") {
		t.Errorf("want bestmove e1e8 last:\n%s", out)
	}
}

func TestGoWithoutMoves(t *testing.T) {
	_, out := run(t, "position fen 7k/5Q2/6K1/8/8/8/8/8 b - - 0 1\ngo depth 2\nquit\n")
	if strings.TrimSpace(out) != "bestmove 0000" {
		t.Errorf("output = %q, want bestmove 0000", out)
	}
}

func TestGoInfoLines(t *testing.T) {
	_, out := run(t, "position startpos\ngo depth 2\n")

	var infos int
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if strings.HasPrefix(line, "info depth") {
			infos++
			if !strings.Contains(line, " score cp ") || !strings.Contains(line, " nodes ") || !strings.Contains(line, " pv ") {
				t.Errorf("malformed info line %q", line)
			}
		}
	}
	if infos != 2 {
		t.Errorf("got %d info lines, want 2:\n%s", infos, out)
	}
	if !strings.Contains(out, "bestmove ") {
		t.Errorf("no bestmove:\n%s", out)
	}
}

func TestPositionWithMoves(t *testing.T) {
	u, out := run(t, "position startpos moves e2e4 e7e5 g1f3\nd\n")
	want := "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2"
	if strings.TrimSpace(out) != want {
		t.Errorf("d printed %q, want %q", strings.TrimSpace(out), want)
	}
	if u.position.Ply() != 3 {
		t.Errorf("ply = %d, want 3", u.position.Ply())
	}
}

func TestBadPositionKeepsPrevious(t *testing.T) {
	u, out := run(t, "position startpos moves e2e4\nposition fen not a fen\nposition startpos moves e2e5\n")
	if strings.Count(out, "info string") != 2 {
		t.Errorf("want two errors reported:\n%s", out)
	}
	if u.position.PieceAt(board.E4) != board.NewPiece(board.Pawn, board.White) {
		t.Errorf("position changed after bad commands: %s", u.position.FEN())
	}
}

func TestSetOption(t *testing.T) {
	u, out := run(t, "setoption name Hash value 8\nsetoption name Difficulty value hard\nsetoption name Hash value zero\n")
	if u.engine.Options().HashMB != 8 {
		t.Errorf("HashMB = %d, want 8", u.engine.Options().HashMB)
	}
	if u.engine.Difficulty() != engine.Hard {
		t.Errorf("difficulty = %v, want hard", u.engine.Difficulty())
	}
	if !strings.Contains(out, "invalid Hash value zero") {
		t.Errorf("bad value not reported:\n%s", out)
	}
}

func TestParseGoOptions(t *testing.T) {
	opts := parseGoOptions(strings.Fields("wtime 60000 btime 50000 winc 1000 binc 500 movestogo 20 depth 4"))
	if opts.WTime.Milliseconds() != 60000 || opts.BTime.Milliseconds() != 50000 {
		t.Errorf("times = %v %v", opts.WTime, opts.BTime)
	}
	if opts.WInc.Milliseconds() != 1000 || opts.BInc.Milliseconds() != 500 {
		t.Errorf("increments = %v %v", opts.WInc, opts.BInc)
	}
	if opts.MovesToGo != 20 || opts.Depth != 4 {
		t.Errorf("movestogo %d depth %d", opts.MovesToGo, opts.Depth)
	}
	if !parseGoOptions([]string{"infinite"}).Infinite {
		t.Error("infinite not parsed")
	}
}

func TestCalculateLimits(t *testing.T) {
	eng := engine.NewEngine(1)
	eng.SetDifficulty(engine.Easy)
	u := New(eng, &bytes.Buffer{}, zerolog.Nop())

	if got := u.calculateLimits(GoOptions{}); got != engine.DifficultySettings[engine.Easy] {
		t.Errorf("default limits = %+v", got)
	}
	if got := u.calculateLimits(GoOptions{Depth: 3}); got.Depth != 3 || got.MoveTime != 0 {
		t.Errorf("depth limits = %+v", got)
	}
	got := u.calculateLimits(GoOptions{WTime: 60000 * 1e6, BTime: 60000 * 1e6})
	if got.MoveTime <= 0 || got.Depth != 0 {
		t.Errorf("clock limits = %+v", got)
	}
}
