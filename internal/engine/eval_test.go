package engine

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/hailam/chessmove/internal/board"
)

var evalFENs = []string{
	board.StartFEN,
	italianFEN,
	backRankFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2k5/8/3Q4/8/8/5K2/8 b - - 0 1",
	"rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2",
}

func TestEvaluateAntisymmetry(t *testing.T) {
	evaluators := map[string]*Evaluator{
		"plain":    NewEvaluator(EvalOptions{}, zerolog.Nop()),
		"center":   NewEvaluator(EvalOptions{CenterControl: true}, zerolog.Nop()),
		"mobility": NewEvaluator(EvalOptions{Mobility: true}, zerolog.Nop()),
		"all":      NewEvaluator(EvalOptions{CenterControl: true, Mobility: true}, zerolog.Nop()),
	}

	for name, e := range evaluators {
		for _, fen := range evalFENs {
			pos := mustFEN(t, fen)
			w, b := e.Evaluate(pos, board.White), e.Evaluate(pos, board.Black)
			if w != -b {
				t.Errorf("%s %q: white %d, black %d", name, fen, w, b)
			}
		}
	}
}

func TestEvaluateStartIsBalanced(t *testing.T) {
	pos := board.NewPosition()
	if got := Evaluate(pos, board.White); got != 0 {
		t.Errorf("Evaluate(start) = %d, want 0", got)
	}
	if got := EvaluateMaterial(pos, board.Black); got != 0 {
		t.Errorf("EvaluateMaterial(start) = %d, want 0", got)
	}
}

func TestEvaluateMaterialAdvantage(t *testing.T) {
	// White is a queen up.
	pos := mustFEN(t, "8/2k5/8/3Q4/8/8/5K2/8 b - - 0 1")
	if got := EvaluateMaterial(pos, board.White); got != QueenValue {
		t.Errorf("material = %d, want %d", got, QueenValue)
	}
	if Evaluate(pos, board.Black) >= 0 {
		t.Error("side without the queen should be worse off")
	}
}

func TestEvaluateMalformedInput(t *testing.T) {
	e := NewEvaluator(EvalOptions{CenterControl: true}, zerolog.Nop())
	if got := e.Evaluate(nil, board.White); got != 0 {
		t.Errorf("Evaluate(nil) = %d, want 0", got)
	}
	if got := e.Evaluate(board.NewPosition(), board.NoColor); got != 0 {
		t.Errorf("Evaluate(NoColor) = %d, want 0", got)
	}
}

func TestCenterControlBonus(t *testing.T) {
	pos := mustFEN(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	plain := NewEvaluator(EvalOptions{}, zerolog.Nop()).Evaluate(pos, board.White)
	center := NewEvaluator(EvalOptions{CenterControl: true}, zerolog.Nop()).Evaluate(pos, board.White)
	if center-plain != centerOccupancyBonus {
		t.Errorf("center bonus = %d, want %d", center-plain, centerOccupancyBonus)
	}
}

func TestPieceValue(t *testing.T) {
	if PieceValue(board.Knight) != KnightValue || PieceValue(board.NoPieceType) != 0 {
		t.Error("unexpected piece values")
	}
}

func TestEvaluateAntisymmetryAlongPlayout(t *testing.T) {
	e := NewEvaluator(EvalOptions{CenterControl: true, Mobility: true}, zerolog.Nop())
	pos := board.NewPosition()

	// Deterministic playout: cycle through the move list by ply.
	for ply := 0; ply < 40; ply++ {
		if w, b := e.Evaluate(pos, board.White), e.Evaluate(pos, board.Black); w != -b {
			t.Fatalf("ply %d %s: white %d, black %d", ply, pos.FEN(), w, b)
		}
		moves := pos.LegalMoves()
		if len(moves) == 0 {
			break
		}
		if err := pos.Apply(moves[(ply*7)%len(moves)]); err != nil {
			t.Fatal(err)
		}
	}
}
