package board

import (
	"testing"
)

func TestCheckmate(t *testing.T) {
	// Back rank mate, black to move.
	pos, err := ParseFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	if !pos.InCheck() {
		t.Error("expected black to be in check")
	}
	if n := len(pos.LegalMoves()); n != 0 {
		t.Errorf("black has %d legal moves, want 0", n)
	}
	if !pos.IsCheckmate() {
		t.Errorf("Status() = %v, want checkmate", pos.Status())
	}
}

func TestNotCheckmate(t *testing.T) {
	// The king can capture the checking rook.
	pos, err := ParseFEN("6Rk/8/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	if !pos.InCheck() {
		t.Error("expected black to be in check")
	}
	if pos.IsCheckmate() {
		t.Error("expected no checkmate")
	}
	if _, err := pos.ParseMove("h8g8"); err != nil {
		t.Errorf("Kxg8 should be legal: %v", err)
	}
}

func TestStalemate(t *testing.T) {
	pos, err := ParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if pos.InCheck() {
		t.Error("stalemated king should not be in check")
	}
	if got := pos.Status(); got != Stalemate {
		t.Errorf("Status() = %v, want stalemate", got)
	}
	if !pos.IsDraw() {
		t.Error("stalemate should be a draw")
	}
}

func TestInsufficientMaterial(t *testing.T) {
	tests := []struct {
		fen  string
		want bool
	}{
		{"8/8/4k3/8/8/3K4/8/8 w - - 0 1", true},
		{"8/8/4k3/8/8/3KN3/8/8 w - - 0 1", true},
		{"8/8/4kb2/8/8/3K4/8/8 w - - 0 1", true},
		{"8/8/4k3/8/8/3KR3/8/8 w - - 0 1", false},
		{"8/8/4k3/8/8/3KP3/8/8 w - - 0 1", false},
		{"8/8/4kn2/8/8/3KB3/8/8 w - - 0 1", false},
	}
	for _, tc := range tests {
		pos, err := ParseFEN(tc.fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", tc.fen, err)
		}
		if got := pos.IsInsufficientMaterial(); got != tc.want {
			t.Errorf("IsInsufficientMaterial(%q) = %v, want %v", tc.fen, got, tc.want)
		}
	}
}
