package board

import (
	"strings"

	"github.com/notnil/chess"
	"github.com/pkg/errors"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string and returns a Position. The halfmove and
// fullmove counters may be omitted.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	switch len(parts) {
	case 4:
		parts = append(parts, "0", "1")
	case 5:
		parts = append(parts, "1")
	case 6:
	default:
		return nil, errors.Errorf("invalid FEN: need 4 to 6 fields, got %d", len(parts))
	}

	if w, b := strings.Count(parts[0], "K"), strings.Count(parts[0], "k"); w != 1 || b != 1 {
		return nil, errors.Errorf("invalid FEN %q: want one king per side, got %d white and %d black", fen, w, b)
	}

	opt, err := chess.FEN(strings.Join(parts, " "))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid FEN %q", fen)
	}
	pos := fromChessPosition(chess.NewGame(opt).Position())
	if err := pos.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid FEN %q", fen)
	}
	return pos, nil
}

// ToFEN converts the position to a FEN string.
func (p *Position) ToFEN() string {
	return p.FEN()
}
