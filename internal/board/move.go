package board

import "github.com/notnil/chess"

// MoveFlag describes the special properties of a move.
type MoveFlag uint8

// Move flags
const (
	FlagCapture MoveFlag = 1 << iota
	FlagEnPassant
	FlagKingSideCastle
	FlagQueenSideCastle
	FlagPromotion
	FlagCheck
)

// Move is an immutable description of a legal move, carrying the
// metadata the search needs without consulting the board again.
type Move struct {
	From      Square
	To        Square
	Piece     PieceType
	Captured  PieceType
	Promotion PieceType
	Flags     MoveFlag
}

// NoMove represents an invalid or null move.
var NoMove = Move{}

// IsNone reports whether m is the NoMove sentinel.
func (m Move) IsNone() bool {
	return m == NoMove
}

// Has reports whether all bits of f are set.
func (m Move) Has(f MoveFlag) bool {
	return m.Flags&f == f
}

// IsCapture returns true if this move captures a piece.
func (m Move) IsCapture() bool {
	return m.Has(FlagCapture)
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Has(FlagPromotion)
}

// IsCastling returns true if this is a castling move.
func (m Move) IsCastling() bool {
	return m.Flags&(FlagKingSideCastle|FlagQueenSideCastle) != 0
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Has(FlagEnPassant)
}

// GivesCheck returns true if the move leaves the opponent in check.
func (m Move) GivesCheck() bool {
	return m.Has(FlagCheck)
}

// IsQuiet returns true for moves that neither capture nor promote.
func (m Move) IsQuiet() bool {
	return !m.IsCapture() && !m.IsPromotion()
}

// SameAs reports whether two moves have the same squares and promotion.
// Metadata such as the check flag depends on the position a move was
// generated in, so moves from sibling nodes are compared this way.
func (m Move) SameAs(o Move) bool {
	return m.From == o.From && m.To == o.To && m.Promotion == o.Promotion
}

// String returns the move in UCI format (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m.IsNone() {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if m.IsPromotion() {
		s += string(m.Promotion.Char())
	}
	return s
}

// newMove converts a move generated by the rules library. cb is the
// board the move was generated on.
func newMove(cm *chess.Move, cb *chess.Board) Move {
	m := Move{
		From:      Square(cm.S1()),
		To:        Square(cm.S2()),
		Piece:     fromChessPieceType(cb.Piece(cm.S1()).Type()),
		Captured:  NoPieceType,
		Promotion: NoPieceType,
	}
	if cm.HasTag(chess.EnPassant) {
		m.Captured = Pawn
		m.Flags |= FlagCapture | FlagEnPassant
	} else if victim := cb.Piece(cm.S2()); victim != chess.NoPiece {
		m.Captured = fromChessPieceType(victim.Type())
		m.Flags |= FlagCapture
	}
	if cm.Promo() != chess.NoPieceType {
		m.Promotion = fromChessPieceType(cm.Promo())
		m.Flags |= FlagPromotion
	}
	if cm.HasTag(chess.KingSideCastle) {
		m.Flags |= FlagKingSideCastle
	}
	if cm.HasTag(chess.QueenSideCastle) {
		m.Flags |= FlagQueenSideCastle
	}
	if cm.HasTag(chess.Check) {
		m.Flags |= FlagCheck
	}
	return m
}
