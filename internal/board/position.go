package board

import (
	"strconv"
	"strings"

	"github.com/notnil/chess"
	"github.com/pkg/errors"
)

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, c := range "KQkq" {
		if cr&(1<<i) != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// Status classifies the game state of the current position.
type Status uint8

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
	InsufficientMaterial
	ThreefoldRepetition
	FiftyMoveRule
	// Unresolved is reported when no legal moves exist but the rules
	// library classifies the position as neither mate nor stalemate.
	Unresolved
)

func (s Status) String() string {
	switch s {
	case Ongoing:
		return "ongoing"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case InsufficientMaterial:
		return "insufficient material"
	case ThreefoldRepetition:
		return "threefold repetition"
	case FiftyMoveRule:
		return "fifty-move rule"
	default:
		return "unresolved"
	}
}

// IsDraw reports whether the status ends the game without a winner.
func (s Status) IsDraw() bool {
	return s == Stalemate || s == InsufficientMaterial || s == ThreefoldRepetition || s == FiftyMoveRule
}

// frame is one entry of the make/unmake stack. Everything except the
// lazily filled move and check caches is fixed when the frame is pushed.
type frame struct {
	pos       *chess.Position
	board     [64]Piece
	castling  CastlingRights
	epFile    int
	halfMoves int
	hash      uint64

	generated  bool
	moves      []Move
	chessMoves []*chess.Move
	inCheck    int8 // -1 unknown, 0 no, 1 yes
}

// Position is a mutable chess position. Moves are pushed with MakeMove
// and popped with UnmakeMove or the returned MoveGuard. The underlying
// rules-library positions are immutable, so popping restores the exact
// previous state.
type Position struct {
	frames []frame
	// hashes of positions that preceded the first frame, for repetition
	history []uint64
}

// NewPosition creates a new position with the starting setup.
func NewPosition() *Position {
	return fromChessPosition(chess.NewGame().Position())
}

func fromChessPosition(cp *chess.Position) *Position {
	p := &Position{frames: make([]frame, 0, 64)}
	p.push(cp)
	return p
}

// Copy creates an independent position sharing no mutable state.
func (p *Position) Copy() *Position {
	c := &Position{
		frames:  make([]frame, len(p.frames), cap(p.frames)),
		history: append([]uint64(nil), p.history...),
	}
	copy(c.frames, p.frames)
	return c
}

// Validate checks that each side has exactly one king.
func (p *Position) Validate() error {
	var kings [2]int
	for _, pc := range p.top().board {
		if pc.Type() == King {
			kings[pc.Color()]++
		}
	}
	if kings[White] != 1 {
		return errors.Errorf("white has %d kings", kings[White])
	}
	if kings[Black] != 1 {
		return errors.Errorf("black has %d kings", kings[Black])
	}
	return nil
}

func (p *Position) top() *frame {
	return &p.frames[len(p.frames)-1]
}

func (p *Position) push(cp *chess.Position) {
	f := frame{pos: cp, epFile: -1, inCheck: -1}
	cb := cp.Board()
	for sq := A1; sq <= H8; sq++ {
		f.board[sq] = fromChessPiece(cb.Piece(chess.Square(sq)))
	}

	// castling, en passant and clocks are read from the FEN fields
	fields := strings.Fields(cp.String())
	if len(fields) >= 5 {
		for _, c := range fields[2] {
			switch c {
			case 'K':
				f.castling |= WhiteKingSideCastle
			case 'Q':
				f.castling |= WhiteQueenSideCastle
			case 'k':
				f.castling |= BlackKingSideCastle
			case 'q':
				f.castling |= BlackQueenSideCastle
			}
		}
		if ep, err := ParseSquare(fields[3]); err == nil {
			f.epFile = ep.File()
		}
		f.halfMoves, _ = strconv.Atoi(fields[4])
	}

	f.hash = computeHash(&f.board, fromChessColor(cp.Turn()), f.castling, f.epFile)
	p.frames = append(p.frames, f)
}

// SideToMove returns the color whose turn it is.
func (p *Position) SideToMove() Color {
	return fromChessColor(p.top().pos.Turn())
}

// Hash returns the Zobrist hash of the current position.
func (p *Position) Hash() uint64 {
	return p.top().hash
}

// Ply returns the number of moves applied since the position was created.
func (p *Position) Ply() int {
	return len(p.frames) - 1
}

// HalfMoveClock returns the number of half-moves since the last capture
// or pawn move.
func (p *Position) HalfMoveClock() int {
	return p.top().halfMoves
}

// Castling returns the current castling rights.
func (p *Position) Castling() CastlingRights {
	return p.top().castling
}

// PieceAt returns the piece on sq.
func (p *Position) PieceAt(sq Square) Piece {
	if !sq.IsValid() {
		return NoPiece
	}
	return p.top().board[sq]
}

// Snapshot returns a square-indexed copy of the board.
func (p *Position) Snapshot() [64]Piece {
	return p.top().board
}

// FEN serializes the current position.
func (p *Position) FEN() string {
	return p.top().pos.String()
}

// String returns the FEN of the position.
func (p *Position) String() string {
	return p.FEN()
}

// LegalMoves returns all legal moves in generation order. The slice is
// cached per stack frame and must not be modified by the caller.
func (p *Position) LegalMoves() []Move {
	f := p.top()
	if !f.generated {
		f.generated = true
		cms := f.pos.ValidMoves()
		cb := f.pos.Board()
		f.chessMoves = cms
		f.moves = make([]Move, len(cms))
		for i, cm := range cms {
			f.moves[i] = newMove(cm, cb)
		}
	}
	return f.moves
}

// LegalMovesFrom returns the legal moves starting on sq.
func (p *Position) LegalMovesFrom(sq Square) []Move {
	var out []Move
	for _, m := range p.LegalMoves() {
		if m.From == sq {
			out = append(out, m)
		}
	}
	return out
}

// HasLegalMoves reports whether the side to move has any legal move.
func (p *Position) HasLegalMoves() bool {
	return len(p.LegalMoves()) > 0
}

// InCheck returns true if the side to move is in check.
func (p *Position) InCheck() bool {
	f := p.top()
	if f.inCheck < 0 {
		f.inCheck = 0
		us := p.SideToMove()
		king := NewPiece(King, us)
		for sq := A1; sq <= H8; sq++ {
			if f.board[sq] == king {
				if isAttacked(&f.board, sq, us.Other()) {
					f.inCheck = 1
				}
				break
			}
		}
	}
	return f.inCheck == 1
}

// IsSquareAttacked returns true if the square is attacked by the given color.
func (p *Position) IsSquareAttacked(sq Square, byColor Color) bool {
	return isAttacked(&p.top().board, sq, byColor)
}

// Mobility counts the squares attacked by the knights, bishops, rooks
// and queens of c that are not occupied by c's own pieces.
func (p *Position) Mobility(c Color) int {
	return mobility(&p.top().board, c)
}

// MoveGuard undoes a move made with MakeMove. Release is idempotent,
// and it also discards any moves pushed after the guarded one.
type MoveGuard struct {
	pos      *Position
	height   int
	released bool
}

// Release restores the position to the state before the guarded move.
func (g *MoveGuard) Release() {
	if g == nil || g.released {
		return
	}
	g.released = true
	if len(g.pos.frames) > g.height {
		g.pos.frames = g.pos.frames[:g.height]
	}
}

// MakeMove applies a legal move. The move is matched against the legal
// moves of the current position by squares and promotion piece.
func (p *Position) MakeMove(m Move) (*MoveGuard, error) {
	p.LegalMoves()
	f := p.top()
	for i, lm := range f.moves {
		if lm.SameAs(m) {
			g := &MoveGuard{pos: p, height: len(p.frames)}
			p.push(f.pos.Update(f.chessMoves[i]))
			return g, nil
		}
	}
	return nil, errors.Errorf("illegal move %s in %s", m, f.pos.String())
}

// UnmakeMove pops the most recent move. It is a no-op on the initial position.
func (p *Position) UnmakeMove() {
	if len(p.frames) > 1 {
		p.frames = p.frames[:len(p.frames)-1]
	}
}

// Apply makes a move permanently, as when playing a game.
func (p *Position) Apply(m Move) error {
	_, err := p.MakeMove(m)
	return err
}

// ParseMove parses a move in UCI format (e.g., "e2e4", "e7e8q") and
// returns the matching legal move.
func (p *Position) ParseMove(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range p.LegalMoves() {
		if m.String() == s {
			return m, nil
		}
	}
	return NoMove, errors.Errorf("illegal or malformed move %q", s)
}

// Status classifies the current position.
func (p *Position) Status() Status {
	f := p.top()
	if !p.HasLegalMoves() {
		switch f.pos.Status() {
		case chess.Checkmate:
			return Checkmate
		case chess.Stalemate:
			return Stalemate
		default:
			return Unresolved
		}
	}
	if p.IsInsufficientMaterial() {
		return InsufficientMaterial
	}
	if p.IsRepetition() {
		return ThreefoldRepetition
	}
	if f.halfMoves >= 100 {
		return FiftyMoveRule
	}
	return Ongoing
}

// IsCheckmate returns true if the position is checkmate.
func (p *Position) IsCheckmate() bool {
	return p.Status() == Checkmate
}

// IsDraw returns true if the position is drawn by rule.
func (p *Position) IsDraw() bool {
	return p.Status().IsDraw()
}

// IsRepetition reports whether the current position occurred at least
// twice before with the same side to move.
func (p *Position) IsRepetition() bool {
	h := p.Hash()
	count := 0
	for _, old := range p.history {
		if old == h {
			count++
		}
	}
	for i := 0; i < len(p.frames)-1; i++ {
		if p.frames[i].hash == h {
			count++
		}
	}
	return count >= 2
}

// IsInsufficientMaterial returns true if neither side can checkmate.
func (p *Position) IsInsufficientMaterial() bool {
	var minors [2]int
	for _, pc := range p.top().board {
		switch pc.Type() {
		case Pawn, Rook, Queen:
			return false
		case Knight, Bishop:
			minors[pc.Color()]++
		}
	}

	// K vs K, K+minor vs K
	if minors[White]+minors[Black] == 0 {
		return true
	}
	if minors[White] <= 1 && minors[Black] == 0 {
		return true
	}
	return minors[Black] <= 1 && minors[White] == 0
}

// SetHistory records the hashes of positions played before this one so
// repetitions across the game are detected.
func (p *Position) SetHistory(hashes []uint64) {
	p.history = append(p.history[:0], hashes...)
}

// Hashes returns the hashes of every position on the stack, oldest first.
func (p *Position) Hashes() []uint64 {
	out := make([]uint64, 0, len(p.history)+len(p.frames))
	out = append(out, p.history...)
	for i := range p.frames {
		out = append(out, p.frames[i].hash)
	}
	return out
}
