package board

// Zobrist hash keys for position hashing.
// Uses PRNG with fixed seed for reproducibility.
var (
	zobristPiece      [2][6][64]uint64 // [Color][PieceType][Square]
	zobristEnPassant  [8]uint64        // One per file
	zobristCastling   [16]uint64       // All 16 castling combinations
	zobristSideToMove uint64           // XOR when black to move
)

func init() {
	initZobrist()
}

// Simple PRNG for reproducible Zobrist keys
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x98F107A2BEEF1234)

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := A1; sq <= H8; sq++ {
				zobristPiece[c][pt][sq] = rng.next()
			}
		}
	}
	for file := 0; file < 8; file++ {
		zobristEnPassant[file] = rng.next()
	}
	for i := 0; i < 16; i++ {
		zobristCastling[i] = rng.next()
	}
	zobristSideToMove = rng.next()
}

// ZobristPiece returns the Zobrist key for a piece on a square.
func ZobristPiece(c Color, pt PieceType, sq Square) uint64 {
	return zobristPiece[c][pt][sq]
}

// ZobristSideToMove returns the Zobrist key for side to move.
func ZobristSideToMove() uint64 {
	return zobristSideToMove
}

// HashBoard computes the Zobrist hash of a board snapshot with White to
// move, no castling rights and no en passant square.
func HashBoard(b *[64]Piece) uint64 {
	return computeHash(b, White, NoCastling, -1)
}

// computeHash XORs the keys of every occupied square and of the side,
// castling and en passant state. epFile is -1 when there is none.
func computeHash(b *[64]Piece, stm Color, castling CastlingRights, epFile int) uint64 {
	var h uint64
	for sq, pc := range b {
		if pc != NoPiece {
			h ^= zobristPiece[pc.Color()][pc.Type()][sq]
		}
	}
	if stm == Black {
		h ^= zobristSideToMove
	}
	h ^= zobristCastling[castling&15]
	if epFile >= 0 && epFile < 8 {
		h ^= zobristEnPassant[epFile]
	}
	return h
}
