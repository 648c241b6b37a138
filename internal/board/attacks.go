package board

// Direction tables as (file, rank) deltas.
var (
	knightDeltas = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingDeltas   = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	bishopDirs   = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	rookDirs     = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
)

// step returns the square reached from sq by (df, dr), if on the board.
func step(sq Square, df, dr int) (Square, bool) {
	f, r := sq.File()+df, sq.Rank()+dr
	if f < 0 || f > 7 || r < 0 || r > 7 {
		return NoSquare, false
	}
	return NewSquare(f, r), true
}

// isAttacked returns true if sq is attacked by a piece of color by.
func isAttacked(b *[64]Piece, sq Square, by Color) bool {
	// A pawn of color by attacking sq stands one rank behind it.
	pawnRank := -1
	if by == Black {
		pawnRank = 1
	}
	pawn := NewPiece(Pawn, by)
	for _, df := range [2]int{-1, 1} {
		if s, ok := step(sq, df, pawnRank); ok && b[s] == pawn {
			return true
		}
	}

	knight, king := NewPiece(Knight, by), NewPiece(King, by)
	for i := range knightDeltas {
		if s, ok := step(sq, knightDeltas[i][0], knightDeltas[i][1]); ok && b[s] == knight {
			return true
		}
		if s, ok := step(sq, kingDeltas[i][0], kingDeltas[i][1]); ok && b[s] == king {
			return true
		}
	}

	queen := NewPiece(Queen, by)
	if rayHits(b, sq, bishopDirs[:], NewPiece(Bishop, by), queen) {
		return true
	}
	return rayHits(b, sq, rookDirs[:], NewPiece(Rook, by), queen)
}

// rayHits walks each direction from sq and reports whether the first
// occupied square holds slider or queen.
func rayHits(b *[64]Piece, sq Square, dirs [][2]int, slider, queen Piece) bool {
	for _, d := range dirs {
		s, ok := step(sq, d[0], d[1])
		for ok {
			if pc := b[s]; pc != NoPiece {
				if pc == slider || pc == queen {
					return true
				}
				break
			}
			s, ok = step(s, d[0], d[1])
		}
	}
	return false
}

// mobility counts pseudo-legal target squares for the minor and major
// pieces of color c.
func mobility(b *[64]Piece, c Color) int {
	count := 0
	for sq := A1; sq <= H8; sq++ {
		pc := b[sq]
		if pc == NoPiece || pc.Color() != c {
			continue
		}
		switch pc.Type() {
		case Knight:
			for _, d := range knightDeltas {
				if s, ok := step(sq, d[0], d[1]); ok && (b[s] == NoPiece || b[s].Color() != c) {
					count++
				}
			}
		case Bishop:
			count += slide(b, sq, c, bishopDirs[:])
		case Rook:
			count += slide(b, sq, c, rookDirs[:])
		case Queen:
			count += slide(b, sq, c, bishopDirs[:]) + slide(b, sq, c, rookDirs[:])
		}
	}
	return count
}

func slide(b *[64]Piece, sq Square, c Color, dirs [][2]int) int {
	n := 0
	for _, d := range dirs {
		s, ok := step(sq, d[0], d[1])
		for ok {
			if pc := b[s]; pc != NoPiece {
				if pc.Color() != c {
					n++
				}
				break
			}
			n++
			s, ok = step(s, d[0], d[1])
		}
	}
	return n
}
