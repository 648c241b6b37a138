// Package engine implements the chess AI search engine.
package engine

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/chessmove/internal/board"
)

// Evaluation constants
const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
	KingValue   = 20000
)

// Piece values array for quick lookup
var pieceValues = [7]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, KingValue, 0}

// PieceValue returns the material value of a piece type in centipawns.
func PieceValue(pt board.PieceType) int {
	if pt > board.NoPieceType {
		return 0
	}
	return pieceValues[pt]
}

const (
	centerOccupancyBonus = 10
	mobilityWeight       = 2
)

// Piece-Square Tables (PST) for positional evaluation.
// Tables are laid out as seen from White's side of the board: the first
// row is the 8th rank. White squares are mirrored before lookup.

// Pawn PST - encourages central control and advancement
var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

// Knight PST - encourages central positioning
var knightPST = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

// Bishop PST - encourages central diagonals
var bishopPST = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

// Rook PST - encourages 7th rank and open files
var rookPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

// Queen PST - slight central preference
var queenPST = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

// King PST - encourages castling and staying behind the pawns
var kingPST = [64]int{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

// All PSTs combined for easy lookup
var psts = [...][64]int{
	pawnPST, knightPST, bishopPST, rookPST, queenPST, kingPST,
}

// EvalOptions switches the optional evaluation terms.
type EvalOptions struct {
	CenterControl bool // bonus for pieces on d4, e4, d5, e5
	Mobility      bool // bonus per pseudo-legal target square
}

// Evaluator scores positions statically.
type Evaluator struct {
	opts EvalOptions
	log  zerolog.Logger
}

// NewEvaluator creates an evaluator with the given options.
func NewEvaluator(opts EvalOptions, logger zerolog.Logger) *Evaluator {
	return &Evaluator{opts: opts, log: logger}
}

var defaultEvaluator = &Evaluator{log: log.Logger}

// Evaluate returns the material and piece-square score of pos from
// color's point of view, without optional terms.
func Evaluate(pos *board.Position, color board.Color) int {
	return defaultEvaluator.Evaluate(pos, color)
}

// Evaluate returns the static score of pos from color's point of view.
// Every term is computed as own minus opponent, so
// Evaluate(p, White) == -Evaluate(p, Black).
func (e *Evaluator) Evaluate(pos *board.Position, color board.Color) int {
	if pos == nil {
		e.log.Warn().Msg("evaluate called without a position")
		return 0
	}
	if !color.IsValid() {
		e.log.Warn().Uint8("color", uint8(color)).Msg("evaluate called with invalid color")
		return 0
	}

	snap := pos.Snapshot()
	score := 0
	for sq, pc := range snap {
		if pc == board.NoPiece {
			continue
		}
		pt, c := pc.Type(), pc.Color()
		pstSq := board.Square(sq)
		if c == board.White {
			pstSq = pstSq.Mirror()
		}
		v := pieceValues[pt] + psts[pt][pstSq]
		if c == color {
			score += v
		} else {
			score -= v
		}
	}

	if e.opts.CenterControl {
		score += centerOccupancyBonus * (centerCount(&snap, color) - centerCount(&snap, color.Other()))
	}
	if e.opts.Mobility {
		score += mobilityWeight * (pos.Mobility(color) - pos.Mobility(color.Other()))
	}
	return score
}

func centerCount(snap *[64]board.Piece, c board.Color) int {
	n := 0
	for _, sq := range [4]board.Square{board.D4, board.E4, board.D5, board.E5} {
		if snap[sq] != board.NoPiece && snap[sq].Color() == c {
			n++
		}
	}
	return n
}

// EvaluateMaterial returns only the material balance from color's view.
func EvaluateMaterial(pos *board.Position, color board.Color) int {
	score := 0
	for _, pc := range pos.Snapshot() {
		if pc == board.NoPiece {
			continue
		}
		if pc.Color() == color {
			score += pieceValues[pc.Type()]
		} else {
			score -= pieceValues[pc.Type()]
		}
	}
	return score
}
