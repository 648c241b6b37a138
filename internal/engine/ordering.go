package engine

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/hailam/chessmove/internal/board"
)

// Move ordering priorities. Each tier exceeds the sum of every tier
// below it, so a move never jumps a tier through bonuses.
const (
	CaptureBase     = 1000000 // plus MVV-LVA * mvvLvaScale
	PromotionBase   = 500000  // plus promoted piece value
	KillerScore1    = 200000  // First killer move
	KillerScore2    = 190000  // Second killer move
	CheckScore      = 100000  // Quiet move giving check
	centerBonus     = 80
	centerPawnBonus = 40
	nearCenterBonus = 30
	nearKnightBonus = 25
	vacatePenalty   = 10

	// One MVV-LVA step outweighs promotion, check and center bonuses
	// together, so those never reorder captures.
	mvvLvaScale = 1000000
)

// MVV-LVA (Most Valuable Victim - Least Valuable Attacker) scores
// Higher score = search first
// Score = victimValue * 10 - attackerValue
var mvvLva = [6][6]int{
	//       P    N    B    R    Q    K  (attacker)
	/* P */ {15, 14, 14, 13, 12, 11}, // Pawn victim
	/* N */ {25, 24, 24, 23, 22, 21}, // Knight victim
	/* B */ {35, 34, 34, 33, 32, 31}, // Bishop victim
	/* R */ {45, 44, 44, 43, 42, 41}, // Rook victim
	/* Q */ {55, 54, 54, 53, 52, 51}, // Queen victim
	/* K */ {0, 0, 0, 0, 0, 0},       // King can't be captured
}

// KillerTable keeps, per search depth, the two most recent quiet moves
// that caused a cutoff. Slot 0 is the newest.
type KillerTable struct {
	slots [MaxPly][2]board.Move
}

// NewKillerTable creates an empty killer table.
func NewKillerTable() *KillerTable {
	return &KillerTable{}
}

// Add records a quiet cutoff move at depth. Moves already present are
// left where they are; otherwise the oldest entry is dropped.
func (kt *KillerTable) Add(m board.Move, depth int) {
	if depth < 0 || depth >= MaxPly || m.IsNone() || m.IsCapture() {
		return
	}
	slot := &kt.slots[depth]
	if lo.ContainsBy(slot[:], func(k board.Move) bool { return k.SameAs(m) }) {
		return
	}
	slot[1] = slot[0]
	slot[0] = m
}

// Get returns the killer slots for depth, newest first.
func (kt *KillerTable) Get(depth int) [2]board.Move {
	if depth < 0 || depth >= MaxPly {
		return [2]board.Move{}
	}
	return kt.slots[depth]
}

// Clear removes every killer move.
func (kt *KillerTable) Clear() {
	kt.slots = [MaxPly][2]board.Move{}
}

// MoveOrderer handles move ordering for the search.
type MoveOrderer struct {
	killers *KillerTable
}

// NewMoveOrderer creates a new move orderer backed by killers.
func NewMoveOrderer(killers *KillerTable) *MoveOrderer {
	if killers == nil {
		killers = NewKillerTable()
	}
	return &MoveOrderer{killers: killers}
}

type scoredMove struct {
	move  board.Move
	score int
}

// Order returns a new slice holding moves sorted by descending ordering
// score. Equal scores keep their generation order.
func (mo *MoveOrderer) Order(moves []board.Move, depth int) []board.Move {
	scored := make([]scoredMove, len(moves))
	for i, m := range moves {
		scored[i] = scoredMove{move: m, score: mo.ScoreMove(m, depth)}
	}
	slices.SortStableFunc(scored, func(a, b scoredMove) int {
		return cmp.Compare(b.score, a.score)
	})
	return lo.Map(scored, func(s scoredMove, _ int) board.Move { return s.move })
}

// ScoreMove returns the ordering score for a single move.
func (mo *MoveOrderer) ScoreMove(m board.Move, depth int) int {
	score := 0

	if m.IsCapture() && m.Captured < board.King && m.Piece <= board.King {
		score += CaptureBase + mvvLva[m.Captured][m.Piece]*mvvLvaScale
	}

	if m.IsPromotion() {
		score += PromotionBase + pieceValues[m.Promotion]
	}

	if !m.IsCapture() {
		killers := mo.killers.Get(depth)
		switch {
		case killers[0].SameAs(m) && !killers[0].IsNone():
			score += KillerScore1
		case killers[1].SameAs(m) && !killers[1].IsNone():
			score += KillerScore2
		}
	}

	if m.GivesCheck() {
		score += CheckScore
	}

	switch {
	case m.To.IsCenter():
		score += centerBonus
		if m.Piece == board.Pawn {
			score += centerPawnBonus
		}
	case m.To.IsExtendedCenter():
		score += nearCenterBonus
		if m.Piece == board.Knight {
			score += nearKnightBonus
		}
	}

	if m.From.IsCenter() {
		score -= vacatePenalty
	}

	return score
}
