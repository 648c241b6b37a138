package engine

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/hailam/chessmove/internal/board"
)

// quiesce searches only tactical moves below the nominal depth so that
// positions are not judged in the middle of an exchange. It fails hard:
// the result is clamped to [alpha, beta] except at the depth cap.
func (sc *SearchContext) quiesce(alpha, beta, qdepth int, maximizing bool) int {
	sc.visit()

	if status := sc.pos.Status(); status != board.Ongoing {
		return sc.terminalScore(status)
	}

	// Stand pat
	standPat := sc.eval.Evaluate(sc.pos, sc.color)
	if qdepth >= MaxQuiescenceDepth {
		return standPat
	}

	if maximizing {
		if standPat >= beta {
			return beta
		}
		alpha = max(alpha, standPat)
	} else {
		if standPat <= alpha {
			return alpha
		}
		beta = min(beta, standPat)
	}

	inCheck := sc.pos.InCheck()
	tactical := lo.Filter(sc.pos.LegalMoves(), func(m board.Move, _ int) bool {
		return m.IsCapture() || m.IsPromotion() || m.IsCastling() || (qdepth == 0 && m.GivesCheck())
	})

	for _, move := range sc.orderer.Order(tactical, 0) {
		// Delta pruning: skip captures that cannot reach the window even
		// with a queen thrown in.
		if sc.opts.DeltaPruning && !inCheck && move.IsCapture() && !move.IsPromotion() {
			swing := pieceValues[move.Captured] + QueenValue
			if maximizing && standPat+swing <= alpha {
				continue
			}
			if !maximizing && standPat-swing >= beta {
				continue
			}
		}

		score, err := sc.quiesceMove(move, alpha, beta, qdepth, maximizing)
		if err != nil {
			sc.log.Warn().Err(err).Str("move", move.String()).Int("qdepth", qdepth).Msg("skipping tactical move")
			continue
		}

		if maximizing {
			if score >= beta {
				return beta
			}
			alpha = max(alpha, score)
		} else {
			if score <= alpha {
				return alpha
			}
			beta = min(beta, score)
		}
	}

	if maximizing {
		return alpha
	}
	return beta
}

func (sc *SearchContext) quiesceMove(move board.Move, alpha, beta, qdepth int, maximizing bool) (score int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("quiescence of %s panicked: %v", move, r)
		}
	}()

	guard, err := sc.pos.MakeMove(move)
	if err != nil {
		return 0, err
	}
	defer guard.Release()

	return sc.quiesce(alpha, beta, qdepth+1, !maximizing), nil
}
