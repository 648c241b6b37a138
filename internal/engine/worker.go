package engine

import (
	"github.com/pkg/errors"

	"github.com/hailam/chessmove/internal/board"
)

// search is minimax with alpha-beta pruning and principal variation
// search. Scores are always from the searching side's point of view;
// maximizing is true when that side is to move.
func (sc *SearchContext) search(depth, alpha, beta int, maximizing bool) SearchResult {
	sc.visit()

	hash := sc.pos.Hash()
	ply := sc.ply()

	// Probe transposition table
	if entry, ok := sc.tt.Probe(hash); ok && int(entry.Depth) >= depth {
		score := ScoreFromTT(int(entry.Score), ply)
		if entry.Flag == TTExact ||
			(entry.Flag == TTLowerBound && score >= beta) ||
			(entry.Flag == TTUpperBound && score <= alpha) {
			return SearchResult{Score: score, Move: entry.BestMove}
		}
	}

	if depth <= 0 {
		return Terminal(sc.quiesce(alpha, beta, 0, maximizing))
	}

	moves := sc.pos.LegalMoves()
	if len(moves) == 0 {
		return Terminal(sc.terminalScore(sc.pos.Status()))
	}

	ordered := sc.orderer.Order(moves, depth)
	origAlpha, origBeta := alpha, beta

	bestScore := Infinity + 1
	if maximizing {
		bestScore = -Infinity - 1
	}
	bestMove := board.NoMove
	searched := 0

	for _, move := range ordered {
		score, err := sc.searchMove(move, depth, alpha, beta, maximizing, searched == 0)
		if err != nil {
			sc.log.Warn().Err(err).Str("move", move.String()).Int("depth", depth).Msg("skipping move")
			continue
		}
		searched++

		if maximizing {
			if score > bestScore {
				bestScore, bestMove = score, move
			}
			alpha = max(alpha, score)
		} else {
			if score < bestScore {
				bestScore, bestMove = score, move
			}
			beta = min(beta, score)
		}

		if beta <= alpha {
			if !move.IsCapture() {
				sc.killers.Add(move, depth)
			}
			break
		}
	}

	// Every child failed: fall back to the first move without caching.
	if bestMove.IsNone() {
		sc.log.Warn().Str("fen", sc.pos.FEN()).Msg("no move searched, using first legal move")
		return Decisive(0, moves[0])
	}

	flag := TTExact
	if bestScore <= origAlpha {
		flag = TTUpperBound
	} else if bestScore >= origBeta {
		flag = TTLowerBound
	}
	sc.tt.Store(hash, depth, ScoreToTT(bestScore, ply), flag, bestMove)

	return Decisive(bestScore, bestMove)
}

// searchMove makes move, scores the resulting position and undoes the
// move again. The first move of a node gets the full window; later
// moves are probed with a null window and re-searched only when the
// probe lands inside (alpha, beta).
func (sc *SearchContext) searchMove(move board.Move, depth, alpha, beta int, maximizing, first bool) (score int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("search of %s panicked: %v", move, r)
		}
	}()

	guard, err := sc.pos.MakeMove(move)
	if err != nil {
		return 0, err
	}
	defer guard.Release()

	if status := sc.pos.Status(); status != board.Ongoing {
		return sc.terminalScore(status), nil
	}

	if first {
		return sc.search(depth-1, alpha, beta, !maximizing).Score, nil
	}

	if maximizing {
		score = sc.search(depth-1, alpha, alpha+1, false).Score
		if score > alpha && score < beta {
			score = sc.search(depth-1, alpha, beta, false).Score
		}
		return score, nil
	}

	score = sc.search(depth-1, beta-1, beta, true).Score
	if score < beta && score > alpha {
		score = sc.search(depth-1, alpha, beta, true).Score
	}
	return score, nil
}
