package engine

import (
	"time"

	"github.com/hailam/chessmove/internal/board"
)

// ClockLimits contains clock parameters from a game controller.
type ClockLimits struct {
	Time      [2]time.Duration // remaining time per color
	Inc       [2]time.Duration // increment per move
	MovesToGo int              // moves until next time control (0 = sudden death)
	MoveTime  time.Duration    // fixed time per move (overrides other time controls)
}

// AllocateTime returns the time budget for one move, or 0 when the
// limits impose none.
func AllocateTime(limits ClockLimits, us board.Color, ply int) time.Duration {
	if limits.MoveTime > 0 {
		return limits.MoveTime
	}
	if !us.IsValid() || limits.Time[us] == 0 {
		return 0
	}

	timeLeft := limits.Time[us]
	inc := limits.Inc[us]

	// Estimate moves to go
	mtg := limits.MovesToGo
	if mtg == 0 {
		// Sudden death: expect more moves early in the game
		mtg = min(max(50-ply/4, 10), 50)
	}

	budget := timeLeft/time.Duration(mtg) + inc*9/10

	// Slight reduction for very early moves (give some buffer)
	if ply < 8 {
		budget = budget * 85 / 100
	}

	// Safety margin: never use more than 80% of remaining time
	budget = min(budget, timeLeft*8/10)

	return max(budget, 10*time.Millisecond)
}

// TimeManager tracks the wall-clock budget of a search.
type TimeManager struct {
	budget    time.Duration // 0 means unlimited
	startTime time.Time     // When search started
}

// NewTimeManager creates a new time manager.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Start begins timing a search with the given budget.
func (tm *TimeManager) Start(budget time.Duration) {
	tm.startTime = time.Now()
	tm.budget = max(budget, 0)
}

// Elapsed returns the time elapsed since search started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// Budget returns the time allowed for the search.
func (tm *TimeManager) Budget() time.Duration {
	return tm.budget
}

// ShouldStop returns true once the budget is spent.
func (tm *TimeManager) ShouldStop() bool {
	return tm.budget > 0 && tm.Elapsed() >= tm.budget
}
