package storage

import (
	"os"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func openTemp(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func TestPreferences(t *testing.T) {
	s := openTemp(t)

	prefs, err := s.LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if *prefs != *DefaultPreferences() {
		t.Errorf("fresh store returned %+v, want defaults", prefs)
	}

	prefs.Difficulty = "hard"
	prefs.MaxDepth = 5
	prefs.HashMB = 64
	if err := s.SavePreferences(prefs); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}

	loaded, err := s.LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if loaded.Difficulty != "hard" || loaded.MaxDepth != 5 || loaded.HashMB != 64 || loaded.MoveTimeMS != 3000 {
		t.Errorf("loaded %+v", loaded)
	}
	if loaded.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}
}

func TestRecordAndLoadGame(t *testing.T) {
	s := openTemp(t)
	start := time.Now().Add(-time.Minute)

	id, err := s.RecordGame(GameRecord{
		StartFEN:   "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		Moves:      []string{"f2f3", "e7e5", "g2g4", "d8h4"},
		Result:     ResultBlackWins,
		StartedAt:  start,
		FinishedAt: start.Add(30 * time.Second),
	})
	if err != nil {
		t.Fatalf("RecordGame: %v", err)
	}
	if id == "" {
		t.Fatal("RecordGame returned empty id")
	}

	rec, err := s.LoadGame(id)
	if err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	if rec.ID != id || rec.Plies != 4 || rec.Result != ResultBlackWins || len(rec.Moves) != 4 {
		t.Errorf("loaded %+v", rec)
	}

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats: %v", err)
	}
	if stats.GamesPlayed != 1 || stats.BlackWins != 1 || stats.TotalPlies != 4 || stats.TotalPlayTime != 30*time.Second {
		t.Errorf("stats %+v", stats)
	}

	if _, err := s.LoadGame("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadGame(missing) error = %v, want ErrNotFound", err)
	}
}

func TestListGamesOrdered(t *testing.T) {
	s := openTemp(t)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for i, offset := range []int{3, 1, 2} {
		_, err := s.RecordGame(GameRecord{
			ID:        string(rune('a' + i)),
			Result:    ResultDraw,
			StartedAt: base.Add(time.Duration(offset) * time.Hour),
		})
		if err != nil {
			t.Fatalf("RecordGame: %v", err)
		}
	}

	games, err := s.ListGames()
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}
	if len(games) != 3 {
		t.Fatalf("got %d games, want 3", len(games))
	}
	if games[0].ID != "b" || games[1].ID != "c" || games[2].ID != "a" {
		t.Errorf("order = %s %s %s, want b c a", games[0].ID, games[1].ID, games[2].ID)
	}

	stats, _ := s.LoadStats()
	if stats.Draws != 3 || stats.DrawRate() != 100 {
		t.Errorf("stats %+v", stats)
	}
}

func TestGameStats(t *testing.T) {
	stats := NewGameStats()
	if stats.AveragePlies() != 0 || stats.DrawRate() != 0 {
		t.Error("empty stats should report zero rates")
	}

	stats = &GameStats{GamesPlayed: 4, Draws: 1, TotalPlies: 200}
	if stats.AveragePlies() != 50 {
		t.Errorf("AveragePlies = %f, want 50", stats.AveragePlies())
	}
	if stats.DrawRate() != 25 {
		t.Errorf("DrawRate = %f, want 25", stats.DrawRate())
	}
}

func TestOpenDefault(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenDefault(dir)
	if err != nil {
		t.Fatalf("OpenDefault: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dir + "/db"); err != nil {
		t.Errorf("database directory not created: %v", err)
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}

	// Verify directory exists
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}

	t.Logf("Data directory: %s", dataDir)
}
