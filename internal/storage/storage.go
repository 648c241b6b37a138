package storage

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	prefixGame     = "game/"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("storage: not found")

// EnginePreferences stores engine settings between runs.
type EnginePreferences struct {
	Difficulty string    `json:"difficulty"`
	MaxDepth   int       `json:"max_depth"`
	MoveTimeMS int       `json:"move_time_ms"`
	HashMB     int       `json:"hash_mb"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DefaultPreferences returns default engine preferences
func DefaultPreferences() *EnginePreferences {
	return &EnginePreferences{
		Difficulty: "medium",
		MaxDepth:   3,
		MoveTimeMS: 3000,
		HashMB:     16,
	}
}

// Game results, in PGN notation.
const (
	ResultWhiteWins = "1-0"
	ResultBlackWins = "0-1"
	ResultDraw      = "1/2-1/2"
	ResultUnknown   = "*"
)

// GameRecord is one finished or abandoned self-play game.
type GameRecord struct {
	ID                 string    `json:"id"`
	StartFEN           string    `json:"start_fen"`
	Moves              []string  `json:"moves"` // UCI notation
	Result             string    `json:"result"`
	Termination        string    `json:"termination"`
	Plies              int       `json:"plies"`
	PositionsEvaluated uint64    `json:"positions_evaluated"`
	StartedAt          time.Time `json:"started_at"`
	FinishedAt         time.Time `json:"finished_at"`
}

// GameStats aggregates recorded games.
type GameStats struct {
	GamesPlayed   int           `json:"games_played"`
	WhiteWins     int           `json:"white_wins"`
	BlackWins     int           `json:"black_wins"`
	Draws         int           `json:"draws"`
	TotalPlies    int           `json:"total_plies"`
	TotalPlayTime time.Duration `json:"total_play_time"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{}
}

// AveragePlies returns the mean game length in plies.
func (s *GameStats) AveragePlies() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.TotalPlies) / float64(s.GamesPlayed)
}

// DrawRate returns the share of drawn games as a percentage (0-100)
func (s *GameStats) DrawRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Draws) / float64(s.GamesPlayed) * 100
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// Open opens or creates a database in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening database in %s", dir)
	}

	return &Storage{db: db}, nil
}

// OpenDefault opens the database under dataDir, or in the platform data
// directory when dataDir is empty.
func OpenDefault(dataDir string) (*Storage, error) {
	dbDir, err := GetDatabaseDir(dataDir)
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", key)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	return errors.Wrapf(err, "writing %s", key)
}

// get decodes the value under key into v. It returns ErrNotFound when
// the key is absent.
func (s *Storage) get(key string, v any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	return errors.Wrapf(err, "reading %s", key)
}

// SavePreferences saves engine preferences
func (s *Storage) SavePreferences(prefs *EnginePreferences) error {
	prefs.UpdatedAt = time.Now()
	return s.put(keyPreferences, prefs)
}

// LoadPreferences loads engine preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*EnginePreferences, error) {
	prefs := DefaultPreferences()
	if err := s.get(keyPreferences, prefs); err != nil && !errors.Is(err, ErrNotFound) {
		return DefaultPreferences(), err
	}
	return prefs, nil
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()
	if err := s.get(keyStats, stats); err != nil && !errors.Is(err, ErrNotFound) {
		return NewGameStats(), err
	}
	return stats, nil
}

// RecordGame stores a game and updates the statistics. A record without
// an ID gets a new one. The ID is returned.
func (s *Storage) RecordGame(rec GameRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Plies == 0 {
		rec.Plies = len(rec.Moves)
	}

	stats, err := s.LoadStats()
	if err != nil {
		return "", err
	}

	stats.GamesPlayed++
	stats.TotalPlies += rec.Plies
	if !rec.StartedAt.IsZero() && rec.FinishedAt.After(rec.StartedAt) {
		stats.TotalPlayTime += rec.FinishedAt.Sub(rec.StartedAt)
	}
	switch rec.Result {
	case ResultWhiteWins:
		stats.WhiteWins++
	case ResultBlackWins:
		stats.BlackWins++
	case ResultDraw:
		stats.Draws++
	}

	recData, err := json.Marshal(rec)
	if err != nil {
		return "", errors.Wrap(err, "encoding game record")
	}
	statsData, err := json.Marshal(stats)
	if err != nil {
		return "", errors.Wrap(err, "encoding stats")
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(prefixGame+rec.ID), recData); err != nil {
			return err
		}
		return txn.Set([]byte(keyStats), statsData)
	})
	if err != nil {
		return "", errors.Wrapf(err, "recording game %s", rec.ID)
	}
	return rec.ID, nil
}

// LoadGame returns the game stored under id.
func (s *Storage) LoadGame(id string) (*GameRecord, error) {
	rec := &GameRecord{}
	if err := s.get(prefixGame+id, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListGames returns every stored game ordered by start time.
func (s *Storage) ListGames() ([]GameRecord, error) {
	var games []GameRecord

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixGame)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var rec GameRecord
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return errors.Wrapf(err, "decoding %s", strings.TrimPrefix(string(item.Key()), prefixGame))
			}
			games = append(games, rec)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "listing games")
	}

	slices.SortStableFunc(games, func(a, b GameRecord) int {
		return a.StartedAt.Compare(b.StartedAt)
	})
	return games, nil
}
