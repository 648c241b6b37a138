// Package config loads runtime settings from the environment. A .env
// file in the working directory is loaded first.
package config

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
)

// Environment variable names.
const (
	EnvLogStyle   = "CHESSPLAY_LOG_STYLE"
	EnvLogLevel   = "CHESSPLAY_LOG_LEVEL"
	EnvDataDir    = "CHESSPLAY_DATA_DIR"
	EnvMaxDepth   = "CHESSPLAY_MAX_DEPTH"
	EnvMoveTimeMS = "CHESSPLAY_MOVE_TIME_MS"
	EnvHashMB     = "CHESSPLAY_HASH_MB"
	EnvDifficulty = "CHESSPLAY_DIFFICULTY"
)

type Config struct {
	Logs    LogConfig
	DataDir string
	Engine  EngineConfig
}

type LogConfig struct {
	Style string // "console" or "json"
	Level string
}

type EngineConfig struct {
	Difficulty string
	MaxDepth   int // 0 means use the difficulty preset
	MoveTime   time.Duration
	HashMB     int
}

// LoadConfig reads the configuration from the environment. Unset
// variables keep their defaults; malformed ones are an error.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Logs: LogConfig{
			Style: getenv(EnvLogStyle, "console"),
			Level: getenv(EnvLogLevel, "info"),
		},
		DataDir: os.Getenv(EnvDataDir),
		Engine: EngineConfig{
			Difficulty: getenv(EnvDifficulty, "medium"),
			HashMB:     16,
		},
	}

	var err error
	if cfg.Engine.MaxDepth, err = intEnv(EnvMaxDepth, 0); err != nil {
		return nil, err
	}
	moveTime, err := intEnv(EnvMoveTimeMS, 0)
	if err != nil {
		return nil, err
	}
	cfg.Engine.MoveTime = time.Duration(moveTime) * time.Millisecond
	if cfg.Engine.HashMB, err = intEnv(EnvHashMB, cfg.Engine.HashMB); err != nil {
		return nil, err
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Logs.Level)); err != nil {
		return nil, errors.Wrapf(err, "%s", EnvLogLevel)
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "converting %s", key)
	}
	if n < 0 {
		return 0, errors.Errorf("%s must not be negative, got %d", key, n)
	}
	return n, nil
}

// Logger builds a zerolog logger writing to w.
func (c LogConfig) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Level))
	if err != nil || c.Level == "" {
		level = zerolog.InfoLevel
	}

	if strings.EqualFold(c.Style, "json") {
		return zerolog.New(w).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()
}
