// Package logging installs the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Config controls level and destination. An empty File logs to stdout.
type Config struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// LoadConfig reads LOG_LEVEL, LOG_FILE, LOG_MAX_SIZE_MB, LOG_MAX_BACKUPS and LOG_MAX_AGE_DAYS.
func LoadConfig() Config {
	return Config{
		Level:      os.Getenv("LOG_LEVEL"),
		File:       os.Getenv("LOG_FILE"),
		MaxSizeMB:  intEnv("LOG_MAX_SIZE_MB", 100),
		MaxBackups: intEnv("LOG_MAX_BACKUPS", 5),
		MaxAgeDays: intEnv("LOG_MAX_AGE_DAYS", 28),
	}
}

// New builds a JSON logger, installs it as slog's default and returns it.
// The returned closer flushes the rotating file, if any.
func New(cfg Config) (*slog.Logger, io.Closer) {
	var (
		w      io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		w, closer = lj, lj
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}))
	slog.SetDefault(logger)
	return logger, closer
}

// ParseLevel maps debug, info, warn and error. Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func intEnv(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return def
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
