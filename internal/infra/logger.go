package infra

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger creates a new slog.Logger with log rotation support.
// Logs go to stderr so stdout stays free for echoed records.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Logging.Level),
	}

	logDir := cfg.Logging.Dir
	if logDir == "" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}

	// Create logs directory if not exists
	if err := os.MkdirAll(logDir, 0755); err != nil {
		// Fallback to stderr if directory creation fails
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}

	fileLogger := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "msggen.log"),
		MaxSize:    10, // Megabytes
		MaxBackups: 3,
		MaxAge:     28, // Days
		Compress:   true,
	}

	writer := io.MultiWriter(os.Stderr, fileLogger)

	return slog.New(slog.NewJSONHandler(writer, opts))
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
