// Package logger builds the application's slog.Logger from the logger
// settings: a text handler on stderr for console logging, or a JSON
// handler writing to a size-rotated file.
package logger

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"sheetfeed/internal/config"
)

// New builds a logger from validated settings.
func New(s *config.LoggerSettings) (*slog.Logger, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger settings: %w", err)
	}

	opts := &slog.HandlerOptions{Level: parseLevel(s.LogLevel)}

	switch s.LogType {
	case "console":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "file":
		writer := &lumberjack.Logger{
			Filename:   s.FilePath,
			MaxSize:    s.MaxSize,
			MaxBackups: s.MaxBackups,
			MaxAge:     s.MaxAge,
			Compress:   true,
		}
		return slog.New(slog.NewJSONHandler(writer, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log type: %s", s.LogType)
	}
}

func parseLevel(level string) slog.Level {
	switch level {
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
