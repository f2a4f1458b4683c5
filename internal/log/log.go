package log

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var initOnce sync.Once

// Setup routes the default slog logger to a rotating JSON log file. The
// interactive browser owns the terminal, so nothing is ever logged to
// stdout. Only the first call has an effect.
func Setup(logFile string, debug bool) {
	initOnce.Do(func() {
		if dir := filepath.Dir(logFile); dir != "" {
			_ = os.MkdirAll(dir, 0o755)
		}
		logRotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10,    // Max size in MB
			MaxBackups: 0,     // Number of backups
			MaxAge:     30,    // Days
			Compress:   false, // Enable compression
		}

		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}

		logger := slog.NewJSONHandler(logRotator, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		})

		slog.SetDefault(slog.New(logger))
	})
}
