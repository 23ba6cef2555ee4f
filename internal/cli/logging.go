package cli

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/suykerbuyk/proofline/internal/config"
)

// setupLogging installs the default slog handler: text on stderr, teed
// into a size-rotated file when cfg.File is set. debug overrides cfg.Level.
func setupLogging(cfg config.LogConfig, debug bool, stderr io.Writer) {
	level := parseLevel(cfg.Level)
	if debug {
		level = slog.LevelDebug
	}

	sink := stderr
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err == nil {
			sink = io.MultiWriter(stderr, &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAgeDays,
				Compress:   true,
			})
		}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(sink, &slog.HandlerOptions{Level: level})))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
