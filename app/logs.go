package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"DocAnalystAI/app/configs"
)

const logFileName = "agent.log"

// LevelCritical marks failures that end the process.
const LevelCritical = slog.Level(12)

// NewLogger builds the process logger: leveled, timestamped text lines on stdout and in a rotating
// <logs-dir>/agent.log. Extra writers receive the same lines. The returned closer releases the file.
func NewLogger(cfg configs.OutputConfig, extra ...io.Writer) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(cfg.LogsDir, os.ModePerm); err != nil {
		return nil, nil, fmt.Errorf("create logs directory: %w", err)
	}

	file := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogsDir, logFileName),
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     30,
	}

	writers := append([]io.Writer{os.Stdout, file}, extra...)
	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level:       ParseLevel(cfg.LogLevel),
		ReplaceAttr: renameCritical,
	})
	return slog.New(handler), file, nil
}

// NewConsoleLogger logs to stdout only. It serves until the configuration names a logs directory.
func NewConsoleLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{ReplaceAttr: renameCritical}))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func renameCritical(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= LevelCritical {
			a.Value = slog.StringValue("CRITICAL")
		}
	}
	return a
}
