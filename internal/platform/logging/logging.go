package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	platformerrors "voicerag-server-go/internal/platform/errors"
)

// Config captures logging configuration options.
type Config struct {
	Level    string
	Dir      string
	Filename string
}

// Logger owns the slog handler and the log file, if one was opened.
type Logger struct {
	*slog.Logger
	file *os.File
}

// New builds a text slog logger writing to stdout and, when Dir is set, to a
// log file under it.
func New(cfg Config) (*Logger, error) {
	var writers []io.Writer
	writers = append(writers, os.Stdout)

	var file *os.File
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, platformerrors.Wrap(platformerrors.KindBootstrap, "logging",
				"failed to create log directory", err)
		}
		name := cfg.Filename
		if name == "" {
			name = "server.log"
		}
		f, err := os.OpenFile(filepath.Join(cfg.Dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, platformerrors.Wrap(platformerrors.KindBootstrap, "logging",
				"failed to open log file", err)
		}
		file = f
		writers = append(writers, f)
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	})

	return &Logger{Logger: slog.New(handler), file: file}, nil
}

// Close releases the log file. The logger must not be used afterwards.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// ParseLevel maps a config string to a slog level, defaulting to info.
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
