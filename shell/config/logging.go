package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogMaxSizeMB = 10
	defaultLogMaxFiles  = 5
)

// RotationConfig describes a size-rotated log file.
type RotationConfig struct {
	File      string
	MaxSizeMB int
	MaxFiles  int
}

// NewRotatingWriter creates the log directory and returns a lumberjack writer for the file.
func NewRotatingWriter(cfg RotationConfig) (*lumberjack.Logger, error) {
	if cfg.File == "" {
		return nil, errors.New("rotation file path must not be empty")
	}

	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = defaultLogMaxSizeMB
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = defaultLogMaxFiles
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxFiles,
	}, nil
}

// SlogLevel parses LogLevel (debug, info, warn, error).
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}

	return level, nil
}

// NewLogHandler returns a JSON slog.Handler writing to the rotating LogFile, or to fallback if no file is set.
// The returned io.Closer must be closed when the process is done logging.
func (c Config) NewLogHandler(fallback io.Writer) (slog.Handler, io.Closer, error) {
	level, err := c.SlogLevel()
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = fallback
	var closer io.Closer = io.NopCloser(nil)

	if c.LogFile != "" {
		writer, rotErr := NewRotatingWriter(RotationConfig{
			File:      c.LogFile,
			MaxSizeMB: c.LogMaxSizeMB,
			MaxFiles:  c.LogMaxFiles,
		})
		if rotErr != nil {
			return nil, nil, rotErr
		}

		out = writer
		closer = writer
	}

	return slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}), closer, nil
}
