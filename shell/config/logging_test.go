package config_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending-go/shell/config"
)

func Test_NewRotatingWriter_AppliesDefaults(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "librarian.log")

	writer, err := config.NewRotatingWriter(config.RotationConfig{File: file})
	require.NoError(t, err)

	assert.Equal(t, 10, writer.MaxSize)
	assert.Equal(t, 5, writer.MaxBackups)
	assert.DirExists(t, filepath.Dir(file))
}

func Test_NewRotatingWriter_RequiresFile(t *testing.T) {
	_, err := config.NewRotatingWriter(config.RotationConfig{})

	assert.Error(t, err)
}

func Test_NewLogHandler_WritesJSONAtConfiguredLevel(t *testing.T) {
	var out bytes.Buffer
	cfg := config.Config{LogLevel: "info"}

	handler, closer, err := cfg.NewLogHandler(&out)
	require.NoError(t, err)
	defer func() { _ = closer.Close() }()

	logger := slog.New(handler)
	logger.Debug("hidden")
	logger.Info("book lent", "isbn", "ISBN-001")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), `"msg":"book lent"`)
	assert.Contains(t, out.String(), `"isbn":"ISBN-001"`)
	assert.False(t, handler.Enabled(context.Background(), slog.LevelDebug))
}

func Test_NewLogHandler_WritesToLogFile(t *testing.T) {
	var out bytes.Buffer
	file := filepath.Join(t.TempDir(), "librarian.log")
	cfg := config.Config{LogLevel: "debug", LogFile: file}

	handler, closer, err := cfg.NewLogHandler(&out)
	require.NoError(t, err)

	slog.New(handler).Debug("catalog loaded")
	require.NoError(t, closer.Close())

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(content), "catalog loaded")
	assert.Empty(t, out.String())
}

func Test_NewLogHandler_RejectsUnknownLevel(t *testing.T) {
	cfg := config.Config{LogLevel: "chatty"}

	_, _, err := cfg.NewLogHandler(&bytes.Buffer{})

	assert.ErrorIs(t, err, config.ErrInvalidLogLevel)
}
