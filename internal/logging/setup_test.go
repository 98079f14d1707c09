package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capdesc/go-capdesc/internal/captypes"
)

func TestGenerateRunID(t *testing.T) {
	first := GenerateRunID()
	second := GenerateRunID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestSetupInvalidLevel(t *testing.T) {
	_, err := Setup(Options{Level: captypes.LogLevel("verbose")})
	assert.ErrorIs(t, err, captypes.ErrInvalidLogLevel)
}

func TestSetupWithAuditLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	logger, err := Setup(Options{
		Level:        captypes.LogLevelInfo,
		AuditLogPath: path,
		RunID:        "run-42",
	})
	require.NoError(t, err)

	logger.Info("classification finished", "command", "rm")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Equal(t, "classification finished", record["msg"])
	assert.Equal(t, "rm", record["command"])
	assert.Equal(t, "run-42", record["run_id"])
}

func TestSetupAuditLogAppendAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	for i := 0; i < 2; i++ {
		logger, err := Setup(Options{Level: captypes.LogLevelInfo, AuditLogPath: path})
		require.NoError(t, err)
		logger.Info("line")
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(data, []byte("\n")))
}

func TestSetupBadAuditLogPath(t *testing.T) {
	_, err := Setup(Options{
		Level:        captypes.LogLevelInfo,
		AuditLogPath: filepath.Join(t.TempDir(), "no", "such", "dir", "audit.jsonl"),
	})
	assert.Error(t, err)
}

func TestMultiHandlerDispatchesToAll(t *testing.T) {
	var first, second bytes.Buffer
	handler := NewMultiHandler(
		slog.NewTextHandler(&first, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&second, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(handler)

	logger.Info("info message")
	logger.Error("error message")

	assert.Contains(t, first.String(), "info message")
	assert.Contains(t, first.String(), "error message")
	assert.NotContains(t, second.String(), "info message")
	assert.Contains(t, second.String(), "error message")
}

func TestMultiHandlerEnabled(t *testing.T) {
	handler := NewMultiHandler(
		slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}),
	)

	ctx := context.Background()
	assert.False(t, handler.Enabled(ctx, slog.LevelInfo))
	assert.True(t, handler.Enabled(ctx, slog.LevelWarn))
	assert.True(t, handler.Enabled(ctx, slog.LevelError))
}

func TestMultiHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	handler := NewMultiHandler(slog.NewTextHandler(&buf, nil)).
		WithAttrs([]slog.Attr{slog.String("run_id", "r-1")})

	slog.New(handler).Info("message")
	assert.Contains(t, buf.String(), "run_id=r-1")
}
