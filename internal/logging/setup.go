package logging

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/capdesc/go-capdesc/internal/captypes"
)

// Options configures logger initialization.
type Options struct {
	// Level is the minimum level for console output.
	Level captypes.LogLevel

	// AuditLogPath, when set, receives every record as JSON lines regardless
	// of the console level.
	AuditLogPath string

	// RunID is attached to every record for correlation.
	RunID string
}

// Setup installs the default slog logger according to opts and returns the
// configured logger.
func Setup(opts Options) (*slog.Logger, error) {
	level, err := opts.Level.ToSlogLevel()
	if err != nil {
		return nil, err
	}

	consoleHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})

	var handler slog.Handler = consoleHandler
	if opts.AuditLogPath != "" {
		// O_EXCL is deliberately not used: appending to an existing audit log
		// across runs is the expected mode.
		file, err := os.OpenFile(opts.AuditLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log file: %w", err)
		}
		fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
		handler = NewMultiHandler(consoleHandler, fileHandler)
	}

	logger := slog.New(handler)
	if opts.RunID != "" {
		logger = logger.With(slog.String("run_id", opts.RunID))
	}
	slog.SetDefault(logger)
	return logger, nil
}

// GenerateRunID returns a fresh identifier correlating all records and audit
// reports produced by one invocation.
func GenerateRunID() string {
	return uuid.New().String()
}
