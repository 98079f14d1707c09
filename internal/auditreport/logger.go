package auditreport

import (
	"context"
	"log/slog"
	"time"

	"github.com/capdesc/go-capdesc/internal/captypes"
)

// Logger emits structured audit events for classification and encoding runs.
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates an audit logger writing through the given slog logger.
func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger}
}

// LogClassification records the outcome of one classification run.
func (a *Logger) LogClassification(ctx context.Context, report *Report) {
	attrs := []slog.Attr{
		slog.String("audit_type", "command_classification"),
		slog.Int64("timestamp", time.Now().Unix()),
		slog.String("run_id", report.RunID),
		slog.String("command", report.Command),
		slog.String("security_level", report.FinalSecurityLevel.String()),
		slog.String("privilege_level", report.FinalPrivilegeLevel.String()),
		slog.Float64("security_score", report.SecurityScore),
		slog.Float64("destructive_score", report.DestructiveScore),
		slog.Int("evidence_count", report.Summary.EvidenceCount),
		slog.String("doc_checksum", report.ManPageChecksum),
	}

	level := slog.LevelInfo
	if report.FinalSecurityLevel >= captypes.RiskLevelHigh {
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(ctx, level, "Command classified", attrs...)
}

// LogDescriptorEncoded records that a binary descriptor was produced.
func (a *Logger) LogDescriptorEncoded(ctx context.Context, command string, variant string, size int) {
	a.logger.LogAttrs(ctx, slog.LevelInfo, "Descriptor encoded",
		slog.String("audit_type", "descriptor_encode"),
		slog.Int64("timestamp", time.Now().Unix()),
		slog.String("command", command),
		slog.String("variant", variant),
		slog.Int("size_bytes", size),
	)
}

// LogVerificationFailure records a descriptor that failed integrity checks.
func (a *Logger) LogVerificationFailure(ctx context.Context, source string, err error) {
	a.logger.LogAttrs(ctx, slog.LevelError, "Descriptor verification failed",
		slog.String("audit_type", "descriptor_verify"),
		slog.Int64("timestamp", time.Now().Unix()),
		slog.String("source", source),
		slog.String("error", err.Error()),
	)
}
