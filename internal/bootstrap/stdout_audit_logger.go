package bootstrap

import (
	"context"
	"time"

	"go.uber.org/zap"

	"go-mes/internal/shared/contextutil"
)

// StdoutAuditLogger writes audit entries into the process log stream
// through the global zap logger. Plant deployments ship stdout to the
// central collector, so the log stream doubles as the audit trail.
type StdoutAuditLogger struct {
	clock func() time.Time
}

func NewStdoutAuditLogger() *StdoutAuditLogger {
	return &StdoutAuditLogger{clock: time.Now}
}

func (l *StdoutAuditLogger) Log(ctx context.Context, entry AuditLog) {
	fields := []zap.Field{
		zap.String("occurred_at", l.clock().UTC().Format(time.RFC3339)),
		zap.String("action", entry.Action),
		zap.String("message", entry.Message),
	}
	if rid := contextutil.GetRequestID(ctx); rid != "" {
		fields = append(fields, zap.String("request_id", rid))
	}
	if actor := contextutil.GetUserID(ctx); actor != "" {
		fields = append(fields, zap.String("actor_sap_id", actor))
	}
	if len(entry.Meta) > 0 {
		fields = append(fields, zap.Any("meta", entry.Meta))
	}

	zap.L().Named("audit").Info("audit event", fields...)
}
