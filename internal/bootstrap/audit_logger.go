package bootstrap

import "context"

type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

// AuditLogger records operational events that must survive in the log
// stream even when the process is going down.
type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
