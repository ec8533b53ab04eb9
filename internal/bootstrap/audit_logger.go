package bootstrap

import "context"

type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

// AuditLogger records operational audit events. The stdout implementation
// is the default; a persistent sink can replace it without touching callers.
type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
