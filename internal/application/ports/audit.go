package ports

import "context"

// AuditEvent is a single security event for logging or webhooks.
type AuditEvent struct {
	Event   string // event type: user.login, workspace.member_added, admin.ban, etc.
	UserID  string // acting user; empty for failed authentication
	IP      string
	Success bool
	Err     string
	Detail  map[string]string
}

// WebhookEmitter sends audit events to an external audit sink.
type WebhookEmitter interface {
	Emit(ctx context.Context, event AuditEvent) error
}
