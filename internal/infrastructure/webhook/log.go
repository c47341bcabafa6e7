package webhook

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
)

// LogEmitter writes audit events to the structured log. It is the fallback
// sink when AUDIT_WEBHOOK_URL is not configured, so security events always
// leave a trace.
type LogEmitter struct {
	log zerolog.Logger
}

func NewLogEmitter(log zerolog.Logger) *LogEmitter {
	return &LogEmitter{log: log}
}

// Emit implements ports.WebhookEmitter.
func (e *LogEmitter) Emit(ctx context.Context, event ports.AuditEvent) error {
	ev := e.log.Info().
		Str("audit", event.Event).
		Str("user_id", event.UserID).
		Bool("success", event.Success)
	if event.IP != "" {
		ev = ev.Str("ip", event.IP)
	}
	if event.Err != "" {
		ev = ev.Str("error", event.Err)
	}
	for k, v := range event.Detail {
		ev = ev.Str(k, v)
	}
	ev.Msg("audit event")
	return nil
}

var _ ports.WebhookEmitter = (*LogEmitter)(nil)
