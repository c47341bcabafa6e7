package queue

import (
	"context"

	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
)

// NoopPublisher is a no-op publisher when Redis/Asynq is not configured.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (q *NoopPublisher) PublishTaskStatusChanged(ctx context.Context, ev ports.TaskStatusChanged) error {
	return nil
}

func (q *NoopPublisher) PublishTaskAssigned(ctx context.Context, ev ports.TaskAssigned) error {
	return nil
}

var _ ports.EventPublisher = (*NoopPublisher)(nil)
