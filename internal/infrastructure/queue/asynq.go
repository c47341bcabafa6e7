package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
)

const (
	TypeTaskStatusChanged = "task:status_changed"
	TypeTaskAssigned      = "task:assigned"
)

// EventEnqueuer publishes task events onto the Redis-backed queue for the
// notification worker to fan out.
type EventEnqueuer struct {
	client *asynq.Client
	log    zerolog.Logger
}

func NewAsynqEnqueuer(redisOpt asynq.RedisClientOpt, log zerolog.Logger) *EventEnqueuer {
	return &EventEnqueuer{client: asynq.NewClient(redisOpt), log: log}
}

func (q *EventEnqueuer) Close() error {
	return q.client.Close()
}

func (q *EventEnqueuer) PublishTaskStatusChanged(ctx context.Context, ev ports.TaskStatusChanged) error {
	payload, _ := json.Marshal(map[string]string{
		"task_id":      ev.TaskID.String(),
		"project_id":   ev.ProjectID.String(),
		"workspace_id": ev.WorkspaceID.String(),
		"old_status":   string(ev.OldStatus),
		"new_status":   string(ev.NewStatus),
		"actor_id":     ev.ActorID.String(),
	})
	task := asynq.NewTask(TypeTaskStatusChanged, payload)
	_, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		q.log.Warn().Err(err).Str("task_id", ev.TaskID.String()).Msg("enqueue task status event failed")
		return err
	}
	return nil
}

func (q *EventEnqueuer) PublishTaskAssigned(ctx context.Context, ev ports.TaskAssigned) error {
	payload, _ := json.Marshal(map[string]string{
		"task_id":      ev.TaskID.String(),
		"workspace_id": ev.WorkspaceID.String(),
		"assignee_id":  ev.AssigneeID.String(),
		"title":        ev.Title,
	})
	task := asynq.NewTask(TypeTaskAssigned, payload)
	_, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		q.log.Warn().Err(err).Str("task_id", ev.TaskID.String()).Msg("enqueue task assigned event failed")
		return err
	}
	return nil
}

var _ ports.EventPublisher = (*EventEnqueuer)(nil)
