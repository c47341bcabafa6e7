package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// taskStatusChangedPayload matches the JSON enqueued by EventEnqueuer.PublishTaskStatusChanged.
type taskStatusChangedPayload struct {
	TaskID      string `json:"task_id"`
	ProjectID   string `json:"project_id"`
	WorkspaceID string `json:"workspace_id"`
	OldStatus   string `json:"old_status"`
	NewStatus   string `json:"new_status"`
	ActorID     string `json:"actor_id"`
}

// taskAssignedPayload matches the JSON enqueued by EventEnqueuer.PublishTaskAssigned.
type taskAssignedPayload struct {
	TaskID      string `json:"task_id"`
	WorkspaceID string `json:"workspace_id"`
	AssigneeID  string `json:"assignee_id"`
	Title       string `json:"title"`
}

// Worker runs Asynq handlers for task event fanout. Call Run() to start.
type Worker struct {
	srv *asynq.Server
	mux *asynq.ServeMux
	log zerolog.Logger
}

func NewWorker(redisOpt asynq.RedisClientOpt, log zerolog.Logger) *Worker {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 2,
		LogLevel:    asynq.InfoLevel,
	})
	mux := asynq.NewServeMux()
	w := &Worker{srv: srv, mux: mux, log: log}
	mux.HandleFunc(TypeTaskStatusChanged, w.handleTaskStatusChanged)
	mux.HandleFunc(TypeTaskAssigned, w.handleTaskAssigned)
	return w
}

func (w *Worker) handleTaskStatusChanged(ctx context.Context, t *asynq.Task) error {
	var p taskStatusChangedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		w.log.Error().Err(err).Msg("task status event payload invalid")
		return err
	}
	// Dev: log the event; production would push over a websocket gateway
	// subscribed per workspace channel.
	w.log.Info().
		Str("workspace_id", p.WorkspaceID).
		Str("task_id", p.TaskID).
		Str("old_status", p.OldStatus).
		Str("new_status", p.NewStatus).
		Str("actor_id", p.ActorID).
		Msg("task status changed (log only; wire a realtime gateway for push)")
	return nil
}

func (w *Worker) handleTaskAssigned(ctx context.Context, t *asynq.Task) error {
	var p taskAssignedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		w.log.Error().Err(err).Msg("task assigned event payload invalid")
		return err
	}
	w.log.Info().
		Str("workspace_id", p.WorkspaceID).
		Str("task_id", p.TaskID).
		Str("assignee_id", p.AssigneeID).
		Str("title", p.Title).
		Msg("task assigned (log only; wire a realtime gateway for push)")
	return nil
}

// Run blocks until shutdown. Use Shutdown for graceful stop.
func (w *Worker) Run() error {
	return w.srv.Run(w.mux)
}

// Shutdown stops the worker.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
