package ports

import (
	"context"

	"github.com/amirhosseinghanipour/atelier/internal/domain"
)

// TaskStatusChanged is emitted whenever a task's status actually changes,
// scoped by workspace for fanout to interested members.
type TaskStatusChanged struct {
	TaskID      domain.TaskID
	ProjectID   domain.ProjectID
	WorkspaceID domain.WorkspaceID
	OldStatus   domain.TaskStatus
	NewStatus   domain.TaskStatus
	ActorID     domain.UserID
}

// TaskAssigned is emitted once per user newly assigned to a task.
type TaskAssigned struct {
	TaskID      domain.TaskID
	WorkspaceID domain.WorkspaceID
	AssigneeID  domain.UserID
	Title       string
}

// EventPublisher delivers task events to the external real-time notification
// collaborator. Injected explicitly; there is no process-wide bus.
type EventPublisher interface {
	PublishTaskStatusChanged(ctx context.Context, ev TaskStatusChanged) error
	PublishTaskAssigned(ctx context.Context, ev TaskAssigned) error
}
