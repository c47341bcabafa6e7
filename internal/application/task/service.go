package task

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/amirhosseinghanipour/atelier/internal/application/authz"
	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
	"github.com/amirhosseinghanipour/atelier/internal/domain"
	domerrors "github.com/amirhosseinghanipour/atelier/internal/domain/errors"
)

// Service implements task operations. Status-changing mutations publish a
// task-status-changed event scoped to the parent workspace and emit an
// audit record; new assignments publish one task-assigned event per user.
// Event and audit delivery are best effort and never fail the mutation
// (publishers log their own failures).
type Service struct {
	tasks     ports.TaskRepository
	projects  ports.ProjectRepository
	wsMembers ports.WorkspaceMemberRepository
	evaluator *authz.Evaluator
	events    ports.EventPublisher
	audit     ports.WebhookEmitter
}

func NewService(tasks ports.TaskRepository, projects ports.ProjectRepository, wsMembers ports.WorkspaceMemberRepository, evaluator *authz.Evaluator, events ports.EventPublisher, audit ports.WebhookEmitter) *Service {
	return &Service{
		tasks:     tasks,
		projects:  projects,
		wsMembers: wsMembers,
		evaluator: evaluator,
		events:    events,
		audit:     audit,
	}
}

type CreateInput struct {
	ProjectID     domain.ProjectID
	Title         string
	Description   string
	AssignedToIDs []domain.UserID
}

func (s *Service) Create(ctx context.Context, actor domain.Principal, input CreateInput) (*domain.Task, error) {
	p, err := s.loadProject(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Authorize(ctx, actor, authz.Target{WorkspaceID: p.WorkspaceID, ProjectID: &p.ID}, authz.CreateTask); err != nil {
		return nil, err
	}
	if err := s.checkAssignees(ctx, p.WorkspaceID, input.AssignedToIDs); err != nil {
		return nil, err
	}
	now := time.Now()
	t := &domain.Task{
		ID:            domain.NewTaskID(uuid.New()),
		Title:         input.Title,
		Description:   input.Description,
		Status:        domain.TaskTodo,
		ProjectID:     input.ProjectID,
		CreatedByID:   actor.UserID,
		AssignedToIDs: input.AssignedToIDs,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	s.publishAssignments(ctx, t, p.WorkspaceID, nil)
	return t, nil
}

func (s *Service) Get(ctx context.Context, actor domain.Principal, id domain.TaskID) (*domain.Task, error) {
	t, p, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Authorize(ctx, actor, authz.Target{WorkspaceID: p.WorkspaceID, ProjectID: &p.ID}, authz.ReadTasks); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) ListByProject(ctx context.Context, actor domain.Principal, projectID domain.ProjectID) ([]*domain.Task, error) {
	p, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Authorize(ctx, actor, authz.Target{WorkspaceID: p.WorkspaceID, ProjectID: &p.ID}, authz.ReadTasks); err != nil {
		return nil, err
	}
	return s.tasks.ListByProject(ctx, projectID)
}

// ListMine returns the actor's assigned tasks across all projects.
func (s *Service) ListMine(ctx context.Context, actor domain.Principal) ([]*domain.Task, error) {
	if actor.GlobalStatus == domain.StatusBanned {
		return nil, domerrors.ErrBanned
	}
	return s.tasks.ListAssignedTo(ctx, actor.UserID)
}

type UpdateInput struct {
	Title         *string
	Description   *string
	Status        *domain.TaskStatus
	AssignedToIDs *[]domain.UserID
}

func (s *Service) Update(ctx context.Context, actor domain.Principal, id domain.TaskID, input UpdateInput) (*domain.Task, error) {
	t, p, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Authorize(ctx, actor, authz.Target{WorkspaceID: p.WorkspaceID, ProjectID: &p.ID, Task: t}, authz.UpdateTask); err != nil {
		return nil, err
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, domerrors.ErrInvalidStatus
	}
	if input.AssignedToIDs != nil {
		if err := s.checkAssignees(ctx, p.WorkspaceID, *input.AssignedToIDs); err != nil {
			return nil, err
		}
	}

	oldStatus := t.Status
	oldAssigned := t.AssignedToIDs
	if input.Title != nil {
		t.Title = *input.Title
	}
	if input.Description != nil {
		t.Description = *input.Description
	}
	if input.Status != nil {
		t.Status = *input.Status
	}
	if input.AssignedToIDs != nil {
		t.AssignedToIDs = *input.AssignedToIDs
	}
	t.UpdatedAt = time.Now()
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}

	s.publishAssignments(ctx, t, p.WorkspaceID, oldAssigned)
	if t.Status != oldStatus {
		s.publishStatusChange(ctx, t, p.WorkspaceID, oldStatus, actor.UserID)
	}
	return t, nil
}

func (s *Service) UpdateStatus(ctx context.Context, actor domain.Principal, id domain.TaskID, status domain.TaskStatus) (*domain.Task, error) {
	if !status.Valid() {
		return nil, domerrors.ErrInvalidStatus
	}
	t, p, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Authorize(ctx, actor, authz.Target{WorkspaceID: p.WorkspaceID, ProjectID: &p.ID, Task: t}, authz.UpdateTaskStatus); err != nil {
		return nil, err
	}
	oldStatus := t.Status
	if err := s.tasks.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	t.Status = status
	if status != oldStatus {
		s.publishStatusChange(ctx, t, p.WorkspaceID, oldStatus, actor.UserID)
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, actor domain.Principal, id domain.TaskID) error {
	t, p, err := s.loadTask(ctx, id)
	if err != nil {
		return err
	}
	if err := s.evaluator.Authorize(ctx, actor, authz.Target{WorkspaceID: p.WorkspaceID, ProjectID: &p.ID, Task: t}, authz.DeleteTask); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, id)
}

// checkAssignees requires every assignee to be a workspace member at
// assignment time.
func (s *Service) checkAssignees(ctx context.Context, workspaceID domain.WorkspaceID, assignees []domain.UserID) error {
	for _, userID := range assignees {
		ok, err := s.wsMembers.IsMember(ctx, workspaceID, userID)
		if err != nil {
			return err
		}
		if !ok {
			return domerrors.ErrNotWorkspaceMember
		}
	}
	return nil
}

func (s *Service) publishStatusChange(ctx context.Context, t *domain.Task, workspaceID domain.WorkspaceID, oldStatus domain.TaskStatus, actorID domain.UserID) {
	if s.events != nil {
		_ = s.events.PublishTaskStatusChanged(ctx, ports.TaskStatusChanged{
			TaskID:      t.ID,
			ProjectID:   t.ProjectID,
			WorkspaceID: workspaceID,
			OldStatus:   oldStatus,
			NewStatus:   t.Status,
			ActorID:     actorID,
		})
	}
	if s.audit != nil {
		_ = s.audit.Emit(ctx, ports.AuditEvent{
			Event:   "task.status_changed",
			UserID:  actorID.String(),
			Success: true,
			Detail: map[string]string{
				"task_id":      t.ID.String(),
				"project_id":   t.ProjectID.String(),
				"workspace_id": workspaceID.String(),
				"old_status":   string(oldStatus),
				"new_status":   string(t.Status),
			},
		})
	}
}

func (s *Service) publishAssignments(ctx context.Context, t *domain.Task, workspaceID domain.WorkspaceID, previous []domain.UserID) {
	if s.events == nil {
		return
	}
	seen := make(map[domain.UserID]bool, len(previous))
	for _, id := range previous {
		seen[id] = true
	}
	for _, id := range t.AssignedToIDs {
		if seen[id] {
			continue
		}
		_ = s.events.PublishTaskAssigned(ctx, ports.TaskAssigned{
			TaskID:      t.ID,
			WorkspaceID: workspaceID,
			AssigneeID:  id,
			Title:       t.Title,
		})
	}
}

func (s *Service) loadProject(ctx context.Context, id domain.ProjectID) (*domain.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domerrors.ErrProjectNotFound
	}
	return p, nil
}

func (s *Service) loadTask(ctx context.Context, id domain.TaskID) (*domain.Task, *domain.Project, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if t == nil {
		return nil, nil, domerrors.ErrTaskNotFound
	}
	p, err := s.loadProject(ctx, t.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return t, p, nil
}
