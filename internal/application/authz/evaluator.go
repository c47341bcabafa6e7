package authz

import (
	"context"

	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
	"github.com/amirhosseinghanipour/atelier/internal/domain"
	domerrors "github.com/amirhosseinghanipour/atelier/internal/domain/errors"
)

// Target identifies the entity scope an action applies to. WorkspaceID is
// always resolvable; ProjectID is set for project- and task-scoped actions.
// Task is set for task update actions so the assignee rule can apply.
type Target struct {
	WorkspaceID domain.WorkspaceID
	ProjectID   *domain.ProjectID
	Task        *domain.Task
}

// Evaluator is the single authorization decision point. Every entity-scoped
// use case calls Authorize instead of branching on roles locally.
type Evaluator struct {
	workspaceMembers ports.WorkspaceMemberRepository
	projectMembers   ports.ProjectMemberRepository
	observer         func(action Action, allowed bool)
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithObserver registers a callback invoked for every rule-table decision
// (metrics hook). Banned principals and store errors never reach the table
// and are not reported.
func WithObserver(fn func(action Action, allowed bool)) Option {
	return func(e *Evaluator) { e.observer = fn }
}

func NewEvaluator(workspaceMembers ports.WorkspaceMemberRepository, projectMembers ports.ProjectMemberRepository, opts ...Option) *Evaluator {
	e := &Evaluator{workspaceMembers: workspaceMembers, projectMembers: projectMembers}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Authorize resolves the principal's roles for the target and applies the
// decision table. A banned principal is rejected as unauthenticated before
// any role lookup. Admin status grants nothing here: admins hold ordinary
// memberships for entity access and only admin-flagged operations (handled
// by RequireAdmin) bypass this path.
func (e *Evaluator) Authorize(ctx context.Context, p domain.Principal, target Target, action Action) error {
	if p.GlobalStatus == domain.StatusBanned {
		return domerrors.ErrBanned
	}

	var roles Roles
	wsRole, ok, err := e.workspaceMembers.GetRole(ctx, target.WorkspaceID, p.UserID)
	if err != nil {
		return err
	}
	roles.WorkspaceRole, roles.HasWorkspaceRole = wsRole, ok

	if target.ProjectID != nil {
		projRole, ok, err := e.projectMembers.GetRole(ctx, *target.ProjectID, p.UserID)
		if err != nil {
			return err
		}
		roles.ProjectRole, roles.HasProjectRole = projRole, ok
	}
	if target.Task != nil {
		roles.ActorAssigned = target.Task.AssignedTo(p.UserID)
	}

	allowed := Allowed(action, roles)
	if e.observer != nil {
		e.observer(action, allowed)
	}
	if !allowed {
		return domerrors.ErrAccessDenied
	}
	return nil
}

// RequireAdmin gates the platform-wide administrative operations (list all
// users/workspaces, ban/unban, reset password). Banned principals are
// rejected as unauthenticated first.
func RequireAdmin(p domain.Principal) error {
	if p.GlobalStatus == domain.StatusBanned {
		return domerrors.ErrBanned
	}
	if !p.IsAdmin() {
		return domerrors.ErrAdminRequired
	}
	return nil
}
