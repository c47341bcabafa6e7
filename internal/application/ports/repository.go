package ports

import (
	"context"
	"time"

	"github.com/amirhosseinghanipour/atelier/internal/domain"
)

// UserRepository defines persistence for platform accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, userID domain.UserID) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)
	UpdatePassword(ctx context.Context, userID domain.UserID, passwordHash string) error
	UpdateStatus(ctx context.Context, userID domain.UserID, status domain.GlobalStatus) error
}

// SessionRepository is the device/session registry: one row per login,
// keyed by the opaque refresh token.
type SessionRepository interface {
	Register(ctx context.Context, session *domain.Session) error
	// FindActiveByRefreshToken returns nil for revoked and unknown tokens
	// alike, so the lookup is not a token-guessing oracle.
	FindActiveByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	// Consume atomically revokes a non-revoked session and returns it.
	// Of N concurrent calls with the same token exactly one gets the
	// session; the rest get nil.
	Consume(ctx context.Context, token string) (*domain.Session, error)
	Revoke(ctx context.Context, token string) error
	RevokeAll(ctx context.Context, userID domain.UserID) error
	ListActiveForUser(ctx context.Context, userID domain.UserID) ([]*domain.Session, error)
	// PurgeExpired deletes sessions older than the cutoff regardless of
	// revocation state. Returns the number of rows removed.
	PurgeExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

// WorkspaceRepository defines persistence for workspaces.
type WorkspaceRepository interface {
	// CreateWithOwner inserts the workspace and its OWNER membership row in
	// one transaction, so the sole-owner invariant holds from creation.
	CreateWithOwner(ctx context.Context, ws *domain.Workspace) error
	GetByID(ctx context.Context, id domain.WorkspaceID) (*domain.Workspace, error)
	ListForUser(ctx context.Context, userID domain.UserID) ([]*domain.Workspace, error)
	ListAll(ctx context.Context) ([]*domain.Workspace, error)
	UpdateName(ctx context.Context, id domain.WorkspaceID, name string) error
	Delete(ctx context.Context, id domain.WorkspaceID) error
}

// WorkspaceMemberRepository is the workspace-level membership store.
type WorkspaceMemberRepository interface {
	Add(ctx context.Context, m *domain.WorkspaceMember) error
	GetRole(ctx context.Context, workspaceID domain.WorkspaceID, userID domain.UserID) (domain.WorkspaceRole, bool, error)
	IsMember(ctx context.Context, workspaceID domain.WorkspaceID, userID domain.UserID) (bool, error)
	UpdateRole(ctx context.Context, workspaceID domain.WorkspaceID, userID domain.UserID, role domain.WorkspaceRole) error
	Remove(ctx context.Context, workspaceID domain.WorkspaceID, userID domain.UserID) error
	ListMembers(ctx context.Context, workspaceID domain.WorkspaceID) ([]*domain.MemberRecord, error)
}

// ProjectRepository defines persistence for projects.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id domain.ProjectID) (*domain.Project, error)
	ListByWorkspace(ctx context.Context, workspaceID domain.WorkspaceID) ([]*domain.Project, error)
	Update(ctx context.Context, id domain.ProjectID, name, description string) error
	Delete(ctx context.Context, id domain.ProjectID) error
}

// ProjectMemberRepository is the project-level membership store, structurally
// identical to the workspace one.
type ProjectMemberRepository interface {
	Add(ctx context.Context, m *domain.ProjectMember) error
	GetRole(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (domain.ProjectRole, bool, error)
	IsMember(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (bool, error)
	UpdateRole(ctx context.Context, projectID domain.ProjectID, userID domain.UserID, role domain.ProjectRole) error
	Remove(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) error
	ListMembers(ctx context.Context, projectID domain.ProjectID) ([]*domain.ProjectMemberRecord, error)
}

// TaskRepository defines persistence for tasks.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id domain.TaskID) (*domain.Task, error)
	ListByProject(ctx context.Context, projectID domain.ProjectID) ([]*domain.Task, error)
	ListAssignedTo(ctx context.Context, userID domain.UserID) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	UpdateStatus(ctx context.Context, id domain.TaskID, status domain.TaskStatus) error
	Delete(ctx context.Context, id domain.TaskID) error
}
