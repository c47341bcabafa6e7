package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProjectID is a value object for project identity.
type ProjectID struct{ uuid.UUID }

// NewProjectID creates a new ProjectID from uuid.
func NewProjectID(id uuid.UUID) ProjectID { return ProjectID{UUID: id} }

// String returns the canonical string form.
func (p ProjectID) String() string { return p.UUID.String() }

// ProjectRole is the per-project trust tier, finer grained than the
// workspace role.
type ProjectRole string

const (
	RoleProjectLead   ProjectRole = "PROJECT_LEAD"
	RoleContributor   ProjectRole = "CONTRIBUTOR"
	RoleProjectViewer ProjectRole = "PROJECT_VIEWER"
)

// Valid reports whether r is one of the enumerated project roles.
func (r ProjectRole) Valid() bool {
	switch r {
	case RoleProjectLead, RoleContributor, RoleProjectViewer:
		return true
	}
	return false
}

// Project belongs to exactly one workspace.
type Project struct {
	ID          ProjectID
	Name        string
	Description string
	WorkspaceID WorkspaceID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectMember links a user to a project with a role. A project member must
// also hold workspace membership in the parent workspace (checked at mutation
// time). (ProjectID, UserID) is unique.
type ProjectMember struct {
	ID        uuid.UUID
	ProjectID ProjectID
	UserID    UserID
	Role      ProjectRole
	JoinedAt  time.Time
}

// ProjectMemberRecord is a project membership row joined with the member's
// identity, ordered by join time ascending.
type ProjectMemberRecord struct {
	ProjectMember
	Email     string
	FirstName string
	LastName  string
}
