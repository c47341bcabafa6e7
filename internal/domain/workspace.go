package domain

import (
	"time"

	"github.com/google/uuid"
)

// WorkspaceID is a value object for workspace identity.
type WorkspaceID struct{ uuid.UUID }

// NewWorkspaceID creates a new WorkspaceID from uuid.
func NewWorkspaceID(id uuid.UUID) WorkspaceID { return WorkspaceID{UUID: id} }

// String returns the canonical string form.
func (w WorkspaceID) String() string { return w.UUID.String() }

// WorkspaceRole is the container-level trust tier.
type WorkspaceRole string

const (
	RoleOwner  WorkspaceRole = "OWNER"
	RoleMember WorkspaceRole = "MEMBER"
	RoleViewer WorkspaceRole = "VIEWER"
)

// Valid reports whether r is one of the enumerated workspace roles.
func (r WorkspaceRole) Valid() bool {
	switch r {
	case RoleOwner, RoleMember, RoleViewer:
		return true
	}
	return false
}

// Workspace is the top-level collaboration container. OwnerID always equals
// the user ID of the sole member holding RoleOwner.
type Workspace struct {
	ID        WorkspaceID
	Name      string
	OwnerID   UserID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkspaceMember links a user to a workspace with a role.
// (WorkspaceID, UserID) is unique.
type WorkspaceMember struct {
	ID          uuid.UUID
	WorkspaceID WorkspaceID
	UserID      UserID
	Role        WorkspaceRole
	JoinedAt    time.Time
}

// MemberRecord is a membership row joined with the member's identity,
// for listing. Ordered by join time ascending.
type MemberRecord struct {
	WorkspaceMember
	Email     string
	FirstName string
	LastName  string
}
