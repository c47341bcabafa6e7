package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserID is a value object for user identity.
type UserID struct{ uuid.UUID }

// NewUserID creates a new UserID from uuid.
func NewUserID(id uuid.UUID) UserID { return UserID{UUID: id} }

// String returns the canonical string form.
func (u UserID) String() string { return u.UUID.String() }

// GlobalStatus is the platform-wide account state.
type GlobalStatus string

const (
	StatusActive GlobalStatus = "ACTIVE"
	StatusBanned GlobalStatus = "BANNED"
	StatusAdmin  GlobalStatus = "ADMIN"
)

// Valid reports whether s is one of the enumerated statuses.
func (s GlobalStatus) Valid() bool {
	switch s {
	case StatusActive, StatusBanned, StatusAdmin:
		return true
	}
	return false
}

// User is a platform account. PasswordHash never leaves the server.
type User struct {
	ID           UserID
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	GlobalStatus GlobalStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal is the authenticated identity attached to a request after
// token verification and the liveness re-check against the user record.
type Principal struct {
	UserID       UserID
	Email        string
	GlobalStatus GlobalStatus
}

// IsAdmin reports whether the principal may perform admin-flagged operations.
// Admin status does not bypass workspace or project role checks.
func (p Principal) IsAdmin() bool { return p.GlobalStatus == StatusAdmin }
