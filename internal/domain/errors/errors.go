package errors

import "errors"

// Sentinel errors for handlers to map to HTTP status. Use cases return these
// untouched; internal detail stays server-side.
var (
	// Unauthenticated class. The caller never learns whether a token was
	// expired, forged, revoked, or unknown.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrBanned             = errors.New("account is banned")
	ErrInvalidToken       = errors.New("invalid or expired token")

	// Unauthorized class: authenticated but insufficient role.
	ErrAccessDenied  = errors.New("access denied")
	ErrAdminRequired = errors.New("admin privileges required")

	// NotFound class. Existence is checked before membership, so an
	// unauthenticated-but-valid caller can distinguish absent from hidden.
	ErrUserNotFound      = errors.New("user not found")
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrProjectNotFound   = errors.New("project not found")
	ErrTaskNotFound      = errors.New("task not found")
	ErrMemberNotFound    = errors.New("not a member")

	// Conflict class.
	ErrUserExists    = errors.New("user already exists")
	ErrAlreadyMember = errors.New("already a member")

	// Validation class.
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrOwnerImmutable     = errors.New("workspace owner membership cannot be changed")
	ErrNotWorkspaceMember = errors.New("user is not a member of the parent workspace")
	ErrWrongPassword      = errors.New("current password is incorrect")

	// Internal class: corrupted stored state. Mapped to a generic 500;
	// detail is logged, never returned.
	ErrCorruptHash = errors.New("stored password hash is malformed")
)
