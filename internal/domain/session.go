package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionID is a value object for session (device) identity.
type SessionID struct{ uuid.UUID }

// NewSessionID creates a new SessionID from uuid.
func NewSessionID(id uuid.UUID) SessionID { return SessionID{UUID: id} }

// String returns the canonical string form.
func (s SessionID) String() string { return s.UUID.String() }

// Session is one device record per successful login. The refresh token is an
// opaque capability: possession lets the holder mint new access tokens for
// UserID until the session is revoked. Revocation is monotonic.
type Session struct {
	ID           SessionID
	UserID       UserID
	RefreshToken string
	IPAddress    string
	UserAgent    string
	LoginTime    time.Time
	IsRevoked    bool
}
