package auth

import (
	"context"

	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
	"github.com/amirhosseinghanipour/atelier/internal/domain"
)

// Logout revokes the presented refresh token. Revocation is idempotent:
// revoking an unknown or already-revoked token succeeds silently.
type Logout struct {
	sessions ports.SessionRepository
}

func NewLogout(sessions ports.SessionRepository) *Logout {
	return &Logout{sessions: sessions}
}

func (uc *Logout) Execute(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return uc.sessions.Revoke(ctx, refreshToken)
}

// ExecuteAll revokes every session the user owns (logout everywhere).
func (uc *Logout) ExecuteAll(ctx context.Context, userID domain.UserID) error {
	return uc.sessions.RevokeAll(ctx, userID)
}
