package auth

import (
	"context"

	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
	"github.com/amirhosseinghanipour/atelier/internal/domain"
)

// ListSessions reports the caller's active sessions, one per logged-in
// device. Revoked and expired sessions are excluded.
type ListSessions struct {
	sessions ports.SessionRepository
}

func NewListSessions(sessions ports.SessionRepository) *ListSessions {
	return &ListSessions{sessions: sessions}
}

func (uc *ListSessions) Execute(ctx context.Context, userID domain.UserID) ([]*domain.Session, error) {
	return uc.sessions.ListActiveForUser(ctx, userID)
}
