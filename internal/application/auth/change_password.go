package auth

import (
	"context"

	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
	"github.com/amirhosseinghanipour/atelier/internal/domain"
	domerrors "github.com/amirhosseinghanipour/atelier/internal/domain/errors"
)

type ChangePasswordInput struct {
	UserID          domain.UserID
	CurrentPassword string
	NewPassword     string
}

// ChangePassword verifies the current password, stores the new hash, and
// revokes every session. A revocation failure is returned, not swallowed:
// the operation must not report success with stale sessions alive.
type ChangePassword struct {
	users    ports.UserRepository
	sessions ports.SessionRepository
	hasher   ports.PasswordHasher
}

func NewChangePassword(users ports.UserRepository, sessions ports.SessionRepository, hasher ports.PasswordHasher) *ChangePassword {
	return &ChangePassword{users: users, sessions: sessions, hasher: hasher}
}

func (uc *ChangePassword) Execute(ctx context.Context, input ChangePasswordInput) error {
	user, err := uc.users.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return domerrors.ErrUserNotFound
	}
	ok, err := uc.hasher.Verify(input.CurrentPassword, user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return domerrors.ErrWrongPassword
	}
	newHash, err := uc.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	if err := uc.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
		return err
	}
	return uc.sessions.RevokeAll(ctx, user.ID)
}
