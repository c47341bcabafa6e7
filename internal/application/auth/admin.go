package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"

	"github.com/amirhosseinghanipour/atelier/internal/application/authz"
	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
	"github.com/amirhosseinghanipour/atelier/internal/domain"
	domerrors "github.com/amirhosseinghanipour/atelier/internal/domain/errors"
)

// AdminUsers bundles the platform-wide administrative user operations:
// ban/unban, forced password reset, and listing. Every entry point checks
// the acting principal's global status itself; handlers only map errors.
type AdminUsers struct {
	users    ports.UserRepository
	sessions ports.SessionRepository
	hasher   ports.PasswordHasher
}

func NewAdminUsers(users ports.UserRepository, sessions ports.SessionRepository, hasher ports.PasswordHasher) *AdminUsers {
	return &AdminUsers{users: users, sessions: sessions, hasher: hasher}
}

// Ban marks the target BANNED and revokes all their sessions. The status
// flip comes first: even if revocation fails, the refresh liveness check
// already blocks the account, and the error still aborts the operation so
// the caller never sees a false success.
func (uc *AdminUsers) Ban(ctx context.Context, actor domain.Principal, userID domain.UserID) error {
	if err := authz.RequireAdmin(actor); err != nil {
		return err
	}
	target, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if target == nil {
		return domerrors.ErrUserNotFound
	}
	if err := uc.users.UpdateStatus(ctx, userID, domain.StatusBanned); err != nil {
		return err
	}
	return uc.sessions.RevokeAll(ctx, userID)
}

func (uc *AdminUsers) Unban(ctx context.Context, actor domain.Principal, userID domain.UserID) error {
	if err := authz.RequireAdmin(actor); err != nil {
		return err
	}
	target, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if target == nil {
		return domerrors.ErrUserNotFound
	}
	return uc.users.UpdateStatus(ctx, userID, domain.StatusActive)
}

// ResetPassword sets a random temporary password on the target account and
// revokes all its sessions. The temporary password is returned to the admin
// for out-of-band delivery.
func (uc *AdminUsers) ResetPassword(ctx context.Context, actor domain.Principal, userID domain.UserID) (string, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return "", err
	}
	target, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if target == nil {
		return "", domerrors.ErrUserNotFound
	}
	tempPassword, err := newTempPassword()
	if err != nil {
		return "", err
	}
	hash, err := uc.hasher.Hash(tempPassword)
	if err != nil {
		return "", err
	}
	if err := uc.users.UpdatePassword(ctx, userID, hash); err != nil {
		return "", err
	}
	if err := uc.sessions.RevokeAll(ctx, userID); err != nil {
		return "", err
	}
	return tempPassword, nil
}

func (uc *AdminUsers) List(ctx context.Context, actor domain.Principal, limit, offset int) ([]*domain.User, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return uc.users.List(ctx, limit, offset)
}

func newTempPassword() (string, error) {
	raw := make([]byte, 12)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
