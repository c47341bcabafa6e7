package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
	"github.com/amirhosseinghanipour/atelier/internal/domain"
	domerrors "github.com/amirhosseinghanipour/atelier/internal/domain/errors"
)

type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	User         *domain.User
}

type Login struct {
	users     ports.UserRepository
	sessions  ports.SessionRepository
	hasher    ports.PasswordHasher
	issuer    ports.TokenIssuer
	lockout   ports.LoginLockoutStore
	accessExp int64
}

func NewLogin(users ports.UserRepository, sessions ports.SessionRepository, hasher ports.PasswordHasher, issuer ports.TokenIssuer, lockout ports.LoginLockoutStore, accessExp int64) *Login {
	if accessExp <= 0 {
		accessExp = DefaultAccessTokenExpiry
	}
	return &Login{
		users:     users,
		sessions:  sessions,
		hasher:    hasher,
		issuer:    issuer,
		lockout:   lockout,
		accessExp: accessExp,
	}
}

func (uc *Login) Execute(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if uc.lockout != nil {
		if locked, _ := uc.lockout.IsLocked(ctx, input.Email); locked {
			return nil, domerrors.ErrInvalidCredentials
		}
	}
	user, err := uc.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		uc.recordFailure(ctx, input.Email)
		return nil, domerrors.ErrInvalidCredentials
	}
	ok, err := uc.hasher.Verify(input.Password, user.PasswordHash)
	if err != nil {
		// Corrupted stored hash: internal failure, not a wrong password.
		return nil, err
	}
	if !ok {
		uc.recordFailure(ctx, input.Email)
		return nil, domerrors.ErrInvalidCredentials
	}
	if user.GlobalStatus == domain.StatusBanned {
		return nil, domerrors.ErrBanned
	}
	if uc.lockout != nil {
		uc.lockout.RecordSuccess(ctx, input.Email)
	}

	accessToken, err := uc.issuer.IssueAccessToken(domain.Principal{
		UserID:       user.ID,
		Email:        user.Email,
		GlobalStatus: user.GlobalStatus,
	}, uc.accessExp)
	if err != nil {
		return nil, err
	}
	refreshToken, err := newRefreshToken()
	if err != nil {
		return nil, err
	}
	session := &domain.Session{
		ID:           domain.NewSessionID(uuid.New()),
		UserID:       user.ID,
		RefreshToken: refreshToken,
		IPAddress:    input.IPAddress,
		UserAgent:    input.UserAgent,
		LoginTime:    time.Now(),
	}
	if err := uc.sessions.Register(ctx, session); err != nil {
		return nil, err
	}
	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    uc.accessExp,
		User:         user,
	}, nil
}

func (uc *Login) recordFailure(ctx context.Context, email string) {
	if uc.lockout != nil {
		uc.lockout.RecordFailure(ctx, email)
	}
}
