package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
	"github.com/amirhosseinghanipour/atelier/internal/domain"
	domerrors "github.com/amirhosseinghanipour/atelier/internal/domain/errors"
)

type RefreshInput struct {
	RefreshToken string
	IPAddress    string
	UserAgent    string
}

type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// Refresh rotates a refresh token: the presented token is consumed
// atomically and a successor session is created. A replay of a consumed
// token fails exactly like an unknown one.
type Refresh struct {
	users     ports.UserRepository
	sessions  ports.SessionRepository
	issuer    ports.TokenIssuer
	accessExp int64
}

func NewRefresh(users ports.UserRepository, sessions ports.SessionRepository, issuer ports.TokenIssuer, accessExp int64) *Refresh {
	if accessExp <= 0 {
		accessExp = DefaultAccessTokenExpiry
	}
	return &Refresh{
		users:     users,
		sessions:  sessions,
		issuer:    issuer,
		accessExp: accessExp,
	}
}

func (uc *Refresh) Execute(ctx context.Context, input RefreshInput) (*RefreshResult, error) {
	if input.RefreshToken == "" {
		return nil, domerrors.ErrInvalidToken
	}
	// Consume is a single atomic revoke-and-return: of two concurrent
	// attempts with the same token, one wins and the other sees nil.
	old, err := uc.sessions.Consume(ctx, input.RefreshToken)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, domerrors.ErrInvalidToken
	}
	// Liveness re-check: a deleted or banned owner cannot rotate even if
	// revokeAll somehow missed this session.
	user, err := uc.users.GetByID(ctx, old.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.GlobalStatus == domain.StatusBanned {
		return nil, domerrors.ErrInvalidToken
	}

	accessToken, err := uc.issuer.IssueAccessToken(domain.Principal{
		UserID:       user.ID,
		Email:        user.Email,
		GlobalStatus: user.GlobalStatus,
	}, uc.accessExp)
	if err != nil {
		return nil, err
	}
	newToken, err := newRefreshToken()
	if err != nil {
		return nil, err
	}
	successor := &domain.Session{
		ID:           domain.NewSessionID(uuid.New()),
		UserID:       user.ID,
		RefreshToken: newToken,
		IPAddress:    input.IPAddress,
		UserAgent:    input.UserAgent,
		LoginTime:    time.Now(),
	}
	// A crash between Consume and Register burns the token without a
	// successor, which fails closed: the user logs in again.
	if err := uc.sessions.Register(ctx, successor); err != nil {
		return nil, err
	}
	return &RefreshResult{
		AccessToken:  accessToken,
		RefreshToken: newToken,
		ExpiresIn:    uc.accessExp,
	}, nil
}
