package auth

import (
	"context"

	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
	"github.com/amirhosseinghanipour/atelier/internal/domain"
	domerrors "github.com/amirhosseinghanipour/atelier/internal/domain/errors"
)

// Authenticate turns a bearer token into a live Principal. Token claims are
// not trusted for global status: the user record is re-read so that a ban
// takes effect within one request, not one token lifetime.
type Authenticate struct {
	issuer ports.TokenIssuer
	users  ports.UserRepository
}

func NewAuthenticate(issuer ports.TokenIssuer, users ports.UserRepository) *Authenticate {
	return &Authenticate{issuer: issuer, users: users}
}

func (uc *Authenticate) Execute(ctx context.Context, bearerToken string) (domain.Principal, error) {
	p, err := uc.issuer.VerifyAccessToken(bearerToken)
	if err != nil {
		return domain.Principal{}, domerrors.ErrInvalidToken
	}
	user, err := uc.users.GetByID(ctx, p.UserID)
	if err != nil {
		return domain.Principal{}, err
	}
	if user == nil || user.GlobalStatus == domain.StatusBanned {
		return domain.Principal{}, domerrors.ErrInvalidToken
	}
	return domain.Principal{
		UserID:       user.ID,
		Email:        user.Email,
		GlobalStatus: user.GlobalStatus,
	}, nil
}
