package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/amirhosseinghanipour/atelier/internal/domain"
	domerrors "github.com/amirhosseinghanipour/atelier/internal/domain/errors"
)

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return NewTokenIssuer(key, "atelier-test", "atelier-test")
}

func testPrincipal() domain.Principal {
	return domain.Principal{
		UserID:       domain.NewUserID(uuid.New()),
		Email:        "user@example.com",
		GlobalStatus: domain.StatusActive,
	}
}

func TestIssueAndVerify(t *testing.T) {
	issuer := newTestIssuer(t)
	p := testPrincipal()
	token, err := issuer.IssueAccessToken(p, 900)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	got, err := issuer.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if got.UserID != p.UserID {
		t.Errorf("user id: got %s, want %s", got.UserID, p.UserID)
	}
	if got.Email != p.Email {
		t.Errorf("email: got %s, want %s", got.Email, p.Email)
	}
	if got.GlobalStatus != domain.StatusActive {
		t.Errorf("status: got %s, want ACTIVE", got.GlobalStatus)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	issuer := newTestIssuer(t)
	token, err := issuer.IssueAccessToken(testPrincipal(), -60)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if _, err := issuer.VerifyAccessToken(token); !errors.Is(err, domerrors.ErrInvalidToken) {
		t.Errorf("expired token: got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyTamperedToken(t *testing.T) {
	issuer := newTestIssuer(t)
	token, _ := issuer.IssueAccessToken(testPrincipal(), 900)
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape")
	}
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := issuer.VerifyAccessToken(tampered); !errors.Is(err, domerrors.ErrInvalidToken) {
		t.Errorf("tampered token: got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyWrongKey(t *testing.T) {
	a := newTestIssuer(t)
	b := newTestIssuer(t)
	token, _ := a.IssueAccessToken(testPrincipal(), 900)
	if _, err := b.VerifyAccessToken(token); !errors.Is(err, domerrors.ErrInvalidToken) {
		t.Errorf("token signed by another key: got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyWrongAudience(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	a := NewTokenIssuer(key, "atelier-test", "audience-a")
	b := NewTokenIssuer(key, "atelier-test", "audience-b")
	token, _ := a.IssueAccessToken(testPrincipal(), 900)
	if _, err := b.VerifyAccessToken(token); !errors.Is(err, domerrors.ErrInvalidToken) {
		t.Errorf("wrong audience: got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	issuer := newTestIssuer(t)
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := issuer.VerifyAccessToken(tok); !errors.Is(err, domerrors.ErrInvalidToken) {
			t.Errorf("token %q: got %v, want ErrInvalidToken", tok, err)
		}
	}
}
