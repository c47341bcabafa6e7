package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/amirhosseinghanipour/atelier/internal/domain"
)

// Validation limits.
const (
	MaxEmailLength    = 254
	MaxPasswordLength = 128
	MaxRefreshToken   = 1024
)

// SanitizeEmail trims and lowercases email; returns empty if invalid length.
func SanitizeEmail(email string) string {
	s := strings.TrimSpace(strings.ToLower(email))
	if len(s) > MaxEmailLength {
		return ""
	}
	return s
}

// SanitizePassword trims password; returns empty if over max length.
func SanitizePassword(password string) string {
	s := strings.TrimSpace(password)
	if len(s) > MaxPasswordLength {
		return ""
	}
	return s
}

// TruncateRefreshToken truncates token to MaxRefreshToken.
func TruncateRefreshToken(tok string) string {
	if len(tok) > MaxRefreshToken {
		return tok[:MaxRefreshToken]
	}
	return tok
}

// pathUUID parses the named chi URL param as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func parseUserID(s string) (domain.UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return domain.UserID{}, err
	}
	return domain.NewUserID(id), nil
}
