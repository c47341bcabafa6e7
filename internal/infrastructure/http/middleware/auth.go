package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/amirhosseinghanipour/atelier/internal/application/auth"
)

// AuthValidator verifies the bearer token, re-checks the account against the
// user store, and sets the principal in context (see PrincipalFromContext).
// A banned account is rejected here even if its access token is still valid.
type AuthValidator struct {
	authenticate *auth.Authenticate
}

func NewAuthValidator(authenticate *auth.Authenticate) *AuthValidator {
	return &AuthValidator{authenticate: authenticate}
}

func (m *AuthValidator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			unauthorized(w, "missing or invalid authorization")
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		principal, err := m.authenticate.Execute(r.Context(), token)
		if err != nil {
			unauthorized(w, "invalid token")
			return
		}
		ctx := WithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": "unauthorized"})
}
