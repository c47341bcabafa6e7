package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
	"github.com/amirhosseinghanipour/atelier/internal/infrastructure/http/middleware"
)

// UsersHandler serves the authenticated user's own record.
type UsersHandler struct {
	users ports.UserRepository
	log   zerolog.Logger
}

func NewUsersHandler(users ports.UserRepository, log zerolog.Logger) *UsersHandler {
	return &UsersHandler{users: users, log: log}
}

func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	user, err := h.users.GetByID(r.Context(), principal.UserID)
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	if user == nil {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":            user.ID.String(),
		"email":         user.Email,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"global_status": string(user.GlobalStatus),
		"created_at":    user.CreatedAt,
	})
}
