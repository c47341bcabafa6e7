package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/atelier/internal/application/auth"
	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
	"github.com/amirhosseinghanipour/atelier/internal/application/workspace"
	"github.com/amirhosseinghanipour/atelier/internal/domain"
	"github.com/amirhosseinghanipour/atelier/internal/infrastructure/http/middleware"
)

// AdminHandler serves admin-flagged operations. Access is gated by the
// caller's global status, checked inside each use case; there is no shared
// admin secret.
type AdminHandler struct {
	adminUsers *auth.AdminUsers
	workspaces *workspace.Service
	emitter    ports.WebhookEmitter
	log        zerolog.Logger
}

func NewAdminHandler(adminUsers *auth.AdminUsers, workspaces *workspace.Service, emitter ports.WebhookEmitter, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{adminUsers: adminUsers, workspaces: workspaces, emitter: emitter, log: log}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	users, err := h.adminUsers.List(r.Context(), principal, limit, offset)
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	out := make([]map[string]interface{}, 0, len(users))
	for _, u := range users {
		out = append(out, map[string]interface{}{
			"id":            u.ID.String(),
			"email":         u.Email,
			"first_name":    u.FirstName,
			"last_name":     u.LastName,
			"global_status": string(u.GlobalStatus),
			"created_at":    u.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) ListWorkspaces(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	list, err := h.workspaces.ListAll(r.Context(), principal)
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	out := make([]map[string]interface{}, 0, len(list))
	for _, ws := range list {
		out = append(out, workspaceJSON(ws))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) BanUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	id, ok := pathUUID(r, "userID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid user id")
		return
	}
	if err := h.adminUsers.Ban(r.Context(), principal, domain.NewUserID(id)); err != nil {
		AuditEmit(h.log, r, h.emitter, "admin.ban", principal.UserID.String(), false, err.Error())
		writeDomainErr(w, h.log, err)
		return
	}
	AuditEmit(h.log, r, h.emitter, "admin.ban", principal.UserID.String(), true, "")
	writeJSON(w, http.StatusOK, map[string]string{"message": "user banned; all sessions revoked"})
}

func (h *AdminHandler) UnbanUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	id, ok := pathUUID(r, "userID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid user id")
		return
	}
	if err := h.adminUsers.Unban(r.Context(), principal, domain.NewUserID(id)); err != nil {
		AuditEmit(h.log, r, h.emitter, "admin.unban", principal.UserID.String(), false, err.Error())
		writeDomainErr(w, h.log, err)
		return
	}
	AuditEmit(h.log, r, h.emitter, "admin.unban", principal.UserID.String(), true, "")
	writeJSON(w, http.StatusOK, map[string]string{"message": "user unbanned"})
}

func (h *AdminHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	id, ok := pathUUID(r, "userID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid user id")
		return
	}
	tempPassword, err := h.adminUsers.ResetPassword(r.Context(), principal, domain.NewUserID(id))
	if err != nil {
		AuditEmit(h.log, r, h.emitter, "admin.reset_password", principal.UserID.String(), false, err.Error())
		writeDomainErr(w, h.log, err)
		return
	}
	AuditEmit(h.log, r, h.emitter, "admin.reset_password", principal.UserID.String(), true, "")
	writeJSON(w, http.StatusOK, map[string]string{
		"message":       "password reset; all sessions revoked",
		"temp_password": tempPassword,
	})
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
