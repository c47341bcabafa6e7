package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
	"github.com/amirhosseinghanipour/atelier/internal/application/workspace"
	"github.com/amirhosseinghanipour/atelier/internal/domain"
	"github.com/amirhosseinghanipour/atelier/internal/infrastructure/http/middleware"
)

type WorkspaceHandler struct {
	svc      *workspace.Service
	emitter  ports.WebhookEmitter
	validate *validator.Validate
	log      zerolog.Logger
}

func NewWorkspaceHandler(svc *workspace.Service, emitter ports.WebhookEmitter, log zerolog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{svc: svc, emitter: emitter, validate: validator.New(), log: log}
}

func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	var body struct {
		Name string `json:"name" validate:"required,min=1,max=200"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	ws, err := h.svc.Create(r.Context(), principal, body.Name)
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, workspaceJSON(ws))
}

func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	list, err := h.svc.ListMine(r.Context(), principal)
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

func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	id, ok := pathUUID(r, "workspaceID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid workspace id")
		return
	}
	ws, err := h.svc.Get(r.Context(), principal, domain.NewWorkspaceID(id))
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, workspaceJSON(ws))
}

func (h *WorkspaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	id, ok := pathUUID(r, "workspaceID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid workspace id")
		return
	}
	var body struct {
		Name string `json:"name" validate:"required,min=1,max=200"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	ws, err := h.svc.Update(r.Context(), principal, domain.NewWorkspaceID(id), body.Name)
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, workspaceJSON(ws))
}

func (h *WorkspaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	id, ok := pathUUID(r, "workspaceID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid workspace id")
		return
	}
	if err := h.svc.Delete(r.Context(), principal, domain.NewWorkspaceID(id)); err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	AuditEmit(h.log, r, h.emitter, "workspace.deleted", principal.UserID.String(), true, "")
	w.WriteHeader(http.StatusNoContent)
}

func (h *WorkspaceHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	id, ok := pathUUID(r, "workspaceID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid workspace id")
		return
	}
	var body struct {
		UserID string `json:"user_id" validate:"required,uuid"`
		Role   string `json:"role" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	userID, err := parseUserID(body.UserID)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid user id")
		return
	}
	member, err := h.svc.AddMember(r.Context(), principal, domain.NewWorkspaceID(id), userID, domain.WorkspaceRole(body.Role))
	if err != nil {
		AuditEmit(h.log, r, h.emitter, "workspace.member_added", principal.UserID.String(), false, err.Error())
		writeDomainErr(w, h.log, err)
		return
	}
	AuditEmit(h.log, r, h.emitter, "workspace.member_added", principal.UserID.String(), true, "")
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"workspace_id": member.WorkspaceID.String(),
		"user_id":      member.UserID.String(),
		"role":         string(member.Role),
		"joined_at":    member.JoinedAt,
	})
}

func (h *WorkspaceHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	id, ok := pathUUID(r, "workspaceID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid workspace id")
		return
	}
	uid, ok := pathUUID(r, "userID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid user id")
		return
	}
	var body struct {
		Role string `json:"role" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	member, err := h.svc.UpdateMemberRole(r.Context(), principal, domain.NewWorkspaceID(id), domain.NewUserID(uid), domain.WorkspaceRole(body.Role))
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"workspace_id": member.WorkspaceID.String(),
		"user_id":      member.UserID.String(),
		"role":         string(member.Role),
	})
}

func (h *WorkspaceHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	id, ok := pathUUID(r, "workspaceID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid workspace id")
		return
	}
	uid, ok := pathUUID(r, "userID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid user id")
		return
	}
	if err := h.svc.RemoveMember(r.Context(), principal, domain.NewWorkspaceID(id), domain.NewUserID(uid)); err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	AuditEmit(h.log, r, h.emitter, "workspace.member_removed", principal.UserID.String(), true, "")
	w.WriteHeader(http.StatusNoContent)
}

func (h *WorkspaceHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	id, ok := pathUUID(r, "workspaceID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid workspace id")
		return
	}
	members, err := h.svc.ListMembers(r.Context(), principal, domain.NewWorkspaceID(id))
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	out := make([]map[string]interface{}, 0, len(members))
	for _, m := range members {
		out = append(out, map[string]interface{}{
			"user_id":    m.UserID.String(),
			"email":      m.Email,
			"first_name": m.FirstName,
			"last_name":  m.LastName,
			"role":       string(m.Role),
			"joined_at":  m.JoinedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func workspaceJSON(ws *domain.Workspace) map[string]interface{} {
	return map[string]interface{}{
		"id":         ws.ID.String(),
		"name":       ws.Name,
		"owner_id":   ws.OwnerID.String(),
		"created_at": ws.CreatedAt,
		"updated_at": ws.UpdatedAt,
	}
}
