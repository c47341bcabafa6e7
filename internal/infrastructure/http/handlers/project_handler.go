package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/atelier/internal/application/project"
	"github.com/amirhosseinghanipour/atelier/internal/domain"
	"github.com/amirhosseinghanipour/atelier/internal/infrastructure/http/middleware"
)

type ProjectHandler struct {
	svc      *project.Service
	validate *validator.Validate
	log      zerolog.Logger
}

func NewProjectHandler(svc *project.Service, log zerolog.Logger) *ProjectHandler {
	return &ProjectHandler{svc: svc, validate: validator.New(), log: log}
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	wsID, ok := pathUUID(r, "workspaceID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid workspace id")
		return
	}
	var body struct {
		Name        string `json:"name" validate:"required,min=1,max=200"`
		Description string `json:"description" validate:"max=2000"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	p, err := h.svc.Create(r.Context(), principal, domain.NewWorkspaceID(wsID), body.Name, body.Description)
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, projectJSON(p))
}

func (h *ProjectHandler) ListByWorkspace(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	wsID, ok := pathUUID(r, "workspaceID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid workspace id")
		return
	}
	list, err := h.svc.ListByWorkspace(r.Context(), principal, domain.NewWorkspaceID(wsID))
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	out := make([]map[string]interface{}, 0, len(list))
	for _, p := range list {
		out = append(out, projectJSON(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	id, ok := pathUUID(r, "projectID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid project id")
		return
	}
	p, err := h.svc.Get(r.Context(), principal, domain.NewProjectID(id))
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, projectJSON(p))
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	id, ok := pathUUID(r, "projectID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid project id")
		return
	}
	var body struct {
		Name        string `json:"name" validate:"required,min=1,max=200"`
		Description string `json:"description" validate:"max=2000"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	p, err := h.svc.Update(r.Context(), principal, domain.NewProjectID(id), body.Name, body.Description)
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, projectJSON(p))
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	id, ok := pathUUID(r, "projectID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid project id")
		return
	}
	if err := h.svc.Delete(r.Context(), principal, domain.NewProjectID(id)); err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	id, ok := pathUUID(r, "projectID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid project id")
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
	member, err := h.svc.AddMember(r.Context(), principal, domain.NewProjectID(id), userID, domain.ProjectRole(body.Role))
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"project_id": member.ProjectID.String(),
		"user_id":    member.UserID.String(),
		"role":       string(member.Role),
		"joined_at":  member.JoinedAt,
	})
}

func (h *ProjectHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	id, ok := pathUUID(r, "projectID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid project id")
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
	member, err := h.svc.UpdateMemberRole(r.Context(), principal, domain.NewProjectID(id), domain.NewUserID(uid), domain.ProjectRole(body.Role))
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"project_id": member.ProjectID.String(),
		"user_id":    member.UserID.String(),
		"role":       string(member.Role),
	})
}

func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	id, ok := pathUUID(r, "projectID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid project id")
		return
	}
	uid, ok := pathUUID(r, "userID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid user id")
		return
	}
	if err := h.svc.RemoveMember(r.Context(), principal, domain.NewProjectID(id), domain.NewUserID(uid)); err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProjectHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	id, ok := pathUUID(r, "projectID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid project id")
		return
	}
	members, err := h.svc.ListMembers(r.Context(), principal, domain.NewProjectID(id))
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

func projectJSON(p *domain.Project) map[string]interface{} {
	return map[string]interface{}{
		"id":           p.ID.String(),
		"name":         p.Name,
		"description":  p.Description,
		"workspace_id": p.WorkspaceID.String(),
		"created_at":   p.CreatedAt,
		"updated_at":   p.UpdatedAt,
	}
}
