package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/atelier/internal/application/task"
	"github.com/amirhosseinghanipour/atelier/internal/domain"
	"github.com/amirhosseinghanipour/atelier/internal/infrastructure/http/middleware"
)

type TaskHandler struct {
	svc      *task.Service
	validate *validator.Validate
	log      zerolog.Logger
}

func NewTaskHandler(svc *task.Service, log zerolog.Logger) *TaskHandler {
	return &TaskHandler{svc: svc, validate: validator.New(), log: log}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	projectID, ok := pathUUID(r, "projectID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid project id")
		return
	}
	var body struct {
		Title         string   `json:"title" validate:"required,min=1,max=500"`
		Description   string   `json:"description" validate:"max=5000"`
		AssignedToIDs []string `json:"assigned_to_ids" validate:"dive,uuid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	assignees, ok := parseUserIDs(body.AssignedToIDs)
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid assignee id")
		return
	}
	t, err := h.svc.Create(r.Context(), principal, task.CreateInput{
		ProjectID:     domain.NewProjectID(projectID),
		Title:         body.Title,
		Description:   body.Description,
		AssignedToIDs: assignees,
	})
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, taskJSON(t))
}

func (h *TaskHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	projectID, ok := pathUUID(r, "projectID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid project id")
		return
	}
	list, err := h.svc.ListByProject(r.Context(), principal, domain.NewProjectID(projectID))
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tasksJSON(list))
}

// ListMine returns tasks assigned to the caller across all projects.
func (h *TaskHandler) ListMine(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, tasksJSON(list))
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	id, ok := pathUUID(r, "taskID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid task id")
		return
	}
	t, err := h.svc.Get(r.Context(), principal, domain.NewTaskID(id))
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, taskJSON(t))
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	id, ok := pathUUID(r, "taskID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid task id")
		return
	}
	var body struct {
		Title         *string   `json:"title" validate:"omitempty,min=1,max=500"`
		Description   *string   `json:"description" validate:"omitempty,max=5000"`
		Status        *string   `json:"status"`
		AssignedToIDs *[]string `json:"assigned_to_ids" validate:"omitempty,dive,uuid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	input := task.UpdateInput{
		Title:       body.Title,
		Description: body.Description,
	}
	if body.Status != nil {
		status := domain.TaskStatus(*body.Status)
		input.Status = &status
	}
	if body.AssignedToIDs != nil {
		assignees, ok := parseUserIDs(*body.AssignedToIDs)
		if !ok {
			writeErr(w, http.StatusBadRequest, "", "invalid assignee id")
			return
		}
		input.AssignedToIDs = &assignees
	}
	t, err := h.svc.Update(r.Context(), principal, domain.NewTaskID(id), input)
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, taskJSON(t))
}

func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	id, ok := pathUUID(r, "taskID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid task id")
		return
	}
	var body struct {
		Status string `json:"status" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	t, err := h.svc.UpdateStatus(r.Context(), principal, domain.NewTaskID(id), domain.TaskStatus(body.Status))
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, taskJSON(t))
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	id, ok := pathUUID(r, "taskID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid task id")
		return
	}
	if err := h.svc.Delete(r.Context(), principal, domain.NewTaskID(id)); err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseUserIDs(raw []string) ([]domain.UserID, bool) {
	out := make([]domain.UserID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, false
		}
		out = append(out, domain.NewUserID(id))
	}
	return out, true
}

func taskJSON(t *domain.Task) map[string]interface{} {
	assignees := make([]string, 0, len(t.AssignedToIDs))
	for _, id := range t.AssignedToIDs {
		assignees = append(assignees, id.String())
	}
	return map[string]interface{}{
		"id":              t.ID.String(),
		"title":           t.Title,
		"description":     t.Description,
		"status":          string(t.Status),
		"project_id":      t.ProjectID.String(),
		"created_by_id":   t.CreatedByID.String(),
		"assigned_to_ids": assignees,
		"created_at":      t.CreatedAt,
		"updated_at":      t.UpdatedAt,
	}
}

func tasksJSON(list []*domain.Task) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(list))
	for _, t := range list {
		out = append(out, taskJSON(t))
	}
	return out
}
