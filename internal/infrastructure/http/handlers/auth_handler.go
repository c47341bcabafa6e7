package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/atelier/internal/application/auth"
	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
	"github.com/amirhosseinghanipour/atelier/internal/infrastructure/http/middleware"
)

type AuthHandler struct {
	register       *auth.RegisterUser
	login          *auth.Login
	refresh        *auth.Refresh
	logout         *auth.Logout
	changePassword *auth.ChangePassword
	sessions       *auth.ListSessions
	emitter        ports.WebhookEmitter
	validate       *validator.Validate
	log            zerolog.Logger
}

func NewAuthHandler(register *auth.RegisterUser, login *auth.Login, refresh *auth.Refresh, logout *auth.Logout, changePassword *auth.ChangePassword, sessions *auth.ListSessions, emitter ports.WebhookEmitter, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		register:       register,
		login:          login,
		refresh:        refresh,
		logout:         logout,
		changePassword: changePassword,
		sessions:       sessions,
		emitter:        emitter,
		validate:       validator.New(),
		log:            log,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email     string `json:"email" validate:"required,email,max=254"`
		Password  string `json:"password" validate:"required,min=8,max=128"`
		FirstName string `json:"first_name" validate:"max=100"`
		LastName  string `json:"last_name" validate:"max=100"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	email := SanitizeEmail(body.Email)
	password := SanitizePassword(body.Password)
	if email == "" || password == "" {
		writeErr(w, http.StatusBadRequest, "", "invalid email or password length")
		return
	}
	result, err := h.register.Execute(r.Context(), auth.RegisterUserInput{
		Email:     email,
		Password:  password,
		FirstName: body.FirstName,
		LastName:  body.LastName,
	})
	if err != nil {
		AuditEmit(h.log, r, h.emitter, "user.register", "", false, err.Error())
		middleware.RecordAuthAttempt("register", false)
		writeDomainErr(w, h.log, err)
		return
	}
	AuditEmit(h.log, r, h.emitter, "user.register", result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("register", true)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":         result.User.ID.String(),
		"email":      result.User.Email,
		"first_name": result.User.FirstName,
		"last_name":  result.User.LastName,
		"created_at": result.User.CreatedAt,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email" validate:"required,email,max=254"`
		Password string `json:"password" validate:"required,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	email := SanitizeEmail(body.Email)
	password := SanitizePassword(body.Password)
	if email == "" || password == "" {
		writeErr(w, http.StatusBadRequest, "", "invalid email or password length")
		return
	}
	result, err := h.login.Execute(r.Context(), auth.LoginInput{
		Email:     email,
		Password:  password,
		IPAddress: getClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		AuditEmit(h.log, r, h.emitter, "user.login", "", false, err.Error())
		middleware.RecordAuthAttempt("login", false)
		writeDomainErr(w, h.log, err)
		return
	}
	AuditEmit(h.log, r, h.emitter, "user.login", result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("login", true)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"expires_in":    result.ExpiresIn,
		"user": map[string]interface{}{
			"id":    result.User.ID.String(),
			"email": result.User.Email,
		},
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token" validate:"required,max=1024"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	result, err := h.refresh.Execute(r.Context(), auth.RefreshInput{
		RefreshToken: TruncateRefreshToken(body.RefreshToken),
		IPAddress:    getClientIP(r),
		UserAgent:    r.UserAgent(),
	})
	if err != nil {
		AuditLog(h.log, r, "auth.refresh", "", false, err.Error())
		middleware.RecordAuthAttempt("refresh", false)
		writeDomainErr(w, h.log, err)
		return
	}
	AuditLog(h.log, r, "auth.refresh", "", true, "")
	middleware.RecordAuthAttempt("refresh", true)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"expires_in":    result.ExpiresIn,
	})
}

// Logout revokes the presented refresh token. Idempotent: revoking an
// already-revoked or unknown token still returns 204.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if err := h.logout.Execute(r.Context(), TruncateRefreshToken(body.RefreshToken)); err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LogoutAll revokes every session of the authenticated user.
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	if err := h.logout.ExecuteAll(r.Context(), principal.UserID); err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	AuditEmit(h.log, r, h.emitter, "auth.logout_all", principal.UserID.String(), true, "")
	w.WriteHeader(http.StatusNoContent)
}

// Sessions lists the authenticated user's active sessions, one per
// logged-in device. Refresh tokens are never echoed back.
func (h *AuthHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	list, err := h.sessions.Execute(r.Context(), principal.UserID)
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	out := make([]map[string]interface{}, 0, len(list))
	for _, s := range list {
		out = append(out, map[string]interface{}{
			"id":         s.ID.String(),
			"ip_address": s.IPAddress,
			"user_agent": s.UserAgent,
			"login_time": s.LoginTime,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": out})
}

func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	var body struct {
		CurrentPassword string `json:"current_password" validate:"required,max=128"`
		NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	newPassword := SanitizePassword(body.NewPassword)
	if newPassword == "" {
		writeErr(w, http.StatusBadRequest, "", "invalid password length")
		return
	}
	err := h.changePassword.Execute(r.Context(), auth.ChangePasswordInput{
		UserID:          principal.UserID,
		CurrentPassword: body.CurrentPassword,
		NewPassword:     newPassword,
	})
	if err != nil {
		AuditEmit(h.log, r, h.emitter, "auth.update_password", principal.UserID.String(), false, err.Error())
		writeDomainErr(w, h.log, err)
		return
	}
	AuditEmit(h.log, r, h.emitter, "auth.update_password", principal.UserID.String(), true, "")
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated; all sessions revoked"})
}
