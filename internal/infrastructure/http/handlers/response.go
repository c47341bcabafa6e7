package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	domerrors "github.com/amirhosseinghanipour/atelier/internal/domain/errors"
)

// writeErr sends JSON { "error": message, "code": errCode }. If errCode is
// empty, a default is derived from the HTTP status.
func writeErr(w http.ResponseWriter, code int, errCode string, message string) {
	if errCode == "" {
		errCode = defaultErrCode(code)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": errCode})
}

func defaultErrCode(httpCode int) string {
	switch httpCode {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusForbidden:
		return ErrCodeForbidden
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusTooManyRequests:
		return ErrCodeAccountLocked
	default:
		return ErrCodeInternal
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainErr maps a domain sentinel to its HTTP status. Anything outside
// the taxonomy is logged and collapsed to a plain 500: internals (including a
// corrupt stored hash) are never detailed to the caller.
func writeDomainErr(w http.ResponseWriter, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, domerrors.ErrInvalidCredentials):
		writeErr(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, err.Error())
	case errors.Is(err, domerrors.ErrBanned):
		writeErr(w, http.StatusUnauthorized, ErrCodeAccountBanned, err.Error())
	case errors.Is(err, domerrors.ErrInvalidToken):
		writeErr(w, http.StatusUnauthorized, ErrCodeInvalidToken, err.Error())
	case errors.Is(err, domerrors.ErrAccessDenied),
		errors.Is(err, domerrors.ErrAdminRequired):
		writeErr(w, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case errors.Is(err, domerrors.ErrUserNotFound),
		errors.Is(err, domerrors.ErrWorkspaceNotFound),
		errors.Is(err, domerrors.ErrProjectNotFound),
		errors.Is(err, domerrors.ErrTaskNotFound),
		errors.Is(err, domerrors.ErrMemberNotFound):
		writeErr(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, domerrors.ErrUserExists),
		errors.Is(err, domerrors.ErrAlreadyMember):
		writeErr(w, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, domerrors.ErrInvalidRole),
		errors.Is(err, domerrors.ErrInvalidStatus),
		errors.Is(err, domerrors.ErrOwnerImmutable),
		errors.Is(err, domerrors.ErrNotWorkspaceMember),
		errors.Is(err, domerrors.ErrWrongPassword):
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}
