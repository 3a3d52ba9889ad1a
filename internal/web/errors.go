package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/andihoo/chrono/internal/app"
	"github.com/andihoo/chrono/internal/repository"
	"github.com/andihoo/chrono/internal/service"
)

var errUnauthorized = errors.New("missing or unknown bearer token")

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) (int, string) {
	var timerErr *app.TimerError
	var validationErr *app.ValidationError
	switch {
	case errors.As(err, &timerErr):
		return http.StatusConflict, string(timerErr.Code)
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, string(validationErr.Code)
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, errUnauthorized), errors.Is(err, service.ErrNotLoggedIn):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

func badRequest(msg string) error {
	return app.NewValidationError("BAD_REQUEST", "%s", msg)
}
