package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/IANDYI/maternal-dashboard-service/internal/adapters/middleware"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/domain"
	"github.com/rs/zerolog/log"
)

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, RequestID: middleware.GetRequestID(r.Context())})
}

// statusForError maps domain errors to HTTP status codes
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrPatientNotFound):
		return http.StatusNotFound, "patient not found"
	case errors.Is(err, domain.ErrInvalidMonth):
		return http.StatusBadRequest, "invalid month"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// logStructured logs one handled request with the caller's identity
// Includes: request_id, user_id, role, endpoint, status_code, duration
func logStructured(r *http.Request, endpoint string, statusCode int, duration time.Duration, err error) {
	userID, _ := middleware.GetUserID(r.Context())
	role, _ := middleware.GetRole(r.Context())

	evt := log.Info()
	if err != nil {
		evt = log.Warn().Err(err)
		if statusCode >= http.StatusInternalServerError {
			evt = log.Error().Err(err)
		}
	}

	evt.
		Str("request_id", middleware.GetRequestID(r.Context())).
		Str("user_id", userID).
		Str("role", role).
		Str("method", r.Method).
		Str("endpoint", endpoint).
		Int("status_code", statusCode).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("dashboard request")
}
