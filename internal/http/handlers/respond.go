package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wolfman30/connectient/internal/validation"
	"github.com/wolfman30/connectient/pkg/apperrors"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		return http.StatusUnprocessableEntity
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindUnauthorized:
		return http.StatusUnauthorized
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindNotification:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err with its mapped status. Validation errors carry their
// per-field messages.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	var fieldErr *validation.Error
	if errors.As(err, &fieldErr) {
		writeJSON(w, status, map[string]any{
			"error":  "validation failed",
			"fields": fieldErr.Fields,
		})
		return
	}
	jsonError(w, apperrors.MessageOf(err, http.StatusText(status)), status)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
