package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/SashaDiz/real-estate-directory/internal/property/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the domain error taxonomy onto HTTP statuses. Every
// handler funnels its failures through here, so nothing crosses the
// HTTP boundary uncaught.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrImageNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUsernameTaken):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrStorage):
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
