package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dedsec995/chat-backend/internal/llm"
	"github.com/dedsec995/chat-backend/internal/store"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeServiceError maps domain errors onto HTTP statuses: malformed input
// is 4xx, storage and generation failures are 5xx.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "invalid conversation ID format")
	case errors.Is(err, llm.ErrGenerationFailed):
		writeError(w, http.StatusBadGateway, "generation failed")
	case errors.Is(err, store.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
