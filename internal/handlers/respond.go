package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServerError logs the real error under a correlation id and returns
// only the id to the client, never internal state.
func writeServerError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	if log == nil {
		log = slog.Default()
	}
	correlationID := uuid.New().String()
	log.Error(op, "correlation_id", correlationID, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":          "internal error",
		"correlation_id": correlationID,
	})
}
