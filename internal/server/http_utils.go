package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type jsonError struct {
	Error string `json:"error"`
}

// sendJSON writes v with the given status, logging (not masking) encode
// failures.
func sendJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode json response failed", "error", err)
	}
}

func sendJSONError(w http.ResponseWriter, message string, status int, logger *slog.Logger) {
	sendJSON(w, status, jsonError{Error: message}, logger)
}
