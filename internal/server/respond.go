package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

// writeSuccess merges extra fields into a {"status":"success"} envelope.
func writeSuccess(w http.ResponseWriter, status int, fields map[string]any) {
	body := map[string]any{"status": "success"}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// writeError writes the {"status":"error"} envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"status": "error",
		"error":  message,
	})
}

// decodeBody decodes a JSON request body into dst, rejecting unknown junk
// bodies with a client error.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return false
	}
	return true
}
