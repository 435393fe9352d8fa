package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// fallbackError is served when a response value cannot be marshaled.
// It is a fixed literal of the models.APIResponse envelope so the
// fallback itself can never fail to encode.
const fallbackError = `{"status":"error","message":"Internal server error"}`

// writeJSONResponse marshals the envelope before touching the
// ResponseWriter, so an encoding failure can still downgrade the
// status code to 500 instead of sending a broken body after headers.
func writeJSONResponse(w http.ResponseWriter, statusCode int, response interface{}) {
	body, err := json.Marshal(response)
	if err != nil {
		slog.Error("Server.writeJSONResponse: failed to marshal response", "error", err)
		body = []byte(fallbackError)
		statusCode = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		slog.Error("Server.writeJSONResponse: failed to write response", "error", err)
	}
}
