package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

const (
	errValidation = "validation"
	errNotFound   = "not_found"
	errRateLimit  = "rate_limited"
	errInternal   = "internal"
)

// writeError logs the failure and sends it as JSON. Client errors log at
// debug, everything else at error.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, kind string, status int, err error) {
	logCtx := logger.With(
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
		"error_type", kind,
		"status_code", status,
	)
	if status >= http.StatusInternalServerError {
		logCtx.Error("request failed", "error", err)
	} else {
		logCtx.Debug("request rejected", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   kind,
		Message: err.Error(),
		Code:    status,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}
