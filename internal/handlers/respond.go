package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"wellbalance/internal/middleware"
	"wellbalance/internal/services"
)

// ErrorResponse is the body of every non-2xx JSON answer.
type ErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, fields ...string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Fields: fields})
}

// writeServiceError maps service errors onto status codes. Anything that is
// not a known sentinel or validation error is logged and answered with 500.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error, msg string) {
	var verr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "Not authenticated")
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Msg, verr.Fields...)
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	default:
		logger.Error(msg, zap.Error(err))
		writeError(w, http.StatusInternalServerError, msg)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}

// currentUser is "" for anonymous requests.
func currentUser(r *http.Request) string {
	id, _ := middleware.UserID(r.Context())
	return id
}
