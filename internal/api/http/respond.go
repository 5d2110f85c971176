package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"podpal-backend/internal/domain"
	"podpal-backend/internal/logger"
)

type errorResponse struct {
	Error *domain.RecruitmentError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

// writeError maps the workflow's closed error set to client-error statuses.
// Anything outside that set is a server fault.
func writeError(w http.ResponseWriter, err error) {
	var re *domain.RecruitmentError
	if errors.As(err, &re) {
		var status int
		switch re.Kind {
		case domain.ErrKindNotFound:
			status = http.StatusNotFound
		case domain.ErrKindConflict:
			status = http.StatusConflict
		case domain.ErrKindPermissionDenied:
			status = http.StatusForbidden
		default:
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, errorResponse{Error: re})
		return
	}

	logger.Error("Internal error", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
