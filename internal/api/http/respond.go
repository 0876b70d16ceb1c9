package http

import (
	"encoding/json"
	"net/http"

	"sendbox-backend/internal/domain"
	"sendbox-backend/internal/logger"
)

// errorResponse is the failure shape of every endpoint.
type errorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Details string `json:"errorDetails,omitempty"`
}

var kindStatus = map[domain.ErrorKind]int{
	domain.ErrUnauthenticated:      http.StatusUnauthorized,
	domain.ErrUnauthorized:         http.StatusForbidden,
	domain.ErrKycRequired:          http.StatusForbidden,
	domain.ErrNotFound:             http.StatusNotFound,
	domain.ErrIllegalTransition:    http.StatusConflict,
	domain.ErrInsufficientCapacity: http.StatusConflict,
	domain.ErrValidation:           http.StatusUnprocessableEntity,
	domain.ErrTokenMismatch:        http.StatusUnprocessableEntity,
	domain.ErrAmountCapExceeded:    http.StatusUnprocessableEntity,
	domain.ErrRateLimited:          http.StatusTooManyRequests,
	domain.ErrPaymentUnavailable:   http.StatusServiceUnavailable,
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

func writeError(w http.ResponseWriter, err error) {
	de, ok := err.(*domain.Error)
	if !ok {
		de = domain.Internal(err)
	}

	status, found := kindStatus[de.Kind]
	if !found {
		status = http.StatusInternalServerError
	}

	resp := errorResponse{Error: de.Message, Field: de.Field}
	if status == http.StatusInternalServerError {
		// Internals stay in the logs, not on the wire.
		logger.Error("Request failed", "error", de.Details)
		resp.Error = "internal error"
	} else {
		resp.Details = de.Details
	}

	writeJSON(w, status, resp)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}
