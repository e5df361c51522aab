package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"cabinfolio-backend/internal/domain"
	"cabinfolio-backend/internal/logger"
)

type errorResponse struct {
	Error      string   `json:"error"`
	Kind       string   `json:"kind"`
	Violations []string `json:"violations,omitempty"`
	Retryable  bool     `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses. Callers
// branch on the machine-readable kind, never on message text.
func writeError(w http.ResponseWriter, err error) {
	var policyErr *domain.PolicyError
	if errors.As(err, &policyErr) {
		resp := errorResponse{Error: policyErr.Error(), Kind: "POLICY_VIOLATION"}
		for _, v := range policyErr.Violations {
			resp.Violations = append(resp.Violations, v.Error())
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	var allowanceErr *domain.InsufficientAllowanceError
	if errors.As(err, &allowanceErr) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: allowanceErr.Error(), Kind: "INSUFFICIENT_ALLOWANCE"})
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotOwnerOfBooking):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error(), Kind: "NOT_OWNER_OF_BOOKING"})
	case errors.Is(err, domain.ErrBookingAlreadyCancelled):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Kind: "BOOKING_ALREADY_CANCELLED"})
	case errors.Is(err, domain.ErrBookingNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Kind: "BOOKING_NOT_FOUND"})
	case errors.Is(err, domain.ErrNotConnected):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Kind: "NOT_CONNECTED"})
	case errors.Is(err, domain.ErrReauthorizationRequired):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error(), Kind: "REAUTHORIZATION_REQUIRED"})
	case domain.IsTransient(err):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error(), Kind: "TRANSIENT", Retryable: true})
	default:
		logger.Error("unhandled error on API", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Kind: "INTERNAL"})
	}
}
