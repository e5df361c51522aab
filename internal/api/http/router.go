package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"cabinfolio-backend/internal/security"
)

// NewRouter wires all owner-facing routes. Everything under /api
// requires a valid owner bearer token.
func NewRouter(bookings *BookingHandler, accounting *AccountingHandler, tokens security.TokenManager) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestIDMiddleware)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(AuthMiddleware(tokens))

	api.HandleFunc("/bookings", bookings.CreateOwnerBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/cancel", bookings.CancelOwnerBooking).Methods(http.MethodPost)
	api.HandleFunc("/allowance", bookings.GetAllowance).Methods(http.MethodGet)
	api.HandleFunc("/properties/{id}/availability", bookings.GetAvailability).Methods(http.MethodGet)

	api.HandleFunc("/accounting/connection", accounting.Connect).Methods(http.MethodPost)
	api.HandleFunc("/accounting/connection", accounting.Status).Methods(http.MethodGet)
	api.HandleFunc("/accounting/connection", accounting.Disconnect).Methods(http.MethodDelete)

	return r
}
