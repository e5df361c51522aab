package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"cabinfolio-backend/internal/reservations"
	"cabinfolio-backend/internal/service"
)

// BookingHandler exposes the owner booking operations over HTTP.
type BookingHandler struct {
	bookings     service.BookingService
	reservations reservations.Client
}

func NewBookingHandler(bookings service.BookingService, resClient reservations.Client) *BookingHandler {
	return &BookingHandler{bookings: bookings, reservations: resClient}
}

const dateLayout = "2006-01-02"

type createBookingRequest struct {
	PropertyID   string `json:"propertyId"`
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
	GuestCount   int    `json:"guestCount"`
}

func (h *BookingHandler) CreateOwnerBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body", Kind: "BAD_REQUEST"})
		return
	}
	if req.PropertyID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "propertyId is required", Kind: "BAD_REQUEST"})
		return
	}
	checkIn, err := time.Parse(dateLayout, req.CheckInDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "checkInDate must be yyyy-mm-dd", Kind: "BAD_REQUEST"})
		return
	}
	checkOut, err := time.Parse(dateLayout, req.CheckOutDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "checkOutDate must be yyyy-mm-dd", Kind: "BAD_REQUEST"})
		return
	}

	ownerID := OwnerIDFromContext(r.Context())
	booking, err := h.bookings.CreateOwnerBooking(r.Context(), ownerID, req.PropertyID, checkIn, checkOut, req.GuestCount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

type cancelBookingResponse struct {
	Booking      any `json:"booking"`
	DaysReturned int `json:"daysReturned"`
}

func (h *BookingHandler) CancelOwnerBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := mux.Vars(r)["id"]

	var req cancelBookingRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // reason is optional
	}

	ownerID := OwnerIDFromContext(r.Context())
	result, err := h.bookings.CancelOwnerBooking(r.Context(), bookingID, ownerID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cancelBookingResponse{Booking: result.Booking, DaysReturned: result.DaysReturned})
}

func (h *BookingHandler) GetAllowance(w http.ResponseWriter, r *http.Request) {
	propertyID := r.URL.Query().Get("propertyId")
	if propertyID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "propertyId query parameter is required", Kind: "BAD_REQUEST"})
		return
	}

	ownerID := OwnerIDFromContext(r.Context())
	summary, err := h.bookings.GetAllowance(r.Context(), ownerID, propertyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *BookingHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	propertyID := mux.Vars(r)["id"]
	from, err := time.Parse(dateLayout, r.URL.Query().Get("from"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "from must be yyyy-mm-dd", Kind: "BAD_REQUEST"})
		return
	}
	to, err := time.Parse(dateLayout, r.URL.Query().Get("to"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "to must be yyyy-mm-dd", Kind: "BAD_REQUEST"})
		return
	}

	days, err := h.reservations.GetAvailability(r.Context(), propertyID, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}
