package reservations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"cabinfolio-backend/internal/domain"
	"cabinfolio-backend/internal/logger"
)

// Client is the interface to the external reservation system, the
// system of record for bookings and availability. This core only reads
// and writes bookings through it.
type Client interface {
	GetAvailability(ctx context.Context, propertyID string, from, to time.Time) ([]AvailabilityDay, error)
	GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID, reason string) (*domain.Booking, error)
}

type AvailabilityDay struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
}

type CreateBookingRequest struct {
	OwnerID      string    `json:"ownerId"`
	PropertyID   string    `json:"propertyId"`
	CheckInDate  time.Time `json:"checkInDate"`
	CheckOutDate time.Time `json:"checkOutDate"`
	GuestCount   int       `json:"guestCount"`
	BookingType  string    `json:"bookingType"`
}

type httpClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// bookingPayload is the wire shape of a booking in the reservation API.
type bookingPayload struct {
	BookingID          string     `json:"bookingId"`
	PropertyID         string     `json:"propertyId"`
	OwnerID            string     `json:"ownerId,omitempty"`
	BookingType        string     `json:"bookingType"`
	CheckInDate        string     `json:"checkInDate"`
	CheckOutDate       string     `json:"checkOutDate"`
	Status             string     `json:"status"`
	GuestCount         int        `json:"guestCount"`
	CreatedAt          time.Time  `json:"createdAt"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CancellationReason string     `json:"cancellationReason,omitempty"`
}

const dateLayout = "2006-01-02"

func (p *bookingPayload) toDomain() (*domain.Booking, error) {
	checkIn, err := time.Parse(dateLayout, p.CheckInDate)
	if err != nil {
		return nil, fmt.Errorf("parsing check-in date %q: %w", p.CheckInDate, err)
	}
	checkOut, err := time.Parse(dateLayout, p.CheckOutDate)
	if err != nil {
		return nil, fmt.Errorf("parsing check-out date %q: %w", p.CheckOutDate, err)
	}
	return &domain.Booking{
		ID:                 p.BookingID,
		PropertyID:         p.PropertyID,
		OwnerID:            p.OwnerID,
		Type:               domain.BookingType(p.BookingType),
		CheckInDate:        checkIn,
		CheckOutDate:       checkOut,
		Status:             domain.BookingStatus(p.Status),
		GuestCount:         p.GuestCount,
		CreatedAt:          p.CreatedAt,
		CancelledAt:        p.CancelledAt,
		CancellationReason: p.CancellationReason,
	}, nil
}

func (c *httpClient) GetAvailability(ctx context.Context, propertyID string, from, to time.Time) ([]AvailabilityDay, error) {
	endpoint := fmt.Sprintf("%s/properties/%s/availability?from=%s&to=%s",
		c.baseURL, url.PathEscape(propertyID), from.Format(dateLayout), to.Format(dateLayout))

	var days []AvailabilityDay
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &days, "get_availability"); err != nil {
		return nil, err
	}
	return days, nil
}

func (c *httpClient) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	endpoint := fmt.Sprintf("%s/bookings/%s", c.baseURL, url.PathEscape(bookingID))

	var payload bookingPayload
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &payload, "get_booking"); err != nil {
		return nil, err
	}
	return payload.toDomain()
}

func (c *httpClient) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	endpoint := c.baseURL + "/bookings"
	body := map[string]any{
		"ownerId":      req.OwnerID,
		"propertyId":   req.PropertyID,
		"checkInDate":  req.CheckInDate.Format(dateLayout),
		"checkOutDate": req.CheckOutDate.Format(dateLayout),
		"guestCount":   req.GuestCount,
		"bookingType":  req.BookingType,
	}

	var payload bookingPayload
	if err := c.do(ctx, http.MethodPost, endpoint, body, &payload, "create_booking"); err != nil {
		return nil, err
	}
	return payload.toDomain()
}

func (c *httpClient) CancelBooking(ctx context.Context, bookingID, reason string) (*domain.Booking, error) {
	endpoint := fmt.Sprintf("%s/bookings/%s/cancel", c.baseURL, url.PathEscape(bookingID))
	body := map[string]any{"reason": reason}

	var payload bookingPayload
	if err := c.do(ctx, http.MethodPost, endpoint, body, &payload, "cancel_booking"); err != nil {
		return nil, err
	}
	return payload.toDomain()
}

// do performs one request against the reservation API. Timeouts and 5xx
// responses surface as TransientError so callers can tell retryable
// infrastructure failures from domain errors.
func (c *httpClient) do(ctx context.Context, method, endpoint string, body any, out any, op string) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	logger.ExternalServiceCall("reservation-system", op)
	resp, err := c.http.Do(req)
	if err != nil {
		logger.ExternalServiceResult("reservation-system", op, err)
		return &domain.TransientError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		logger.ExternalServiceResult("reservation-system", op, domain.ErrBookingNotFound)
		return domain.ErrBookingNotFound
	case resp.StatusCode >= 500:
		err := fmt.Errorf("reservation system returned %d", resp.StatusCode)
		logger.ExternalServiceResult("reservation-system", op, err)
		return &domain.TransientError{Op: op, Err: err}
	case resp.StatusCode >= 400:
		err := fmt.Errorf("reservation system rejected %s with %d", op, resp.StatusCode)
		logger.ExternalServiceResult("reservation-system", op, err)
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		logger.ExternalServiceResult("reservation-system", op, err)
		return &domain.TransientError{Op: op, Err: err}
	}

	logger.ExternalServiceResult("reservation-system", op, nil)
	return nil
}
