package service

import (
	"context"
	"time"

	"cabinfolio-backend/internal/domain"
)

type AllowanceSummary struct {
	DaysUsed         int  `json:"daysUsed"`
	DaysLimit        int  `json:"daysLimit"`
	DaysRemaining    int  `json:"daysRemaining"`
	Year             int  `json:"year"`
	CloseoutRequired bool `json:"closeoutRequired"`
}

// AllowanceService is the booking allowance ledger: per-owner,
// per-property annual night quotas with atomic reserve/release.
type AllowanceService interface {
	GetAllowance(ctx context.Context, ownerID, propertyID string, at time.Time) (*AllowanceSummary, error)
	Reserve(ctx context.Context, ownerID, propertyID string, at time.Time, nights int) (*AllowanceSummary, error)
	Release(ctx context.Context, ownerID, propertyID string, at time.Time, nights int) (*AllowanceSummary, error)
}

type CancellationResult struct {
	Booking      *domain.Booking
	DaysReturned int
}

// BookingService orchestrates owner bookings against policy, allowance
// and the external reservation system.
type BookingService interface {
	CreateOwnerBooking(ctx context.Context, ownerID, propertyID string, checkIn, checkOut time.Time, guests int) (*domain.Booking, error)
	CancelOwnerBooking(ctx context.Context, bookingID, ownerID, reason string) (*CancellationResult, error)
	GetAllowance(ctx context.Context, ownerID, propertyID string) (*AllowanceSummary, error)
}

type ConnectionStatus struct {
	Connected        bool      `json:"connected"`
	OrganizationName string    `json:"organizationName,omitempty"`
	TokenExpiresAt   time.Time `json:"tokenExpiresAt,omitempty"`
	NeedsRefresh     bool      `json:"needsRefresh,omitempty"`
}

// CredentialService manages the accounting OAuth connection: encrypted
// storage plus refresh-before-expiry token handout.
type CredentialService interface {
	Connect(ctx context.Context, ownerRef string, pair domain.TokenPair, orgID, orgName string) error
	Disconnect(ctx context.Context, ownerRef string) error
	Status(ctx context.Context, ownerRef string) (*ConnectionStatus, error)
	// GetValidAccessToken returns a usable access token, transparently
	// refreshing when the stored one is within the expiry skew.
	GetValidAccessToken(ctx context.Context, ownerRef string) (string, error)
}

// EmailService sends operational notifications. Failures are logged by
// callers and never fail the triggering operation.
type EmailService interface {
	SendBookingConfirmation(ctx context.Context, to, propertyID string, checkIn, checkOut time.Time, nights, daysRemaining int) error
	SendBookingCancellation(ctx context.Context, to, propertyID string, checkIn time.Time, daysReturned int) error
	SendReauthorizationAlert(ctx context.Context, to, ownerRef string) error
	SendCloseoutNotice(ctx context.Context, to, ownerID, propertyID string, year, daysUsed int) error
	SendReconciliationAlert(ctx context.Context, to string, entries []domain.ReconciliationEntry) error
}
