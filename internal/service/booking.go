package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cabinfolio-backend/internal/domain"
	"cabinfolio-backend/internal/logger"
	"cabinfolio-backend/internal/policy"
	"cabinfolio-backend/internal/repository"
	"cabinfolio-backend/internal/reservations"
)

type bookingService struct {
	reservations reservations.Client
	allowances   AllowanceService
	reconRepo    repository.ReconciliationRepository
	email        EmailService
	rules        policy.Rules
	adminEmail   string
	ownerEmail   func(ctx context.Context, ownerID string) string
	now          func() time.Time
}

type BookingServiceOption func(*bookingService)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *bookingService) { s.now = now }
}

// WithOwnerEmailLookup supplies a resolver from owner ID to a
// notification address. Without it no booking mail is sent.
func WithOwnerEmailLookup(lookup func(ctx context.Context, ownerID string) string) BookingServiceOption {
	return func(s *bookingService) { s.ownerEmail = lookup }
}

func NewBookingService(
	resClient reservations.Client,
	allowances AllowanceService,
	reconRepo repository.ReconciliationRepository,
	email EmailService,
	rules policy.Rules,
	adminEmail string,
	opts ...BookingServiceOption,
) BookingService {
	s := &bookingService{
		reservations: resClient,
		allowances:   allowances,
		reconRepo:    reconRepo,
		email:        email,
		rules:        rules.Normalize(),
		adminEmail:   adminEmail,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOwnerBooking runs the creation gates in fixed order: policy
// validation, then the allowance check, then the external create, and
// only then the ledger commit. Policy and allowance failures are cheap
// and must come before the external state mutation; the ledger commit
// comes after it so a failed create never leaves reserved allowance
// behind. The cost of that ordering is the reconciliation gap handled
// at the bottom.
func (s *bookingService) CreateOwnerBooking(ctx context.Context, ownerID, propertyID string, checkIn, checkOut time.Time, guests int) (*domain.Booking, error) {
	now := s.now()

	if violations := policy.ValidateNewBooking(s.rules, checkIn, checkOut, now); len(violations) > 0 {
		return nil, &domain.PolicyError{Violations: violations}
	}
	nights := domain.NightsBetween(checkIn, checkOut)

	allowance, err := s.allowances.GetAllowance(ctx, ownerID, propertyID, checkIn)
	if err != nil {
		return nil, err
	}
	if nights > allowance.DaysRemaining {
		return nil, &domain.InsufficientAllowanceError{Requested: nights, DaysRemaining: allowance.DaysRemaining}
	}

	booking, err := s.reservations.CreateBooking(ctx, reservations.CreateBookingRequest{
		OwnerID:      ownerID,
		PropertyID:   propertyID,
		CheckInDate:  domain.TruncateToDate(checkIn),
		CheckOutDate: domain.TruncateToDate(checkOut),
		GuestCount:   guests,
		BookingType:  string(domain.BookingTypeOwner),
	})
	if err != nil {
		return nil, err
	}

	committed, err := s.allowances.Reserve(ctx, ownerID, propertyID, checkIn, nights)
	if err != nil {
		// The external booking exists but the ledger does not reflect it.
		// Record the gap for out-of-band repair; do not unwind the ledger
		// or guess at retries here.
		s.recordGap(ctx, booking.ID, ownerID, propertyID, nights, err)
		return nil, fmt.Errorf("booking %s created but allowance commit failed: %w", booking.ID, err)
	}

	logger.Info("owner booking confirmed",
		"booking_id", booking.ID, "owner_id", ownerID, "property_id", propertyID,
		"nights", nights, "days_remaining", committed.DaysRemaining)
	s.notifyConfirmation(ctx, ownerID, booking, nights, committed.DaysRemaining)
	return booking, nil
}

// CancelOwnerBooking verifies ownership and the cancellation window,
// cancels the booking in the reservation system and only then releases
// the consumed nights, so allowance is never credited for a booking
// that remains live.
func (s *bookingService) CancelOwnerBooking(ctx context.Context, bookingID, ownerID, reason string) (*CancellationResult, error) {
	booking, err := s.reservations.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Type != domain.BookingTypeOwner || booking.OwnerID != ownerID {
		return nil, domain.ErrNotOwnerOfBooking
	}
	if booking.Status == domain.BookingStatusCancelled {
		return nil, domain.ErrBookingAlreadyCancelled
	}

	if violation := policy.ValidateCancellation(s.rules, booking.CheckInDate, s.now()); violation != nil {
		return nil, &domain.PolicyError{Violations: []domain.PolicyViolation{*violation}}
	}

	nights := booking.Nights()
	cancelled, err := s.reservations.CancelBooking(ctx, bookingID, reason)
	if err != nil {
		return nil, err
	}

	if _, err := s.allowances.Release(ctx, ownerID, booking.PropertyID, booking.CheckInDate, nights); err != nil {
		// The booking is cancelled externally but the nights were not
		// credited back. Same reconciliation treatment as the create path.
		s.recordGap(ctx, bookingID, ownerID, booking.PropertyID, nights, fmt.Errorf("release failed: %w", err))
		return nil, fmt.Errorf("booking %s cancelled but allowance release failed: %w", bookingID, err)
	}

	logger.Info("owner booking cancelled",
		"booking_id", bookingID, "owner_id", ownerID, "nights_returned", nights)
	s.notifyCancellation(ctx, ownerID, cancelled, nights)
	return &CancellationResult{Booking: cancelled, DaysReturned: nights}, nil
}

func (s *bookingService) GetAllowance(ctx context.Context, ownerID, propertyID string) (*AllowanceSummary, error) {
	return s.allowances.GetAllowance(ctx, ownerID, propertyID, s.now())
}

func (s *bookingService) recordGap(ctx context.Context, bookingID, ownerID, propertyID string, nights int, cause error) {
	logger.ReconciliationGap(bookingID, ownerID, propertyID, nights, cause.Error())
	entry := &domain.ReconciliationEntry{
		ID:         uuid.NewString(),
		BookingID:  bookingID,
		OwnerID:    ownerID,
		PropertyID: propertyID,
		Nights:     nights,
		Cause:      cause.Error(),
	}
	if err := s.reconRepo.Create(ctx, entry); err != nil {
		// Both the ledger and the reconciliation store failed; the log
		// line above is the last trace of the gap.
		logger.Error("failed to persist reconciliation entry", "booking_id", bookingID, "error", err)
	}
}

func (s *bookingService) notifyConfirmation(ctx context.Context, ownerID string, booking *domain.Booking, nights, daysRemaining int) {
	if s.email == nil || s.ownerEmail == nil {
		return
	}
	to := s.ownerEmail(ctx, ownerID)
	if to == "" {
		return
	}
	if err := s.email.SendBookingConfirmation(ctx, to, booking.PropertyID, booking.CheckInDate, booking.CheckOutDate, nights, daysRemaining); err != nil {
		logger.Warn("failed to send booking confirmation email", "booking_id", booking.ID, "error", err)
	}
}

func (s *bookingService) notifyCancellation(ctx context.Context, ownerID string, booking *domain.Booking, daysReturned int) {
	if s.email == nil || s.ownerEmail == nil {
		return
	}
	to := s.ownerEmail(ctx, ownerID)
	if to == "" {
		return
	}
	if err := s.email.SendBookingCancellation(ctx, to, booking.PropertyID, booking.CheckInDate, daysReturned); err != nil {
		logger.Warn("failed to send booking cancellation email", "booking_id", booking.ID, "error", err)
	}
}
