package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"cabinfolio-backend/internal/domain"
	"cabinfolio-backend/internal/reservations"
)

// mockReservationClient mocks reservations.Client.
type mockReservationClient struct {
	mock.Mock
}

func (m *mockReservationClient) GetAvailability(ctx context.Context, propertyID string, from, to time.Time) ([]reservations.AvailabilityDay, error) {
	args := m.Called(ctx, propertyID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reservations.AvailabilityDay), args.Error(1)
}

func (m *mockReservationClient) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockReservationClient) CreateBooking(ctx context.Context, req reservations.CreateBookingRequest) (*domain.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockReservationClient) CancelBooking(ctx context.Context, bookingID, reason string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

// mockAllowanceService mocks AllowanceService.
type mockAllowanceService struct {
	mock.Mock
}

func (m *mockAllowanceService) GetAllowance(ctx context.Context, ownerID, propertyID string, at time.Time) (*AllowanceSummary, error) {
	args := m.Called(ctx, ownerID, propertyID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AllowanceSummary), args.Error(1)
}

func (m *mockAllowanceService) Reserve(ctx context.Context, ownerID, propertyID string, at time.Time, nights int) (*AllowanceSummary, error) {
	args := m.Called(ctx, ownerID, propertyID, at, nights)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AllowanceSummary), args.Error(1)
}

func (m *mockAllowanceService) Release(ctx context.Context, ownerID, propertyID string, at time.Time, nights int) (*AllowanceSummary, error) {
	args := m.Called(ctx, ownerID, propertyID, at, nights)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AllowanceSummary), args.Error(1)
}

// mockAllowanceRepo mocks repository.AllowanceRepository.
type mockAllowanceRepo struct {
	mock.Mock
}

func (m *mockAllowanceRepo) GetOrCreate(ctx context.Context, ownerID, propertyID string, year int, daysLimit int, lastReset, nextReset time.Time) (*domain.BookingAllowance, error) {
	args := m.Called(ctx, ownerID, propertyID, year, daysLimit, lastReset, nextReset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingAllowance), args.Error(1)
}

func (m *mockAllowanceRepo) Reserve(ctx context.Context, ownerID, propertyID string, year, nights int) (*domain.BookingAllowance, error) {
	args := m.Called(ctx, ownerID, propertyID, year, nights)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingAllowance), args.Error(1)
}

func (m *mockAllowanceRepo) Release(ctx context.Context, ownerID, propertyID string, year, nights int) (*domain.BookingAllowance, error) {
	args := m.Called(ctx, ownerID, propertyID, year, nights)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingAllowance), args.Error(1)
}

func (m *mockAllowanceRepo) ListPastReset(ctx context.Context, cutoff time.Time) ([]domain.BookingAllowance, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingAllowance), args.Error(1)
}

func (m *mockAllowanceRepo) FlagCloseoutRequired(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// mockCredentialRepo mocks repository.CredentialRepository.
type mockCredentialRepo struct {
	mock.Mock
}

func (m *mockCredentialRepo) Upsert(ctx context.Context, cred *domain.ExternalCredential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

func (m *mockCredentialRepo) GetByOwnerRef(ctx context.Context, ownerRef string) (*domain.ExternalCredential, error) {
	args := m.Called(ctx, ownerRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExternalCredential), args.Error(1)
}

func (m *mockCredentialRepo) ReplaceTokens(ctx context.Context, ownerRef, oldFingerprint, accessCipher, refreshCipher, newFingerprint string, expiresAt time.Time) (bool, error) {
	args := m.Called(ctx, ownerRef, oldFingerprint, accessCipher, refreshCipher, newFingerprint, expiresAt)
	return args.Bool(0), args.Error(1)
}

func (m *mockCredentialRepo) Delete(ctx context.Context, ownerRef string) error {
	args := m.Called(ctx, ownerRef)
	return args.Error(0)
}

func (m *mockCredentialRepo) ListExpiringBefore(ctx context.Context, cutoff time.Time) ([]domain.ExternalCredential, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExternalCredential), args.Error(1)
}

// mockReconciliationRepo mocks repository.ReconciliationRepository.
type mockReconciliationRepo struct {
	mock.Mock
}

func (m *mockReconciliationRepo) Create(ctx context.Context, entry *domain.ReconciliationEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockReconciliationRepo) ListUnresolved(ctx context.Context) ([]domain.ReconciliationEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReconciliationEntry), args.Error(1)
}

func (m *mockReconciliationRepo) MarkResolved(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// mockAuthClient mocks accounting.AuthClient.
type mockAuthClient struct {
	mock.Mock
}

func (m *mockAuthClient) RefreshToken(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(domain.TokenPair), args.Error(1)
}

// mockEmailService mocks EmailService.
type mockEmailService struct {
	mock.Mock
}

func (m *mockEmailService) SendBookingConfirmation(ctx context.Context, to, propertyID string, checkIn, checkOut time.Time, nights, daysRemaining int) error {
	args := m.Called(ctx, to, propertyID, checkIn, checkOut, nights, daysRemaining)
	return args.Error(0)
}

func (m *mockEmailService) SendBookingCancellation(ctx context.Context, to, propertyID string, checkIn time.Time, daysReturned int) error {
	args := m.Called(ctx, to, propertyID, checkIn, daysReturned)
	return args.Error(0)
}

func (m *mockEmailService) SendReauthorizationAlert(ctx context.Context, to, ownerRef string) error {
	args := m.Called(ctx, to, ownerRef)
	return args.Error(0)
}

func (m *mockEmailService) SendCloseoutNotice(ctx context.Context, to, ownerID, propertyID string, year, daysUsed int) error {
	args := m.Called(ctx, to, ownerID, propertyID, year, daysUsed)
	return args.Error(0)
}

func (m *mockEmailService) SendReconciliationAlert(ctx context.Context, to string, entries []domain.ReconciliationEntry) error {
	args := m.Called(ctx, to, entries)
	return args.Error(0)
}
