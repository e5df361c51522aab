package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"cabinfolio-backend/internal/config"
	"cabinfolio-backend/internal/domain"
	"cabinfolio-backend/internal/service"
)

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

type mockCredentialService struct {
	mock.Mock
}

func (m *mockCredentialService) Connect(ctx context.Context, ownerRef string, pair domain.TokenPair, orgID, orgName string) error {
	args := m.Called(ctx, ownerRef, pair, orgID, orgName)
	return args.Error(0)
}

func (m *mockCredentialService) Disconnect(ctx context.Context, ownerRef string) error {
	args := m.Called(ctx, ownerRef)
	return args.Error(0)
}

func (m *mockCredentialService) Status(ctx context.Context, ownerRef string) (*service.ConnectionStatus, error) {
	args := m.Called(ctx, ownerRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ConnectionStatus), args.Error(1)
}

func (m *mockCredentialService) GetValidAccessToken(ctx context.Context, ownerRef string) (string, error) {
	args := m.Called(ctx, ownerRef)
	return args.String(0), args.Error(1)
}

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

type jobFixture struct {
	allowances  *mockAllowanceRepo
	credentials *mockCredentialRepo
	recon       *mockReconciliationRepo
	credSvc     *mockCredentialService
	email       *mockEmailService
	runner      *JobRunner
}

func newJobFixture(t *testing.T) *jobFixture {
	t.Helper()
	f := &jobFixture{
		allowances:  new(mockAllowanceRepo),
		credentials: new(mockCredentialRepo),
		recon:       new(mockReconciliationRepo),
		credSvc:     new(mockCredentialService),
		email:       new(mockEmailService),
	}
	cfg := &config.Config{}
	cfg.Accounting.AdminEmail = "ops@example.com"
	f.runner = NewJobRunner(f.allowances, f.credentials, f.recon, f.credSvc, f.email, cfg)
	return f
}

func TestFlagAllowanceCloseouts(t *testing.T) {
	t.Run("Flags due rows and notifies admin", func(t *testing.T) {
		f := newJobFixture(t)
		f.allowances.On("ListPastReset", mock.Anything, mock.Anything).
			Return([]domain.BookingAllowance{
				{ID: 1, OwnerID: "owner-1", PropertyID: "prop-1", Year: 2026, DaysUsed: 120},
			}, nil)
		f.allowances.On("FlagCloseoutRequired", mock.Anything, int64(1)).Return(nil)
		f.email.On("SendCloseoutNotice", mock.Anything, "ops@example.com", "owner-1", "prop-1", 2026, 120).
			Return(nil)

		f.runner.FlagAllowanceCloseouts()

		f.allowances.AssertExpectations(t)
		f.email.AssertExpectations(t)
	})

	t.Run("Nothing due", func(t *testing.T) {
		f := newJobFixture(t)
		f.allowances.On("ListPastReset", mock.Anything, mock.Anything).
			Return([]domain.BookingAllowance{}, nil)

		f.runner.FlagAllowanceCloseouts()

		f.allowances.AssertNotCalled(t, "FlagCloseoutRequired", mock.Anything, mock.Anything)
	})

	t.Run("One failed flag does not stop the rest", func(t *testing.T) {
		f := newJobFixture(t)
		f.allowances.On("ListPastReset", mock.Anything, mock.Anything).
			Return([]domain.BookingAllowance{
				{ID: 1, OwnerID: "owner-1", PropertyID: "prop-1", Year: 2026},
				{ID: 2, OwnerID: "owner-2", PropertyID: "prop-2", Year: 2026, DaysUsed: 30},
			}, nil)
		f.allowances.On("FlagCloseoutRequired", mock.Anything, int64(1)).Return(errors.New("boom"))
		f.allowances.On("FlagCloseoutRequired", mock.Anything, int64(2)).Return(nil)
		f.email.On("SendCloseoutNotice", mock.Anything, "ops@example.com", "owner-2", "prop-2", 2026, 30).
			Return(nil)

		f.runner.FlagAllowanceCloseouts()

		f.allowances.AssertExpectations(t)
		f.email.AssertExpectations(t)
	})
}

func TestSweepReconciliation(t *testing.T) {
	t.Run("Alerts on unresolved entries", func(t *testing.T) {
		f := newJobFixture(t)
		entries := []domain.ReconciliationEntry{{ID: "e-1", BookingID: "bk-100", Nights: 5}}
		f.recon.On("ListUnresolved", mock.Anything).Return(entries, nil)
		f.email.On("SendReconciliationAlert", mock.Anything, "ops@example.com", entries).Return(nil)

		f.runner.SweepReconciliation()

		f.email.AssertExpectations(t)
	})

	t.Run("Silent when clean", func(t *testing.T) {
		f := newJobFixture(t)
		f.recon.On("ListUnresolved", mock.Anything).Return([]domain.ReconciliationEntry{}, nil)

		f.runner.SweepReconciliation()

		f.email.AssertNotCalled(t, "SendReconciliationAlert", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRefreshExpiringCredentials(t *testing.T) {
	t.Run("Refreshes each expiring credential", func(t *testing.T) {
		f := newJobFixture(t)
		f.credentials.On("ListExpiringBefore", mock.Anything, mock.Anything).
			Return([]domain.ExternalCredential{{OwnerRef: "owner-1"}, {OwnerRef: "owner-2"}}, nil)
		f.credSvc.On("GetValidAccessToken", mock.Anything, "owner-1").Return("token-1", nil)
		f.credSvc.On("GetValidAccessToken", mock.Anything, "owner-2").Return("token-2", nil)

		f.runner.RefreshExpiringCredentials()

		f.credSvc.AssertExpectations(t)
		f.email.AssertNotCalled(t, "SendReauthorizationAlert", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Rejected refresh token alerts admin", func(t *testing.T) {
		f := newJobFixture(t)
		f.credentials.On("ListExpiringBefore", mock.Anything, mock.Anything).
			Return([]domain.ExternalCredential{{OwnerRef: "owner-1"}}, nil)
		f.credSvc.On("GetValidAccessToken", mock.Anything, "owner-1").
			Return("", domain.ErrReauthorizationRequired)
		f.email.On("SendReauthorizationAlert", mock.Anything, "ops@example.com", "owner-1").Return(nil)

		f.runner.RefreshExpiringCredentials()

		f.email.AssertExpectations(t)
	})

	t.Run("Transient failure retried next sweep", func(t *testing.T) {
		f := newJobFixture(t)
		f.credentials.On("ListExpiringBefore", mock.Anything, mock.Anything).
			Return([]domain.ExternalCredential{{OwnerRef: "owner-1"}}, nil)
		f.credSvc.On("GetValidAccessToken", mock.Anything, "owner-1").
			Return("", &domain.TransientError{Op: "token refresh", Err: errors.New("timeout")})

		f.runner.RefreshExpiringCredentials()

		f.email.AssertNotCalled(t, "SendReauthorizationAlert", mock.Anything, mock.Anything, mock.Anything)
	})
}
