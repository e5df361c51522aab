package service

import (
	"context"
	"time"

	"cabinfolio-backend/internal/domain"
	"cabinfolio-backend/internal/policy"
	"cabinfolio-backend/internal/repository"
)

type allowanceService struct {
	repo  repository.AllowanceRepository
	rules policy.Rules
}

func NewAllowanceService(repo repository.AllowanceRepository, rules policy.Rules) AllowanceService {
	return &allowanceService{repo: repo, rules: rules.Normalize()}
}

// quotaYear maps an instant to its quota period. Periods are calendar
// years; the reset boundary itself is handled by an external closeout,
// never by this service.
func quotaYear(at time.Time) (year int, lastReset, nextReset time.Time) {
	y := at.UTC().Year()
	return y,
		time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(y+1, time.January, 1, 0, 0, 0, 0, time.UTC)
}

func summarize(a *domain.BookingAllowance) *AllowanceSummary {
	return &AllowanceSummary{
		DaysUsed:         a.DaysUsed,
		DaysLimit:        a.DaysLimit,
		DaysRemaining:    a.DaysRemaining(),
		Year:             a.Year,
		CloseoutRequired: a.CloseoutRequired,
	}
}

func (s *allowanceService) GetAllowance(ctx context.Context, ownerID, propertyID string, at time.Time) (*AllowanceSummary, error) {
	year, lastReset, nextReset := quotaYear(at)
	a, err := s.repo.GetOrCreate(ctx, ownerID, propertyID, year, s.rules.AnnualDayLimit, lastReset, nextReset)
	if err != nil {
		return nil, err
	}
	return summarize(a), nil
}

func (s *allowanceService) Reserve(ctx context.Context, ownerID, propertyID string, at time.Time, nights int) (*AllowanceSummary, error) {
	year, lastReset, nextReset := quotaYear(at)
	// Ensure the row exists before the conditional update; the update
	// alone cannot distinguish "no row" from "over quota".
	if _, err := s.repo.GetOrCreate(ctx, ownerID, propertyID, year, s.rules.AnnualDayLimit, lastReset, nextReset); err != nil {
		return nil, err
	}
	a, err := s.repo.Reserve(ctx, ownerID, propertyID, year, nights)
	if err != nil {
		return nil, err
	}
	return summarize(a), nil
}

func (s *allowanceService) Release(ctx context.Context, ownerID, propertyID string, at time.Time, nights int) (*AllowanceSummary, error) {
	year, lastReset, nextReset := quotaYear(at)
	if _, err := s.repo.GetOrCreate(ctx, ownerID, propertyID, year, s.rules.AnnualDayLimit, lastReset, nextReset); err != nil {
		return nil, err
	}
	a, err := s.repo.Release(ctx, ownerID, propertyID, year, nights)
	if err != nil {
		return nil, err
	}
	return summarize(a), nil
}
