package policy

import (
	"fmt"
	"time"

	"cabinfolio-backend/internal/domain"
)

// Default booking policy thresholds. All of them are configurable; these
// are the values applied when config leaves them unset.
const (
	DefaultMinNights         = 2
	DefaultMaxNights         = 14
	DefaultAdvanceHours      = 48
	DefaultCancellationHours = 48
	DefaultAnnualDayLimit    = 180
)

// Rules holds the active policy thresholds. Zero values fall back to the
// defaults above via Normalize.
type Rules struct {
	MinNights         int
	MaxNights         int
	AdvanceHours      int
	CancellationHours int
	AnnualDayLimit    int
}

func (r Rules) Normalize() Rules {
	if r.MinNights == 0 {
		r.MinNights = DefaultMinNights
	}
	if r.MaxNights == 0 {
		r.MaxNights = DefaultMaxNights
	}
	if r.AdvanceHours == 0 {
		r.AdvanceHours = DefaultAdvanceHours
	}
	if r.CancellationHours == 0 {
		r.CancellationHours = DefaultCancellationHours
	}
	if r.AnnualDayLimit == 0 {
		r.AnnualDayLimit = DefaultAnnualDayLimit
	}
	return r
}

// ValidateNewBooking runs the creation policy checks in order and
// returns every violation found. An empty slice means the request is
// valid. Pure: no I/O, deterministic given now.
func ValidateNewBooking(rules Rules, checkIn, checkOut, now time.Time) []domain.PolicyViolation {
	rules = rules.Normalize()
	var violations []domain.PolicyViolation

	in := domain.TruncateToDate(checkIn)
	out := domain.TruncateToDate(checkOut)

	if !out.After(in) {
		violations = append(violations, domain.PolicyViolation{
			Rule:    domain.RuleInvalidDateOrder,
			Message: "check-out date must be after check-in date",
		})
		return violations
	}

	nights := domain.NightsBetween(in, out)
	if nights < rules.MinNights {
		violations = append(violations, domain.PolicyViolation{
			Rule:    domain.RuleMinStayNotMet,
			Message: fmt.Sprintf("stay of %d nights is below the %d night minimum", nights, rules.MinNights),
		})
	}
	if nights > rules.MaxNights {
		violations = append(violations, domain.PolicyViolation{
			Rule:    domain.RuleMaxStayExceeded,
			Message: fmt.Sprintf("stay of %d nights exceeds the %d night maximum", nights, rules.MaxNights),
		})
	}

	if hours := hoursUntil(checkIn, now); hours < float64(rules.AdvanceHours) {
		violations = append(violations, domain.PolicyViolation{
			Rule:    domain.RuleAdvanceNoticeNotMet,
			Message: fmt.Sprintf("check-in is %.0f hours away, bookings require %d hours advance notice", hours, rules.AdvanceHours),
		})
	}

	return violations
}

// ValidateCancellation checks the cancellation-notice window. Returns a
// single violation, or nil when cancellation is still allowed.
func ValidateCancellation(rules Rules, checkIn, now time.Time) *domain.PolicyViolation {
	rules = rules.Normalize()
	if hours := hoursUntil(checkIn, now); hours < float64(rules.CancellationHours) {
		return &domain.PolicyViolation{
			Rule:    domain.RuleCancellationWindowPassed,
			Message: fmt.Sprintf("check-in is %.0f hours away, cancellations require %d hours notice", hours, rules.CancellationHours),
		}
	}
	return nil
}

// hoursUntil measures wall-clock hours from now to the target. The
// advance-notice checks compare against the actual check-in instant, not
// its midnight truncation, matching how notice windows are quoted to
// owners.
func hoursUntil(target, now time.Time) float64 {
	return target.Sub(now).Hours()
}
