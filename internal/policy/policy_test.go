package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cabinfolio-backend/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNightsBetween(t *testing.T) {
	t.Run("Whole days", func(t *testing.T) {
		assert.Equal(t, 3, domain.NightsBetween(date(2026, 6, 1), date(2026, 6, 4)))
	})

	t.Run("Time of day is ignored", func(t *testing.T) {
		// 23:00 day 1 to 01:00 day 3 is two calendar nights, not a
		// 26-hour fraction.
		checkIn := time.Date(2026, 6, 1, 23, 0, 0, 0, time.UTC)
		checkOut := time.Date(2026, 6, 3, 1, 0, 0, 0, time.UTC)
		assert.Equal(t, 2, domain.NightsBetween(checkIn, checkOut))
	})

	t.Run("Same day", func(t *testing.T) {
		assert.Equal(t, 0, domain.NightsBetween(date(2026, 6, 1), date(2026, 6, 1)))
	})
}

func TestValidateNewBooking(t *testing.T) {
	rules := Rules{}.Normalize()
	now := date(2026, 6, 1)

	t.Run("Valid booking", func(t *testing.T) {
		violations := ValidateNewBooking(rules, date(2026, 6, 10), date(2026, 6, 15), now)
		assert.Empty(t, violations)
	})

	t.Run("Check-out before check-in", func(t *testing.T) {
		violations := ValidateNewBooking(rules, date(2026, 6, 10), date(2026, 6, 8), now)
		assert.Len(t, violations, 1)
		assert.Equal(t, domain.RuleInvalidDateOrder, violations[0].Rule)
	})

	t.Run("Check-out equals check-in", func(t *testing.T) {
		violations := ValidateNewBooking(rules, date(2026, 6, 10), date(2026, 6, 10), now)
		assert.Len(t, violations, 1)
		assert.Equal(t, domain.RuleInvalidDateOrder, violations[0].Rule)
	})

	t.Run("Below minimum stay", func(t *testing.T) {
		violations := ValidateNewBooking(rules, date(2026, 6, 10), date(2026, 6, 11), now)
		assert.Len(t, violations, 1)
		assert.Equal(t, domain.RuleMinStayNotMet, violations[0].Rule)
	})

	t.Run("Above maximum stay", func(t *testing.T) {
		violations := ValidateNewBooking(rules, date(2026, 6, 10), date(2026, 6, 25), now)
		assert.Len(t, violations, 1)
		assert.Equal(t, domain.RuleMaxStayExceeded, violations[0].Rule)
	})

	t.Run("Advance notice not met", func(t *testing.T) {
		// Check-in 40 hours out: rejected, and the message carries the
		// computed hours so callers can show it.
		checkIn := now.Add(40 * time.Hour)
		violations := ValidateNewBooking(rules, checkIn, checkIn.AddDate(0, 0, 3), now)
		assert.Len(t, violations, 1)
		assert.Equal(t, domain.RuleAdvanceNoticeNotMet, violations[0].Rule)
		assert.Contains(t, violations[0].Message, "40 hours")
		assert.Contains(t, violations[0].Message, "48 hours")
	})

	t.Run("Exactly at advance boundary", func(t *testing.T) {
		checkIn := now.Add(48 * time.Hour)
		violations := ValidateNewBooking(rules, checkIn, checkIn.AddDate(0, 0, 3), now)
		assert.Empty(t, violations)
	})

	t.Run("Multiple violations reported in order", func(t *testing.T) {
		// 1 night, 24 hours out: min-stay first, then advance notice.
		checkIn := now.Add(24 * time.Hour)
		violations := ValidateNewBooking(rules, checkIn, checkIn.AddDate(0, 0, 1), now)
		assert.Len(t, violations, 2)
		assert.Equal(t, domain.RuleMinStayNotMet, violations[0].Rule)
		assert.Equal(t, domain.RuleAdvanceNoticeNotMet, violations[1].Rule)
	})

	t.Run("Custom thresholds", func(t *testing.T) {
		custom := Rules{MinNights: 1, MaxNights: 30, AdvanceHours: 24}
		checkIn := now.Add(30 * time.Hour)
		violations := ValidateNewBooking(custom, checkIn, checkIn.AddDate(0, 0, 1), now)
		assert.Empty(t, violations)
	})
}

func TestValidateCancellation(t *testing.T) {
	rules := Rules{}.Normalize()
	now := date(2026, 6, 1)

	t.Run("Window open", func(t *testing.T) {
		violation := ValidateCancellation(rules, now.Add(72*time.Hour), now)
		assert.Nil(t, violation)
	})

	t.Run("Window passed", func(t *testing.T) {
		violation := ValidateCancellation(rules, now.Add(40*time.Hour), now)
		assert.NotNil(t, violation)
		assert.Equal(t, domain.RuleCancellationWindowPassed, violation.Rule)
		assert.Contains(t, violation.Message, "40 hours")
	})

	t.Run("Check-in already past", func(t *testing.T) {
		violation := ValidateCancellation(rules, now.Add(-24*time.Hour), now)
		assert.NotNil(t, violation)
		assert.Equal(t, domain.RuleCancellationWindowPassed, violation.Rule)
	})

	t.Run("Exactly at boundary", func(t *testing.T) {
		violation := ValidateCancellation(rules, now.Add(48*time.Hour), now)
		assert.Nil(t, violation)
	})
}

func TestRulesNormalize(t *testing.T) {
	r := Rules{}.Normalize()
	assert.Equal(t, DefaultMinNights, r.MinNights)
	assert.Equal(t, DefaultMaxNights, r.MaxNights)
	assert.Equal(t, DefaultAdvanceHours, r.AdvanceHours)
	assert.Equal(t, DefaultCancellationHours, r.CancellationHours)
	assert.Equal(t, DefaultAnnualDayLimit, r.AnnualDayLimit)

	partial := Rules{MinNights: 3}.Normalize()
	assert.Equal(t, 3, partial.MinNights)
	assert.Equal(t, DefaultMaxNights, partial.MaxNights)
}
