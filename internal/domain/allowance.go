package domain

import "time"

// BookingAllowance tracks one owner's annual night quota for one
// property. DaysUsed moves up on booking confirmation and down on
// cancellation, floored at zero. The row is created lazily on the first
// booking attempt for a given quota year.
type BookingAllowance struct {
	ID               int64
	OwnerID          string
	PropertyID       string
	Year             int
	DaysUsed         int
	DaysLimit        int
	LastResetDate    time.Time
	NextResetDate    time.Time
	CloseoutRequired bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (a *BookingAllowance) DaysRemaining() int {
	remaining := a.DaysLimit - a.DaysUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}
