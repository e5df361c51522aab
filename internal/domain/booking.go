package domain

import "time"

type BookingType string

const (
	BookingTypeGuest BookingType = "GUEST"
	BookingTypeOwner BookingType = "OWNER"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Booking mirrors a reservation held by the external reservation system.
// The reservation system is the system of record; this struct is only a
// read/write view exchanged over its API.
type Booking struct {
	ID                 string
	PropertyID         string
	OwnerID            string // empty for guest bookings
	Type               BookingType
	CheckInDate        time.Time // normalized to midnight UTC
	CheckOutDate       time.Time // normalized to midnight UTC
	Status             BookingStatus
	GuestCount         int
	CreatedAt          time.Time
	CancelledAt        *time.Time
	CancellationReason string
}

// Nights returns the stay length in whole calendar days. Check-in and
// check-out are treated as dates, so a 23:00 arrival still counts the
// full night.
func (b *Booking) Nights() int {
	return NightsBetween(b.CheckInDate, b.CheckOutDate)
}

// NightsBetween computes whole calendar days between two dates after
// truncating both to midnight UTC.
func NightsBetween(checkIn, checkOut time.Time) int {
	in := TruncateToDate(checkIn)
	out := TruncateToDate(checkOut)
	return int(out.Sub(in).Hours() / 24)
}

// TruncateToDate drops the time-of-day component, keeping the calendar
// date in UTC.
func TruncateToDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
