package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

// CanTransitionTo encodes the booking lifecycle:
// pending -> confirmed | cancelled, confirmed -> cancelled.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingConfirmed || next == BookingCancelled
	case BookingConfirmed:
		return next == BookingCancelled
	}
	return false
}

// Booking dates are civil dates stored at midnight UTC. The stay covers
// [CheckInDate, CheckOutDate).
type Booking struct {
	ID           int64
	GuestID      int64
	ResidenceID  int64
	CheckInDate  time.Time
	CheckOutDate time.Time
	Status       BookingStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Overlaps reports whether the booking's stay intersects [checkIn, checkOut).
// A stay ending on the day another begins does not overlap it.
func (b Booking) Overlaps(checkIn, checkOut time.Time) bool {
	return b.CheckInDate.Before(checkOut) && b.CheckOutDate.After(checkIn)
}

// Nights is the number of nights between check-in and check-out.
func (b Booking) Nights() int {
	return int(b.CheckOutDate.Sub(b.CheckInDate).Hours() / 24)
}

type Contact struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
}

// BookingDetails is a booking joined with what the residence owner needs to
// act on it.
type BookingDetails struct {
	Booking
	ResidenceTitle string
	PricePerNight  decimal.Decimal
	Guest          Contact
	Owner          Contact
}
