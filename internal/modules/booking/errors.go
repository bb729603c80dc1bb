package booking

import "errors"

var (
	ErrDatesRequired         = errors.New("check-in and check-out dates are required")
	ErrInvalidDate           = errors.New("date must be in YYYY-MM-DD format")
	ErrCheckoutBeforeCheckin = errors.New("check-out date must be after check-in date")
	ErrCheckinInPast         = errors.New("check-in date cannot be in the past")
	ErrResidenceRequired     = errors.New("residence is required")
	ErrResidenceNotFound     = errors.New("residence does not exist")
	ErrInvalidStatus         = errors.New("status must be one of: pending, confirmed, cancelled")

	// ErrDatesUnavailable means a confirmed booking already covers part of
	// the requested stay.
	ErrDatesUnavailable        = errors.New("residence is not available for the selected dates")
	ErrInvalidStatusTransition = errors.New("booking cannot move to the requested status")
	ErrNotFound                = errors.New("booking not found")
)
