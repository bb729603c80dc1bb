package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resirent/internal/domain"
	"resirent/internal/pkg/validator"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Service struct {
	bookings BookingRepository
	log      *logrus.Logger
	now      func() time.Time
}

func NewService(bookings BookingRepository, log *logrus.Logger) *Service {
	return &Service{bookings: bookings, log: log, now: time.Now}
}

// WithClock replaces the clock that decides what "today" is.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateBooking validates the stay and inserts a pending booking for guestID.
// The residence is locked while confirmed bookings are checked for overlap,
// so a stay that collides with a confirmed one is never written.
func (s *Service) CreateBooking(ctx context.Context, guestID int64, req CreateBookingRequest) (*domain.Booking, error) {
	checkIn, checkOut, err := s.parseStay(req)
	if err != nil {
		return nil, err
	}
	if req.Residence <= 0 {
		return nil, validator.Field("residence", ErrResidenceRequired)
	}

	b := &domain.Booking{
		GuestID:      guestID,
		ResidenceID:  req.Residence,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		Status:       domain.BookingPending,
	}
	err = s.bookings.CreateWithinLock(ctx, b, func(overlapping []domain.Booking) error {
		if len(overlapping) > 0 {
			return ErrDatesUnavailable
		}
		return nil
	})
	switch {
	case errors.Is(err, ErrDatesUnavailable):
		return nil, ErrDatesUnavailable
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, validator.Field("residence", ErrResidenceNotFound)
	case err != nil:
		return nil, fmt.Errorf("booking: create: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":   b.ID,
		"residence_id": b.ResidenceID,
		"guest_id":     guestID,
	}).Info("booking created")
	return b, nil
}

func (s *Service) parseStay(req CreateBookingRequest) (time.Time, time.Time, error) {
	rawIn := strings.TrimSpace(req.CheckInDate)
	rawOut := strings.TrimSpace(req.CheckOutDate)
	if rawIn == "" {
		return time.Time{}, time.Time{}, validator.Field("check_in_date", ErrDatesRequired)
	}
	if rawOut == "" {
		return time.Time{}, time.Time{}, validator.Field("check_out_date", ErrDatesRequired)
	}

	checkIn, err := domain.ParseDate(rawIn)
	if err != nil {
		return time.Time{}, time.Time{}, validator.Field("check_in_date", ErrInvalidDate)
	}
	checkOut, err := domain.ParseDate(rawOut)
	if err != nil {
		return time.Time{}, time.Time{}, validator.Field("check_out_date", ErrInvalidDate)
	}

	if !checkIn.Before(checkOut) {
		return time.Time{}, time.Time{}, validator.Field("check_out_date", ErrCheckoutBeforeCheckin)
	}
	if checkIn.Before(domain.DateOf(s.now())) {
		return time.Time{}, time.Time{}, validator.Field("check_in_date", ErrCheckinInPast)
	}
	return checkIn, checkOut, nil
}

// UpdateBookingStatus moves a booking of one of ownerID's residences to
// status. Confirming re-checks overlap with the residence's other confirmed
// bookings under the same lock as the write; a conflicting confirmation is
// rejected and the other bookings are left alone.
func (s *Service) UpdateBookingStatus(ctx context.Context, ownerID, bookingID int64, status string) (*domain.Booking, error) {
	next := domain.BookingStatus(strings.ToLower(strings.TrimSpace(status)))
	if !next.Valid() {
		return nil, validator.Field("status", ErrInvalidStatus)
	}

	var previous domain.BookingStatus
	b, err := s.bookings.TransitionForOwner(ctx, ownerID, bookingID, next, func(current domain.Booking, overlapping []domain.Booking) error {
		previous = current.Status
		if !current.Status.CanTransitionTo(next) {
			return ErrInvalidStatusTransition
		}
		if next == domain.BookingConfirmed && len(overlapping) > 0 {
			return ErrDatesUnavailable
		}
		return nil
	})
	switch {
	case errors.Is(err, ErrInvalidStatusTransition), errors.Is(err, ErrDatesUnavailable):
		s.log.WithFields(logrus.Fields{
			"booking_id": bookingID,
			"from":       previous,
			"to":         next,
		}).WithError(err).Info("booking status change rejected")
		return nil, err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("booking: update status: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"owner_id":   ownerID,
		"from":       previous,
		"to":         b.Status,
	}).Info("booking status changed")
	return b, nil
}

// ListOwnerBookings returns the bookings of every residence ownerID owns,
// newest first.
func (s *Service) ListOwnerBookings(ctx context.Context, ownerID int64) ([]domain.BookingDetails, error) {
	list, err := s.bookings.ListForOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("booking: list owner bookings: %w", err)
	}
	return list, nil
}

func (s *Service) ListGuestBookings(ctx context.Context, guestID int64) ([]domain.BookingDetails, error) {
	list, err := s.bookings.ListForGuest(ctx, guestID)
	if err != nil {
		return nil, fmt.Errorf("booking: list guest bookings: %w", err)
	}
	return list, nil
}
