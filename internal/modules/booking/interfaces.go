package booking

import (
	"context"

	"resirent/internal/domain"
)

// BookingRepository runs the locked read-check-write sequences; the service
// supplies the checks.
type BookingRepository interface {
	CreateWithinLock(ctx context.Context, b *domain.Booking, check func(overlapping []domain.Booking) error) error
	TransitionForOwner(
		ctx context.Context,
		ownerID, bookingID int64,
		next domain.BookingStatus,
		check func(current domain.Booking, overlapping []domain.Booking) error,
	) (*domain.Booking, error)
	ListForOwner(ctx context.Context, ownerID int64) ([]domain.BookingDetails, error)
	ListForGuest(ctx context.Context, guestID int64) ([]domain.BookingDetails, error)
}
