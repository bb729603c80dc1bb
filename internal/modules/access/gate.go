package access

import (
	"context"

	"resirent/internal/domain"

	"github.com/sirupsen/logrus"
)

// Message returned to owners whose account cannot publish yet.
const InactiveOwnerMessage = "Your owner account is not active. Please wait for admin approval."

type IdentityLoader interface {
	GetIdentity(ctx context.Context, userID int64) (domain.Identity, error)
}

type BookingOwnerLookup interface {
	GetResidenceOwnerID(ctx context.Context, bookingID int64) (int64, error)
}

// Gate answers authorization questions. It never returns errors: anything it
// cannot establish counts as "no".
type Gate struct {
	identities IdentityLoader
	bookings   BookingOwnerLookup
	log        *logrus.Logger
}

func NewGate(identities IdentityLoader, bookings BookingOwnerLookup, log *logrus.Logger) *Gate {
	return &Gate{identities: identities, bookings: bookings, log: log}
}

// IsActiveOwner is true only for an authenticated owner whose profile is
// active. Renters, pending and suspended owners, unknown users and lookup
// failures are all false.
func (g *Gate) IsActiveOwner(ctx context.Context, userID int64) bool {
	if userID == 0 {
		return false
	}
	id, err := g.identities.GetIdentity(ctx, userID)
	if err != nil {
		g.log.WithError(err).WithField("user_id", userID).Warn("access: identity lookup failed")
		return false
	}
	owner, ok := id.(domain.Owner)
	return ok && owner.IsActive()
}

func IsResidenceOwner(userID int64, residence *domain.Residence) bool {
	return residence != nil && userID != 0 && residence.OwnerID == userID
}

// IsResidenceOwner is the method form of the package function.
func (g *Gate) IsResidenceOwner(userID int64, residence *domain.Residence) bool {
	return IsResidenceOwner(userID, residence)
}

// IsBookingOwnerOfResidence reports whether userID owns the residence the
// booking is for.
func (g *Gate) IsBookingOwnerOfResidence(ctx context.Context, userID, bookingID int64) bool {
	if userID == 0 {
		return false
	}
	ownerID, err := g.bookings.GetResidenceOwnerID(ctx, bookingID)
	if err != nil {
		g.log.WithError(err).WithField("booking_id", bookingID).Debug("access: booking owner lookup failed")
		return false
	}
	return ownerID == userID
}
