package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Residence struct {
	ID            int64
	OwnerID       int64
	Title         string
	Description   string
	Address       string
	City          string
	Country       string
	PricePerNight decimal.Decimal
	IsAvailable   bool
	Conditions    *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Photos are ordered by upload position.
	Photos []ResidencePhoto
	// Owner is only loaded for public detail views.
	Owner *User
}

// MainPhoto returns the first photo by position, if any.
func (r *Residence) MainPhoto() (ResidencePhoto, bool) {
	if len(r.Photos) == 0 {
		return ResidencePhoto{}, false
	}
	return r.Photos[0], true
}

type ResidencePhoto struct {
	ID          int64
	ResidenceID int64
	Image       string
	Position    int
	CreatedAt   time.Time
}

// ResidenceFilter narrows the public listing. Zero values mean "no filter".
type ResidenceFilter struct {
	City          string
	Country       string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	AvailableFrom *time.Time
	AvailableTo   *time.Time
	Limit         int
	Offset        int
}
