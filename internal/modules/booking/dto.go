package booking

import (
	"time"

	"resirent/internal/domain"
)

type CreateBookingRequest struct {
	Residence    int64  `json:"residence"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type BookingResponse struct {
	ID           int64     `json:"id"`
	Guest        int64     `json:"guest"`
	Residence    int64     `json:"residence"`
	CheckInDate  string    `json:"check_in_date"`
	CheckOutDate string    `json:"check_out_date"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ContactResponse struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// BookingDetailsResponse is a booking as its owner or guest lists it.
type BookingDetailsResponse struct {
	BookingResponse
	ResidenceTitle string          `json:"residence_title"`
	PricePerNight  string          `json:"price_per_night"`
	Nights         int             `json:"nights"`
	Guest          ContactResponse `json:"guest_contact"`
	Owner          ContactResponse `json:"owner_contact"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:           b.ID,
		Guest:        b.GuestID,
		Residence:    b.ResidenceID,
		CheckInDate:  domain.FormatDate(b.CheckInDate),
		CheckOutDate: domain.FormatDate(b.CheckOutDate),
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func toContact(c domain.Contact) ContactResponse {
	return ContactResponse{
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
	}
}

func toDetailsResponses(list []domain.BookingDetails) []BookingDetailsResponse {
	out := make([]BookingDetailsResponse, 0, len(list))
	for i := range list {
		d := &list[i]
		out = append(out, BookingDetailsResponse{
			BookingResponse: toBookingResponse(&d.Booking),
			ResidenceTitle:  d.ResidenceTitle,
			PricePerNight:   d.PricePerNight.StringFixed(2),
			Nights:          d.Nights(),
			Guest:           toContact(d.Guest),
			Owner:           toContact(d.Owner),
		})
	}
	return out
}
