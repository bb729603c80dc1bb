package catalog

import (
	"encoding/json"
	"time"

	"resirent/internal/domain"
)

// CreateResidenceRequest is bound from multipart forms and JSON alike.
// Images arrive separately as uploaded_images.
type CreateResidenceRequest struct {
	Title         string      `form:"title" json:"title" validate:"required,max=200"`
	Description   string      `form:"description" json:"description" validate:"required"`
	Address       string      `form:"address" json:"address" validate:"required,max=255"`
	City          string      `form:"city" json:"city" validate:"required,max=100"`
	Country       string      `form:"country" json:"country" validate:"required,max=100"`
	PricePerNight json.Number `form:"price_per_night" json:"price_per_night" validate:"required"`
	IsAvailable   *bool       `form:"is_available" json:"is_available"`
	Conditions    *string     `form:"conditions" json:"conditions"`
}

// UpdateResidenceRequest carries a partial update; nil fields are left as is.
type UpdateResidenceRequest struct {
	Title         *string      `form:"title" json:"title" validate:"omitempty,min=1,max=200"`
	Description   *string      `form:"description" json:"description" validate:"omitempty,min=1"`
	Address       *string      `form:"address" json:"address" validate:"omitempty,min=1,max=255"`
	City          *string      `form:"city" json:"city" validate:"omitempty,min=1,max=100"`
	Country       *string      `form:"country" json:"country" validate:"omitempty,min=1,max=100"`
	PricePerNight *json.Number `form:"price_per_night" json:"price_per_night"`
	IsAvailable   *bool        `form:"is_available" json:"is_available"`
	Conditions    *string      `form:"conditions" json:"conditions"`
}

// Full turns a complete request into an update of every required field.
// Optional fields that were omitted stay untouched.
func (r CreateResidenceRequest) Full() UpdateResidenceRequest {
	price := r.PricePerNight
	return UpdateResidenceRequest{
		Title:         &r.Title,
		Description:   &r.Description,
		Address:       &r.Address,
		City:          &r.City,
		Country:       &r.Country,
		PricePerNight: &price,
		IsAvailable:   r.IsAvailable,
		Conditions:    r.Conditions,
	}
}

type PhotoResponse struct {
	ID       int64  `json:"id"`
	Image    string `json:"image"`
	Position int    `json:"position"`
}

// ResidenceResponse is the owner's view of a residence.
type ResidenceResponse struct {
	ID            int64           `json:"id"`
	Owner         int64           `json:"owner"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Address       string          `json:"address"`
	City          string          `json:"city"`
	Country       string          `json:"country"`
	PricePerNight string          `json:"price_per_night"`
	IsAvailable   bool            `json:"is_available"`
	Conditions    *string         `json:"conditions"`
	Photos        []PhotoResponse `json:"photos"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type PublicResidenceItem struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	City          string  `json:"city"`
	Address       string  `json:"address"`
	PricePerNight string  `json:"price_per_night"`
	MainPhotoURL  *string `json:"main_photo_url"`
}

type PublicOwner struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
}

type PublicResidenceDetail struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Address       string          `json:"address"`
	City          string          `json:"city"`
	Country       string          `json:"country"`
	PricePerNight string          `json:"price_per_night"`
	Conditions    *string         `json:"conditions"`
	Owner         PublicOwner     `json:"owner"`
	Photos        []PhotoResponse `json:"photos"`
	CreatedAt     time.Time       `json:"created_at"`
}

// urlFunc turns a stored media path into what clients should fetch.
type urlFunc func(path string) string

func toPhotoResponses(photos []domain.ResidencePhoto, abs urlFunc) []PhotoResponse {
	out := make([]PhotoResponse, 0, len(photos))
	for _, p := range photos {
		out = append(out, PhotoResponse{ID: p.ID, Image: abs(p.Image), Position: p.Position})
	}
	return out
}

func toResidenceResponse(r *domain.Residence, abs urlFunc) ResidenceResponse {
	return ResidenceResponse{
		ID:            r.ID,
		Owner:         r.OwnerID,
		Title:         r.Title,
		Description:   r.Description,
		Address:       r.Address,
		City:          r.City,
		Country:       r.Country,
		PricePerNight: r.PricePerNight.StringFixed(2),
		IsAvailable:   r.IsAvailable,
		Conditions:    r.Conditions,
		Photos:        toPhotoResponses(r.Photos, abs),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toPublicItem(r *domain.Residence, abs urlFunc) PublicResidenceItem {
	item := PublicResidenceItem{
		ID:            r.ID,
		Title:         r.Title,
		City:          r.City,
		Address:       r.Address,
		PricePerNight: r.PricePerNight.StringFixed(2),
	}
	if p, ok := r.MainPhoto(); ok {
		url := abs(p.Image)
		item.MainPhotoURL = &url
	}
	return item
}

func toPublicDetail(r *domain.Residence, abs urlFunc) PublicResidenceDetail {
	d := PublicResidenceDetail{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Address:       r.Address,
		City:          r.City,
		Country:       r.Country,
		PricePerNight: r.PricePerNight.StringFixed(2),
		Conditions:    r.Conditions,
		Owner:         PublicOwner{ID: r.OwnerID},
		Photos:        toPhotoResponses(r.Photos, abs),
		CreatedAt:     r.CreatedAt,
	}
	if r.Owner != nil {
		d.Owner.FirstName = r.Owner.FirstName
	}
	return d
}
