package auth

import (
	"resirent/internal/domain"
	"resirent/internal/pkg/jwt"
)

// RegisterOwnerRequest is bound from a multipart form; the two identity
// document photos travel as files next to it.
type RegisterOwnerRequest struct {
	Email               string `form:"email" validate:"required,email,max=254"`
	Username            string `form:"username" validate:"required,max=150"`
	Password            string `form:"password" validate:"required,min=8,max=128"`
	FirstName           string `form:"first_name" validate:"required,max=150"`
	LastName            string `form:"last_name" validate:"required,max=150"`
	Address             string `form:"address" validate:"required,max=255"`
	PhoneNumber         string `form:"phone_number" validate:"required,max=20"`
	ResidencesToPublish *int   `form:"residences_to_publish" validate:"omitempty,gte=0"`
}

type RegisterRenterRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Username    string `json:"username" validate:"required,max=150"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	FirstName   string `json:"first_name" validate:"required,max=150"`
	LastName    string `json:"last_name" validate:"required,max=150"`
	PhoneNumber string `json:"phone_number" validate:"required,max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type UserResponse struct {
	ID                  int64  `json:"id"`
	Email               string `json:"email"`
	Username            string `json:"username"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	PhoneNumber         string `json:"phone_number,omitempty"`
	Role                string `json:"role"`
	AccountStatus       string `json:"account_status"`
	ResidencesToPublish *int   `json:"residences_to_publish,omitempty"`
	Address             string `json:"address,omitempty"`
}

type LoginResponse struct {
	jwt.TokenPair
	User UserResponse `json:"user"`
}

func toUserResponse(id domain.Identity) UserResponse {
	u := id.Account()
	out := UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		PhoneNumber:   u.PhoneNumber,
		Role:          string(id.Role()),
		AccountStatus: string(id.AccountStatus()),
	}
	if o, ok := id.(domain.Owner); ok {
		quota := o.Profile.ResidencesToPublish
		out.ResidencesToPublish = &quota
		out.Address = o.Profile.Address
	}
	return out
}
