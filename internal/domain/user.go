package domain

import "time"

type Role string

const (
	RoleOwner  Role = "owner"
	RoleRenter Role = "renter"
)

type AccountStatus string

const (
	StatusPending   AccountStatus = "pending"
	StatusActive    AccountStatus = "active"
	StatusSuspended AccountStatus = "suspended"
)

// DefaultResidencesToPublish is the quota a freshly registered owner gets.
const DefaultResidencesToPublish = 1

func (s AccountStatus) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusSuspended:
		return true
	}
	return false
}

// CanTransitionTo reports whether an administrator may move an owner account
// from s to next. Suspended accounts may be reinstated.
func (s AccountStatus) CanTransitionTo(next AccountStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusActive || next == StatusSuspended
	case StatusActive:
		return next == StatusSuspended
	case StatusSuspended:
		return next == StatusActive
	}
	return false
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OwnerProfile extends a User that registered as an owner. It shares the
// user's primary key.
type OwnerProfile struct {
	UserID              int64         `json:"user_id"`
	Address             string        `json:"address"`
	PhoneNumber         string        `json:"phone_number"`
	IDFrontPhoto        string        `json:"id_front_photo"`
	IDBackPhoto         string        `json:"id_back_photo"`
	ResidencesToPublish int           `json:"residences_to_publish"`
	AccountStatus       AccountStatus `json:"account_status"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// OwnerSummary is one row of the administrative owner listing.
type OwnerSummary struct {
	User           User
	Profile        OwnerProfile
	ResidenceCount int64
}
