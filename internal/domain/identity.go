package domain

// RenterAccountStatus is the status every renter reports. Renters have no
// approval workflow.
const RenterAccountStatus = StatusActive

// Identity is the resolved kind of an authenticated user: exactly one of
// Renter or Owner.
type Identity interface {
	Account() User
	Role() Role
	AccountStatus() AccountStatus
	isIdentity()
}

type Renter struct {
	User User
}

type Owner struct {
	User    User
	Profile OwnerProfile
}

func (r Renter) Account() User { return r.User }

func (Renter) Role() Role { return RoleRenter }

func (Renter) AccountStatus() AccountStatus { return RenterAccountStatus }

func (Renter) isIdentity() {}

func (o Owner) Account() User { return o.User }

func (Owner) Role() Role { return RoleOwner }

func (o Owner) AccountStatus() AccountStatus { return o.Profile.AccountStatus }

func (Owner) isIdentity() {}

// IsActive reports whether the owner may publish residences.
func (o Owner) IsActive() bool {
	return o.Profile.AccountStatus == StatusActive
}

// NewIdentity resolves a loaded user into its variant. A user with an owner
// profile is an Owner; everyone else is a Renter.
func NewIdentity(u User, profile *OwnerProfile) Identity {
	if profile != nil {
		return Owner{User: u, Profile: *profile}
	}
	return Renter{User: u}
}
