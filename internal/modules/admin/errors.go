package admin

import "errors"

var (
	ErrOwnerNotFound     = errors.New("owner not found")
	ErrInvalidStatus     = errors.New("status must be one of: pending, active, suspended")
	ErrInvalidTransition = errors.New("account status cannot change that way")
	ErrInvalidQuota      = errors.New("residences_to_publish must not be negative")
)
