package catalog

import "errors"

// QuotaExceededMessage is shown to owners who already publish as many
// residences as their plan allows.
const QuotaExceededMessage = "You have reached your residence publication limit. Please contact the administrator to upgrade your plan."

var (
	ErrQuotaExceeded = errors.New("residence publication limit reached")
	ErrNotFound      = errors.New("residence not found")
	ErrNotOwner      = errors.New("user has no owner profile")
	ErrInvalidPrice  = errors.New("enter a valid amount with at most 2 decimal places")
)
