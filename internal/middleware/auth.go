package middleware

import (
	"net/http"
	"strconv"

	"resirent/internal/modules/access"
	"resirent/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireActiveOwner lets through only owners whose account is active right
// now. The status is read from storage, not from the token, so approvals and
// suspensions apply immediately.
func RequireActiveOwner(gate *access.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !gate.IsActiveOwner(c.Request.Context(), c.GetInt64("user_id")) {
			response.Abort(c, http.StatusForbidden, "PERMISSION_DENIED", access.InactiveOwnerMessage)
			return
		}
		c.Next()
	}
}

// RequireBookingOwner checks that the caller owns the residence of the
// booking named by the URL parameter. Other people's bookings look missing.
func RequireBookingOwner(gate *access.Gate, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, err := strconv.ParseInt(c.Param(param), 10, 64)
		if err != nil || bookingID <= 0 {
			response.Abort(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
			return
		}
		if !gate.IsBookingOwnerOfResidence(c.Request.Context(), c.GetInt64("user_id"), bookingID) {
			response.Abort(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
			return
		}
		c.Next()
	}
}
