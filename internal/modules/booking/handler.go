package booking

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"resirent/internal/pkg/response"
	"resirent/internal/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	service *Service
	log     *logrus.Logger
}

func NewHandler(service *Service, log *logrus.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// RegisterRoutes expects an authenticated group. ownsBooking guards routes
// that act on a single booking of the caller's residences.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, ownsBooking gin.HandlerFunc) {
	rg.POST("/bookings/create", h.CreateBooking)
	rg.GET("/bookings/my", h.ListMine)

	owner := rg.Group("/owner/bookings")
	owner.GET("", h.ListOwner)
	owner.GET("/export", h.ExportOwner)
	owner.PATCH("/:id/status", ownsBooking, h.UpdateStatus)
}

// CreateBooking handles POST /api/v1/bookings/create.
func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toBookingResponse(b))
}

// ListMine handles GET /api/v1/bookings/my.
func (h *Handler) ListMine(c *gin.Context) {
	list, err := h.service.ListGuestBookings(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toDetailsResponses(list))
}

// ListOwner handles GET /api/v1/owner/bookings.
func (h *Handler) ListOwner(c *gin.Context) {
	list, err := h.service.ListOwnerBookings(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toDetailsResponses(list))
}

// ExportOwner handles GET /api/v1/owner/bookings/export.
func (h *Handler) ExportOwner(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.service.ExportOwnerBookings(c.Request.Context(), c.GetInt64("user_id"), &buf); err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="bookings-%d.xlsx"`, c.GetInt64("user_id")))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// UpdateStatus handles PATCH /api/v1/owner/bookings/:id/status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if err := validator.Validate(req); err != nil {
		h.handleError(c, err)
		return
	}

	b, err := h.service.UpdateBookingStatus(c.Request.Context(), c.GetInt64("user_id"), id, req.Status)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toBookingResponse(b))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var verr *validator.Error
	switch {
	case errors.As(err, &verr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), verr.Fields)
	case errors.Is(err, ErrDatesUnavailable):
		response.Error(c, http.StatusConflict, "BOOKING_CONFLICT", "This residence is not available for the selected dates.")
	case errors.Is(err, ErrInvalidStatusTransition):
		response.Error(c, http.StatusConflict, "INVALID_STATUS_TRANSITION", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	default:
		h.log.WithError(err).WithField("path", c.FullPath()).Error("booking request failed")
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
