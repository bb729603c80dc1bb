package auth

import (
	"errors"
	"net/http"

	"resirent/internal/pkg/response"
	"resirent/internal/pkg/storage"
	"resirent/internal/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
	log     *logrus.Logger
}

func NewHandler(service *Service, log *logrus.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	v1.POST("/register/owner", h.RegisterOwner)
	v1.POST("/register/renter", h.RegisterRenter)
	v1.POST("/login", h.Login)
	v1.POST("/login/refresh", h.Refresh)
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.GET("/users/me", h.GetMe)
}

// RegisterOwner handles POST /api/v1/register/owner (multipart with
// id_front_photo and id_back_photo files).
func (h *Handler) RegisterOwner(c *gin.Context) {
	var req RegisterOwnerRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	owner, err := h.service.RegisterOwner(c.Request.Context(), req, formFile(c, "id_front_photo"), formFile(c, "id_back_photo"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toUserResponse(owner))
}

// RegisterRenter handles POST /api/v1/register/renter.
func (h *Handler) RegisterRenter(c *gin.Context) {
	var req RegisterRenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	renter, err := h.service.RegisterRenter(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toUserResponse(renter))
}

// Login handles POST /api/v1/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, LoginResponse{TokenPair: res.Tokens, User: toUserResponse(res.Identity)})
}

// Refresh handles POST /api/v1/login/refresh.
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if err := validator.Validate(req); err != nil {
		h.handleError(c, err)
		return
	}

	res, err := h.service.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, LoginResponse{TokenPair: res.Tokens, User: toUserResponse(res.Identity)})
}

// GetMe handles GET /api/v1/users/me.
func (h *Handler) GetMe(c *gin.Context) {
	id, err := h.service.Me(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(id))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var verr *validator.Error
	switch {
	case errors.As(err, &verr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), verr.Fields)
	case errors.Is(err, ErrEmailAlreadyExists):
		response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
	case errors.Is(err, ErrUsernameAlreadyExists):
		response.Error(c, http.StatusConflict, "USERNAME_EXISTS", "This username is already taken")
	case errors.Is(err, ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", ErrInvalidCredentials.Error())
	case errors.Is(err, ErrInvalidToken):
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", ErrInvalidToken.Error())
	default:
		h.log.WithError(err).WithField("path", c.FullPath()).Error("auth request failed")
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func formFile(c *gin.Context, field string) *storage.Upload {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	u := storage.FromMultipart(fh)
	return &u
}
