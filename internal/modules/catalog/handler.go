package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"resirent/internal/domain"
	"resirent/internal/modules/access"
	"resirent/internal/pkg/response"
	"resirent/internal/pkg/storage"
	"resirent/internal/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	service       *Service
	publicBaseURL string
	log           *logrus.Logger
}

// NewHandler builds the catalog endpoints. Photo URLs are made absolute with
// publicBaseURL, or with the request's own scheme and host when it is empty.
func NewHandler(service *Service, publicBaseURL string, log *logrus.Logger) *Handler {
	return &Handler{
		service:       service,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		log:           log,
	}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	v1.GET("/residences/public", h.ListPublic)
	v1.GET("/residences/public/:id", h.GetPublic)
}

// RegisterOwnerRoutes expects a group that already enforces authentication
// and the active-owner check.
func (h *Handler) RegisterOwnerRoutes(owners *gin.RouterGroup) {
	owners.GET("/residences", h.ListMine)
	owners.POST("/residences", h.Create)
	owners.GET("/residences/:id", h.Get)
	owners.PUT("/residences/:id", h.Replace)
	owners.PATCH("/residences/:id", h.Patch)
	owners.DELETE("/residences/:id", h.Delete)
}

// Create handles POST /api/v1/residences (multipart, images in uploaded_images).
func (h *Handler) Create(c *gin.Context) {
	var req CreateResidenceRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	res, err := h.service.CreateResidence(c.Request.Context(), c.GetInt64("user_id"), req, uploadedImages(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toResidenceResponse(res, h.absolute(c)))
}

// ListMine handles GET /api/v1/residences.
func (h *Handler) ListMine(c *gin.Context) {
	list, err := h.service.ListOwnerResidences(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	abs := h.absolute(c)
	out := make([]ResidenceResponse, 0, len(list))
	for i := range list {
		out = append(out, toResidenceResponse(&list[i], abs))
	}
	response.Success(c, http.StatusOK, out)
}

// Get handles GET /api/v1/residences/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := residenceID(c)
	if !ok {
		return
	}
	res, err := h.service.GetOwnerResidence(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toResidenceResponse(res, h.absolute(c)))
}

// Replace handles PUT /api/v1/residences/:id. Required fields must all be
// present.
func (h *Handler) Replace(c *gin.Context) {
	id, ok := residenceID(c)
	if !ok {
		return
	}
	var req CreateResidenceRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if err := validator.Validate(req); err != nil {
		h.handleError(c, err)
		return
	}
	h.update(c, id, req.Full())
}

// Patch handles PATCH /api/v1/residences/:id.
func (h *Handler) Patch(c *gin.Context) {
	id, ok := residenceID(c)
	if !ok {
		return
	}
	var req UpdateResidenceRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	h.update(c, id, req)
}

func (h *Handler) update(c *gin.Context, id int64, req UpdateResidenceRequest) {
	res, err := h.service.UpdateResidence(c.Request.Context(), c.GetInt64("user_id"), id, req, uploadedImages(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toResidenceResponse(res, h.absolute(c)))
}

// Delete handles DELETE /api/v1/residences/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := residenceID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteResidence(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListPublic handles GET /api/v1/residences/public.
//
// Query: city, country, min_price, max_price, available_from, available_to
// (YYYY-MM-DD), limit, offset.
func (h *Handler) ListPublic(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	list, total, err := h.service.ListPublicResidences(c.Request.Context(), f)
	if err != nil {
		h.handleError(c, err)
		return
	}

	abs := h.absolute(c)
	items := make([]PublicResidenceItem, 0, len(list))
	for i := range list {
		items = append(items, toPublicItem(&list[i], abs))
	}
	response.Success(c, http.StatusOK, response.Page{Items: items, Total: total, Limit: pageSize(f.Limit), Offset: f.Offset})
}

// GetPublic handles GET /api/v1/residences/public/:id.
func (h *Handler) GetPublic(c *gin.Context) {
	id, ok := residenceID(c)
	if !ok {
		return
	}
	res, err := h.service.GetPublicResidence(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toPublicDetail(res, h.absolute(c)))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var verr *validator.Error
	switch {
	case errors.As(err, &verr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), verr.Fields)
	case errors.Is(err, ErrQuotaExceeded):
		response.Error(c, http.StatusForbidden, "QUOTA_EXCEEDED", QuotaExceededMessage)
	case errors.Is(err, ErrNotOwner):
		response.Error(c, http.StatusForbidden, "PERMISSION_DENIED", access.InactiveOwnerMessage)
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Residence not found")
	default:
		h.log.WithError(err).WithField("path", c.FullPath()).Error("catalog request failed")
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func pageSize(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	return min(limit, MaxPageSize)
}

func residenceID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid residence ID")
		return 0, false
	}
	return id, true
}

func uploadedImages(c *gin.Context) []storage.Upload {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	files := form.File["uploaded_images"]
	out := make([]storage.Upload, 0, len(files))
	for _, fh := range files {
		out = append(out, storage.FromMultipart(fh))
	}
	return out
}

func parseFilter(c *gin.Context) (domain.ResidenceFilter, error) {
	f := domain.ResidenceFilter{
		City:    c.Query("city"),
		Country: c.Query("country"),
	}

	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{{"min_price", &f.MinPrice}, {"max_price", &f.MaxPrice}} {
		raw := strings.TrimSpace(c.Query(p.name))
		if raw == "" {
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return f, validator.Field(p.name, errors.New("enter a number"))
		}
		*p.dst = &v
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"available_from", &f.AvailableFrom}, {"available_to", &f.AvailableTo}} {
		raw := strings.TrimSpace(c.Query(p.name))
		if raw == "" {
			continue
		}
		v, err := domain.ParseDate(raw)
		if err != nil {
			return f, validator.Field(p.name, errors.New("use the YYYY-MM-DD format"))
		}
		*p.dst = &v
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &f.Limit}, {"offset", &f.Offset}} {
		raw := strings.TrimSpace(c.Query(p.name))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return f, validator.Field(p.name, errors.New("enter a non-negative integer"))
		}
		*p.dst = v
	}
	return f, nil
}

// absolute returns a function that turns stored media paths into absolute
// URLs. Values that already carry a scheme pass through.
func (h *Handler) absolute(c *gin.Context) urlFunc {
	base := h.publicBaseURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + c.Request.Host
	}
	return func(path string) string {
		if path == "" || strings.Contains(path, "://") {
			return path
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return base + path
	}
}
