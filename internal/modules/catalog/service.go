package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"resirent/internal/domain"
	"resirent/internal/modules/access"
	"resirent/internal/pkg/storage"
	"resirent/internal/pkg/validator"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// maxPrice fits numeric(10,2).
var maxPrice = decimal.RequireFromString("99999999.99")

type Service struct {
	residences ResidenceRepository
	files      storage.FileStorage
	log        *logrus.Logger
}

func NewService(residences ResidenceRepository, files storage.FileStorage, log *logrus.Logger) *Service {
	return &Service{residences: residences, files: files, log: log}
}

// CreateResidence publishes a residence for an owner who already passed the
// active-owner check. The quota is enforced under a lock on the owner's
// profile. Photos are stored after the residence exists; a photo that fails
// to store is logged and skipped.
func (s *Service) CreateResidence(ctx context.Context, ownerID int64, req CreateResidenceRequest, images []storage.Upload) (*domain.Residence, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	price, err := parsePrice(req.PricePerNight)
	if err != nil {
		return nil, err
	}
	if err := s.checkImages(images); err != nil {
		return nil, err
	}

	res := &domain.Residence{
		OwnerID:       ownerID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		Address:       strings.TrimSpace(req.Address),
		City:          strings.TrimSpace(req.City),
		Country:       strings.TrimSpace(req.Country),
		PricePerNight: price,
		IsAvailable:   true,
		Conditions:    normalizeConditions(req.Conditions),
	}
	if req.IsAvailable != nil {
		res.IsAvailable = *req.IsAvailable
	}

	err = s.residences.CreateWithinQuota(ctx, res, func(profile domain.OwnerProfile, count int64) error {
		if count >= int64(profile.ResidencesToPublish) {
			return ErrQuotaExceeded
		}
		return nil
	})
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		return nil, ErrQuotaExceeded
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotOwner
	case err != nil:
		return nil, fmt.Errorf("catalog: create residence: %w", err)
	}

	s.attachPhotos(ctx, res, images, 0)
	s.log.WithFields(logrus.Fields{
		"residence_id": res.ID,
		"owner_id":     ownerID,
		"photos":       len(res.Photos),
	}).Info("residence created")
	return res, nil
}

func (s *Service) ListOwnerResidences(ctx context.Context, ownerID int64) ([]domain.Residence, error) {
	list, err := s.residences.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list owner residences: %w", err)
	}
	return list, nil
}

// GetOwnerResidence hides residences of other owners behind ErrNotFound.
func (s *Service) GetOwnerResidence(ctx context.Context, ownerID, id int64) (*domain.Residence, error) {
	res, err := s.residences.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get residence: %w", err)
	}
	if !access.IsResidenceOwner(ownerID, res) {
		return nil, ErrNotFound
	}
	return res, nil
}

// UpdateResidence applies the non-nil fields of req and appends any new
// images after the existing photos.
func (s *Service) UpdateResidence(ctx context.Context, ownerID, id int64, req UpdateResidenceRequest, images []storage.Upload) (*domain.Residence, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.checkImages(images); err != nil {
		return nil, err
	}

	res, err := s.GetOwnerResidence(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		res.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		res.Description = *req.Description
	}
	if req.Address != nil {
		res.Address = strings.TrimSpace(*req.Address)
	}
	if req.City != nil {
		res.City = strings.TrimSpace(*req.City)
	}
	if req.Country != nil {
		res.Country = strings.TrimSpace(*req.Country)
	}
	if req.PricePerNight != nil {
		price, err := parsePrice(*req.PricePerNight)
		if err != nil {
			return nil, err
		}
		res.PricePerNight = price
	}
	if req.IsAvailable != nil {
		res.IsAvailable = *req.IsAvailable
	}
	if req.Conditions != nil {
		res.Conditions = normalizeConditions(req.Conditions)
	}

	if err := s.residences.Update(ctx, res); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("catalog: update residence: %w", err)
	}

	if len(images) > 0 {
		next, err := s.residences.NextPhotoPosition(ctx, res.ID)
		if err != nil {
			return nil, fmt.Errorf("catalog: photo position: %w", err)
		}
		s.attachPhotos(ctx, res, images, next)
	}

	return s.GetOwnerResidence(ctx, ownerID, id)
}

// DeleteResidence removes the residence with its photos and bookings.
// Stored photo files are cleaned up best-effort.
func (s *Service) DeleteResidence(ctx context.Context, ownerID, id int64) error {
	res, err := s.GetOwnerResidence(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.residences.DeleteForOwner(ctx, ownerID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("catalog: delete residence: %w", err)
	}
	for _, p := range res.Photos {
		if err := s.files.Remove(ctx, p.Image); err != nil {
			s.log.WithError(err).WithField("image", p.Image).Warn("catalog: could not remove photo file")
		}
	}
	return nil
}

// ListPublicResidences reads live owner status on every call.
func (s *Service) ListPublicResidences(ctx context.Context, f domain.ResidenceFilter) ([]domain.Residence, int64, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if (f.AvailableFrom == nil) != (f.AvailableTo == nil) {
		return nil, 0, validator.Field("available_to", errors.New("available_from and available_to must be given together"))
	}
	if f.AvailableFrom != nil && !f.AvailableFrom.Before(*f.AvailableTo) {
		return nil, 0, validator.Field("available_to", errors.New("available_to must be after available_from"))
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return nil, 0, validator.Field("max_price", errors.New("max_price must not be below min_price"))
	}

	list, total, err := s.residences.ListPublic(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: list public residences: %w", err)
	}
	return list, total, nil
}

func (s *Service) GetPublicResidence(ctx context.Context, id int64) (*domain.Residence, error) {
	res, err := s.residences.GetPublic(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get public residence: %w", err)
	}
	return res, nil
}

func (s *Service) checkImages(images []storage.Upload) error {
	for _, img := range images {
		if err := s.files.Check(img); err != nil {
			return validator.Field("uploaded_images", err)
		}
	}
	return nil
}

func (s *Service) attachPhotos(ctx context.Context, res *domain.Residence, images []storage.Upload, position int) {
	for _, img := range images {
		url, err := s.files.Save(ctx, storage.ResidencePhotos, img)
		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"residence_id": res.ID,
				"filename":     img.Filename,
			}).Error("catalog: storing photo failed")
			continue
		}

		photo := domain.ResidencePhoto{ResidenceID: res.ID, Image: url, Position: position}
		if err := s.residences.AddPhoto(ctx, &photo); err != nil {
			s.log.WithError(err).WithField("residence_id", res.ID).Error("catalog: saving photo record failed")
			_ = s.files.Remove(ctx, url)
			continue
		}
		res.Photos = append(res.Photos, photo)
		position++
	}
}

func parsePrice(n json.Number) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(n.String()))
	if err != nil || price.IsNegative() || price.GreaterThan(maxPrice) || !price.Equal(price.Round(2)) {
		return decimal.Decimal{}, validator.Field("price_per_night", ErrInvalidPrice)
	}
	return price.Round(2), nil
}

func normalizeConditions(c *string) *string {
	if c == nil {
		return nil
	}
	v := strings.TrimSpace(*c)
	if v == "" {
		return nil
	}
	return &v
}
