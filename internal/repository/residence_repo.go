package repository

import (
	"context"
	"strings"
	"time"

	"resirent/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResidenceRepository struct {
	db *gorm.DB
}

func NewResidenceRepository(db *gorm.DB) *ResidenceRepository {
	return &ResidenceRepository{db: db}
}

type residenceModel struct {
	ID            int64                 `gorm:"column:id;primaryKey"`
	OwnerID       int64                 `gorm:"column:owner_id;not null;index"`
	Owner         *userModel            `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Title         string                `gorm:"column:title;size:200;not null"`
	Description   string                `gorm:"column:description;type:text;not null"`
	Address       string                `gorm:"column:address;size:255;not null"`
	City          string                `gorm:"column:city;size:100;not null;index"`
	Country       string                `gorm:"column:country;size:100;not null"`
	PricePerNight decimal.Decimal       `gorm:"column:price_per_night;type:numeric(10,2);not null"`
	IsAvailable   bool                  `gorm:"column:is_available;not null"`
	Conditions    *string               `gorm:"column:conditions;type:text"`
	CreatedAt     time.Time             `gorm:"column:created_at;index"`
	UpdatedAt     time.Time             `gorm:"column:updated_at"`
	Photos        []residencePhotoModel `gorm:"foreignKey:ResidenceID;constraint:OnDelete:CASCADE"`
}

func (residenceModel) TableName() string { return "residences" }

type residencePhotoModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	ResidenceID int64     `gorm:"column:residence_id;not null;index"`
	Image       string    `gorm:"column:image;size:255;not null"`
	Position    int       `gorm:"column:position;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (residencePhotoModel) TableName() string { return "residence_photos" }

func toDomainResidence(m residenceModel) *domain.Residence {
	r := &domain.Residence{
		ID:            m.ID,
		OwnerID:       m.OwnerID,
		Title:         m.Title,
		Description:   m.Description,
		Address:       m.Address,
		City:          m.City,
		Country:       m.Country,
		PricePerNight: m.PricePerNight,
		IsAvailable:   m.IsAvailable,
		Conditions:    m.Conditions,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	for _, p := range m.Photos {
		r.Photos = append(r.Photos, toDomainPhoto(p))
	}
	if m.Owner != nil {
		r.Owner = toDomainUser(*m.Owner)
	}
	return r
}

func toResidenceModel(r *domain.Residence) residenceModel {
	return residenceModel{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		Title:         r.Title,
		Description:   r.Description,
		Address:       r.Address,
		City:          r.City,
		Country:       r.Country,
		PricePerNight: r.PricePerNight.Round(2),
		IsAvailable:   r.IsAvailable,
		Conditions:    r.Conditions,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toDomainPhoto(m residencePhotoModel) domain.ResidencePhoto {
	return domain.ResidencePhoto{
		ID:          m.ID,
		ResidenceID: m.ResidenceID,
		Image:       m.Image,
		Position:    m.Position,
		CreatedAt:   m.CreatedAt,
	}
}

func orderedPhotos(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

// CreateWithinQuota inserts the residence while holding a lock on the owner's
// profile row. check sees the locked profile and the owner's current
// residence count; a non-nil result aborts the insert.
func (r *ResidenceRepository) CreateWithinQuota(ctx context.Context, res *domain.Residence, check func(profile domain.OwnerProfile, count int64) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pm ownerProfileModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&pm, "user_id = ?", res.OwnerID).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&residenceModel{}).
			Where("owner_id = ?", res.OwnerID).
			Count(&count).Error; err != nil {
			return err
		}

		if err := check(*toDomainProfile(pm), count); err != nil {
			return err
		}

		m := toResidenceModel(res)
		if err := tx.Omit(clause.Associations).Create(&m).Error; err != nil {
			return err
		}
		*res = *toDomainResidence(m)
		return nil
	})
}

// NextPhotoPosition returns the position the next appended photo should take.
func (r *ResidenceRepository) NextPhotoPosition(ctx context.Context, residenceID int64) (int, error) {
	var maxPos int
	err := r.db.WithContext(ctx).
		Model(&residencePhotoModel{}).
		Select("COALESCE(MAX(position), -1)").
		Where("residence_id = ?", residenceID).
		Row().
		Scan(&maxPos)
	if err != nil {
		return 0, err
	}
	return maxPos + 1, nil
}

func (r *ResidenceRepository) AddPhoto(ctx context.Context, p *domain.ResidencePhoto) error {
	m := residencePhotoModel{
		ResidenceID: p.ResidenceID,
		Image:       p.Image,
		Position:    p.Position,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*p = toDomainPhoto(m)
	return nil
}

func (r *ResidenceRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Residence, error) {
	var rows []residenceModel
	err := r.db.WithContext(ctx).
		Preload("Photos", orderedPhotos).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainResidences(rows), nil
}

func (r *ResidenceRepository) GetByID(ctx context.Context, id int64) (*domain.Residence, error) {
	var m residenceModel
	if err := r.db.WithContext(ctx).Preload("Photos", orderedPhotos).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainResidence(m), nil
}

// Update writes every editable column of an owned residence.
func (r *ResidenceRepository) Update(ctx context.Context, res *domain.Residence) error {
	tx := r.db.WithContext(ctx).
		Model(&residenceModel{}).
		Where("id = ? AND owner_id = ?", res.ID, res.OwnerID).
		Updates(map[string]any{
			"title":           res.Title,
			"description":     res.Description,
			"address":         res.Address,
			"city":            res.City,
			"country":         res.Country,
			"price_per_night": res.PricePerNight.Round(2),
			"is_available":    res.IsAvailable,
			"conditions":      res.Conditions,
			"updated_at":      time.Now(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteForOwner removes the residence; photos and bookings go with it
// through ON DELETE CASCADE.
func (r *ResidenceRepository) DeleteForOwner(ctx context.Context, ownerID, id int64) error {
	tx := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&residenceModel{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// publicScope keeps residences that are available and belong to an owner
// whose account is active. Evaluated on every query.
func publicScope(db *gorm.DB) *gorm.DB {
	return db.
		Joins("JOIN owner_profiles op ON op.user_id = residences.owner_id").
		Where("residences.is_available = ? AND op.account_status = ?", true, string(domain.StatusActive))
}

func applyResidenceFilter(db *gorm.DB, f domain.ResidenceFilter) *gorm.DB {
	if city := strings.TrimSpace(f.City); city != "" {
		db = db.Where("LOWER(residences.city) = ?", strings.ToLower(city))
	}
	if country := strings.TrimSpace(f.Country); country != "" {
		db = db.Where("LOWER(residences.country) = ?", strings.ToLower(country))
	}
	if f.MinPrice != nil {
		db = db.Where("residences.price_per_night >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		db = db.Where("residences.price_per_night <= ?", *f.MaxPrice)
	}
	if f.AvailableFrom != nil && f.AvailableTo != nil {
		db = db.Where(`NOT EXISTS (
			SELECT 1 FROM bookings b
			WHERE b.residence_id = residences.id
			  AND b.status = ?
			  AND b.check_in_date < ?
			  AND b.check_out_date > ?)`,
			string(domain.BookingConfirmed),
			datatypes.Date(*f.AvailableTo),
			datatypes.Date(*f.AvailableFrom),
		)
	}
	return db
}

// ListPublic returns one page of the public catalog, newest first, and the
// total number of matches.
func (r *ResidenceRepository) ListPublic(ctx context.Context, f domain.ResidenceFilter) ([]domain.Residence, int64, error) {
	base := func() *gorm.DB {
		return applyResidenceFilter(r.db.WithContext(ctx).Model(&residenceModel{}).Scopes(publicScope), f)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := base().
		Select("residences.*").
		Preload("Photos", orderedPhotos).
		Order("residences.created_at DESC, residences.id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var rows []residenceModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toDomainResidences(rows), total, nil
}

// GetPublic loads a publicly visible residence with its photos and owner.
func (r *ResidenceRepository) GetPublic(ctx context.Context, id int64) (*domain.Residence, error) {
	var m residenceModel
	err := r.db.WithContext(ctx).
		Model(&residenceModel{}).
		Scopes(publicScope).
		Select("residences.*").
		Preload("Photos", orderedPhotos).
		Preload("Owner").
		Where("residences.id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return toDomainResidence(m), nil
}

func toDomainResidences(rows []residenceModel) []domain.Residence {
	out := make([]domain.Residence, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainResidence(m))
	}
	return out
}
