package catalog

import (
	"context"

	"resirent/internal/domain"
)

// ResidenceRepository is the storage the catalog needs.
type ResidenceRepository interface {
	CreateWithinQuota(ctx context.Context, res *domain.Residence, check func(profile domain.OwnerProfile, count int64) error) error
	NextPhotoPosition(ctx context.Context, residenceID int64) (int, error)
	AddPhoto(ctx context.Context, p *domain.ResidencePhoto) error
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Residence, error)
	GetByID(ctx context.Context, id int64) (*domain.Residence, error)
	Update(ctx context.Context, res *domain.Residence) error
	DeleteForOwner(ctx context.Context, ownerID, id int64) error
	ListPublic(ctx context.Context, f domain.ResidenceFilter) ([]domain.Residence, int64, error)
	GetPublic(ctx context.Context, id int64) (*domain.Residence, error)
}
