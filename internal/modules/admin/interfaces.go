package admin

import (
	"context"

	"resirent/internal/domain"
)

type OwnerRepository interface {
	UpdateOwnerProfile(ctx context.Context, userID int64, apply func(p *domain.OwnerProfile) error) (*domain.OwnerProfile, error)
	ListOwners(ctx context.Context, status *domain.AccountStatus) ([]domain.OwnerSummary, error)
}
