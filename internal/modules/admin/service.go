package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resirent/internal/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service holds the moderation actions on owner accounts. It is the only
// code that changes an owner's account status or publication quota.
type Service struct {
	owners OwnerRepository
	log    *logrus.Logger
}

func NewService(owners OwnerRepository, log *logrus.Logger) *Service {
	return &Service{owners: owners, log: log}
}

// ApproveOwner activates a pending or suspended owner.
func (s *Service) ApproveOwner(ctx context.Context, userID int64) (*domain.OwnerProfile, error) {
	return s.SetStatus(ctx, userID, string(domain.StatusActive))
}

// SuspendOwner hides the owner's residences and blocks further publishing.
func (s *Service) SuspendOwner(ctx context.Context, userID int64) (*domain.OwnerProfile, error) {
	return s.SetStatus(ctx, userID, string(domain.StatusSuspended))
}

func (s *Service) SetStatus(ctx context.Context, userID int64, status string) (*domain.OwnerProfile, error) {
	next := domain.AccountStatus(strings.ToLower(strings.TrimSpace(status)))
	if !next.Valid() {
		return nil, ErrInvalidStatus
	}

	var previous domain.AccountStatus
	p, err := s.owners.UpdateOwnerProfile(ctx, userID, func(p *domain.OwnerProfile) error {
		previous = p.AccountStatus
		if !p.AccountStatus.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.AccountStatus, next)
		}
		p.AccountStatus = next
		return nil
	})
	if err != nil {
		return nil, s.wrap(err, "set status")
	}

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"from":    previous,
		"to":      next,
	}).Info("owner account status changed")
	return p, nil
}

// SetQuota changes how many residences the owner may publish. Lowering it
// below the current count keeps existing residences but blocks new ones.
func (s *Service) SetQuota(ctx context.Context, userID int64, quota int) (*domain.OwnerProfile, error) {
	if quota < 0 {
		return nil, ErrInvalidQuota
	}

	var previous int
	p, err := s.owners.UpdateOwnerProfile(ctx, userID, func(p *domain.OwnerProfile) error {
		previous = p.ResidencesToPublish
		p.ResidencesToPublish = quota
		return nil
	})
	if err != nil {
		return nil, s.wrap(err, "set quota")
	}

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"from":    previous,
		"to":      quota,
	}).Info("owner quota changed")
	return p, nil
}

// ListOwners returns every owner, or only those in status when it is set.
func (s *Service) ListOwners(ctx context.Context, status string) ([]domain.OwnerSummary, error) {
	var filter *domain.AccountStatus
	if status = strings.TrimSpace(status); status != "" {
		st := domain.AccountStatus(strings.ToLower(status))
		if !st.Valid() {
			return nil, ErrInvalidStatus
		}
		filter = &st
	}

	list, err := s.owners.ListOwners(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("admin: list owners: %w", err)
	}
	return list, nil
}

func (s *Service) wrap(err error, op string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrOwnerNotFound
	case errors.Is(err, ErrInvalidTransition):
		return err
	}
	return fmt.Errorf("admin: %s: %w", op, err)
}
