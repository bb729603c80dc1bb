package admin

import (
	"context"
	"testing"

	"resirent/internal/domain"
	"resirent/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeOwnerRepo keeps profiles in memory and applies updates the way the
// real repository does: nothing is written when apply fails.
type fakeOwnerRepo struct {
	mock.Mock
	profiles map[int64]domain.OwnerProfile
}

func newFakeOwnerRepo(profiles ...domain.OwnerProfile) *fakeOwnerRepo {
	r := &fakeOwnerRepo{profiles: map[int64]domain.OwnerProfile{}}
	for _, p := range profiles {
		r.profiles[p.UserID] = p
	}
	return r
}

func (r *fakeOwnerRepo) UpdateOwnerProfile(ctx context.Context, userID int64, apply func(p *domain.OwnerProfile) error) (*domain.OwnerProfile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if err := apply(&p); err != nil {
		return nil, err
	}
	r.profiles[userID] = p
	return &p, nil
}

func (r *fakeOwnerRepo) ListOwners(ctx context.Context, status *domain.AccountStatus) ([]domain.OwnerSummary, error) {
	args := r.Called(ctx, status)
	return args.Get(0).([]domain.OwnerSummary), args.Error(1)
}

func TestApproveOwner(t *testing.T) {
	repo := newFakeOwnerRepo(domain.OwnerProfile{UserID: 1, AccountStatus: domain.StatusPending, ResidencesToPublish: 1})
	svc := NewService(repo, logger.Discard())

	p, err := svc.ApproveOwner(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, p.AccountStatus)
	assert.Equal(t, domain.StatusActive, repo.profiles[1].AccountStatus)
	assert.Equal(t, 1, repo.profiles[1].ResidencesToPublish)
}

func TestSetStatus_Transitions(t *testing.T) {
	all := []domain.AccountStatus{domain.StatusPending, domain.StatusActive, domain.StatusSuspended}
	for _, from := range all {
		for _, to := range all {
			repo := newFakeOwnerRepo(domain.OwnerProfile{UserID: 1, AccountStatus: from})
			svc := NewService(repo, logger.Discard())

			_, err := svc.SetStatus(context.Background(), 1, string(to))
			if from.CanTransitionTo(to) {
				require.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, to, repo.profiles[1].AccountStatus)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", from, to)
				assert.Equal(t, from, repo.profiles[1].AccountStatus)
			}
		}
	}
}

func TestSuspendAndReinstate(t *testing.T) {
	repo := newFakeOwnerRepo(domain.OwnerProfile{UserID: 1, AccountStatus: domain.StatusActive})
	svc := NewService(repo, logger.Discard())
	ctx := context.Background()

	_, err := svc.SuspendOwner(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuspended, repo.profiles[1].AccountStatus)

	_, err = svc.ApproveOwner(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, repo.profiles[1].AccountStatus)
}

func TestSetStatus_Errors(t *testing.T) {
	svc := NewService(newFakeOwnerRepo(), logger.Discard())

	_, err := svc.SetStatus(context.Background(), 1, "banned")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.ApproveOwner(context.Background(), 99)
	assert.ErrorIs(t, err, ErrOwnerNotFound)
}

func TestSetQuota(t *testing.T) {
	repo := newFakeOwnerRepo(domain.OwnerProfile{UserID: 1, AccountStatus: domain.StatusActive, ResidencesToPublish: 1})
	svc := NewService(repo, logger.Discard())
	ctx := context.Background()

	p, err := svc.SetQuota(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, p.ResidencesToPublish)
	assert.Equal(t, domain.StatusActive, p.AccountStatus)

	_, err = svc.SetQuota(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, repo.profiles[1].ResidencesToPublish)

	_, err = svc.SetQuota(ctx, 1, -1)
	assert.ErrorIs(t, err, ErrInvalidQuota)

	_, err = svc.SetQuota(ctx, 2, 3)
	assert.ErrorIs(t, err, ErrOwnerNotFound)
}

func TestListOwners_StatusFilter(t *testing.T) {
	repo := newFakeOwnerRepo()
	pending := domain.StatusPending
	repo.On("ListOwners", mock.Anything, &pending).Return([]domain.OwnerSummary{{User: domain.User{ID: 1}}}, nil)
	repo.On("ListOwners", mock.Anything, (*domain.AccountStatus)(nil)).Return([]domain.OwnerSummary{{}, {}}, nil)
	svc := NewService(repo, logger.Discard())

	list, err := svc.ListOwners(context.Background(), "Pending")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = svc.ListOwners(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.ListOwners(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
