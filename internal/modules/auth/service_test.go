package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"resirent/internal/domain"
	"resirent/internal/pkg/jwt"
	"resirent/internal/pkg/logger"
	"resirent/internal/pkg/storage"
	"resirent/internal/pkg/validator"
	"resirent/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 41
	}
	return args.Error(0)
}

func (m *mockUserRepo) CreateOwner(ctx context.Context, u *domain.User, p *domain.OwnerProfile) error {
	args := m.Called(ctx, u, p)
	if args.Error(0) == nil {
		u.ID = 42
		p.UserID = 42
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetIdentity(ctx context.Context, id int64) (domain.Identity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Identity), args.Error(1)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

var gifImage = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")

type testEnv struct {
	repo    *mockUserRepo
	tokens  *jwt.Service
	root    string
	service *Service
}

func newTestEnv(t *testing.T) *testEnv {
	root := t.TempDir()
	env := &testEnv{
		repo:   &mockUserRepo{},
		tokens: jwt.New("test-secret", 15*time.Minute, time.Hour),
		root:   root,
	}
	env.service = NewService(env.repo, env.tokens, storage.NewLocal(root, "/media", 1<<20), logger.Discard()).
		WithBcryptCost(bcrypt.MinCost)
	return env
}

func (e *testEnv) storedDocuments(t *testing.T) []string {
	entries, err := os.ReadDir(filepath.Join(e.root, string(storage.IDDocuments)))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, en := range entries {
		names = append(names, en.Name())
	}
	return names
}

func ownerRequest() RegisterOwnerRequest {
	return RegisterOwnerRequest{
		Email:       "Host@Example.com",
		Username:    "host",
		Password:    "s3cret-pass",
		FirstName:   "Hana",
		LastName:    "Host",
		Address:     "9 Rua Augusta",
		PhoneNumber: "+351911111111",
	}
}

func docs() (*storage.Upload, *storage.Upload) {
	front := storage.FromBytes("front.gif", gifImage)
	back := storage.FromBytes("back.gif", gifImage)
	return &front, &back
}

func TestRegisterOwner_DefaultsToPendingWithQuotaOne(t *testing.T) {
	env := newTestEnv(t)
	env.repo.On("ExistsByEmail", mock.Anything, "Host@Example.com").Return(false, nil)
	env.repo.On("ExistsByUsername", mock.Anything, "host").Return(false, nil)
	env.repo.On("CreateOwner", mock.Anything, mock.Anything, mock.MatchedBy(func(p *domain.OwnerProfile) bool {
		return p.AccountStatus == domain.StatusPending && p.ResidencesToPublish == 1
	})).Return(nil)

	front, back := docs()
	owner, err := env.service.RegisterOwner(context.Background(), ownerRequest(), front, back)
	require.NoError(t, err)

	assert.Equal(t, int64(42), owner.User.ID)
	assert.False(t, owner.IsActive())
	assert.Contains(t, owner.Profile.IDFrontPhoto, "/media/id_documents/")
	assert.NotEqual(t, owner.Profile.IDFrontPhoto, owner.Profile.IDBackPhoto)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(owner.User.PasswordHash), []byte("s3cret-pass")))
	assert.Len(t, env.storedDocuments(t), 2)
	env.repo.AssertExpectations(t)
}

func TestRegisterOwner_ExplicitQuota(t *testing.T) {
	env := newTestEnv(t)
	env.repo.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)
	env.repo.On("ExistsByUsername", mock.Anything, mock.Anything).Return(false, nil)
	env.repo.On("CreateOwner", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := ownerRequest()
	quota := 3
	req.ResidencesToPublish = &quota
	front, back := docs()

	owner, err := env.service.RegisterOwner(context.Background(), req, front, back)
	require.NoError(t, err)
	assert.Equal(t, 3, owner.Profile.ResidencesToPublish)
}

func TestRegisterOwner_RequiresBothDocuments(t *testing.T) {
	env := newTestEnv(t)
	front, _ := docs()

	_, err := env.service.RegisterOwner(context.Background(), ownerRequest(), front, nil)
	assert.ErrorIs(t, err, ErrIDPhotoRequired)
	var verr *validator.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "id_back_photo")

	bad := storage.FromBytes("front.txt", []byte("plain text"))
	_, back := docs()
	_, err = env.service.RegisterOwner(context.Background(), ownerRequest(), &bad, back)
	assert.ErrorIs(t, err, storage.ErrInvalidMimeType)

	env.repo.AssertNotCalled(t, "CreateOwner", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, env.storedDocuments(t))
}

func TestRegisterOwner_RejectsBadFields(t *testing.T) {
	env := newTestEnv(t)
	req := ownerRequest()
	req.Email = "not-an-email"
	req.Password = "short"
	negative := -1
	req.ResidencesToPublish = &negative
	front, back := docs()

	_, err := env.service.RegisterOwner(context.Background(), req, front, back)
	var verr *validator.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
	assert.Contains(t, verr.Fields, "residences_to_publish")
}

func TestRegisterOwner_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.repo.On("ExistsByEmail", mock.Anything, mock.Anything).Return(true, nil)
	front, back := docs()

	_, err := env.service.RegisterOwner(context.Background(), ownerRequest(), front, back)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	assert.Empty(t, env.storedDocuments(t))
}

func TestRegisterOwner_FailedInsertRemovesDocuments(t *testing.T) {
	env := newTestEnv(t)
	env.repo.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)
	env.repo.On("ExistsByUsername", mock.Anything, mock.Anything).Return(false, nil)
	env.repo.On("CreateOwner", mock.Anything, mock.Anything, mock.Anything).Return(repository.ErrDuplicateUsername)
	front, back := docs()

	_, err := env.service.RegisterOwner(context.Background(), ownerRequest(), front, back)
	assert.ErrorIs(t, err, ErrUsernameAlreadyExists)
	assert.Empty(t, env.storedDocuments(t))
}

func TestRegisterRenter(t *testing.T) {
	env := newTestEnv(t)
	env.repo.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)
	env.repo.On("ExistsByUsername", mock.Anything, "guest").Return(true, nil)

	req := RegisterRenterRequest{
		Email: "guest@example.com", Username: "guest", Password: "long-enough",
		FirstName: "Gus", LastName: "Guest", PhoneNumber: "+100",
	}
	_, err := env.service.RegisterRenter(context.Background(), req)
	assert.ErrorIs(t, err, ErrUsernameAlreadyExists)

	env.repo.ExpectedCalls = nil
	env.repo.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)
	env.repo.On("ExistsByUsername", mock.Anything, mock.Anything).Return(false, nil)
	env.repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	renter, err := env.service.RegisterRenter(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleRenter, renter.Role())
	assert.Equal(t, domain.StatusActive, renter.AccountStatus())
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{ID: 7, Email: "guest@example.com", FirstName: "Gus", PasswordHash: string(hash)}

	env.repo.On("GetByEmail", mock.Anything, "guest@example.com").Return(user, nil)
	env.repo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)
	env.repo.On("GetIdentity", mock.Anything, int64(7)).Return(domain.Renter{User: *user}, nil)
	ctx := context.Background()

	res, err := env.service.Login(ctx, LoginRequest{Email: "guest@example.com", Password: "right-password"})
	require.NoError(t, err)

	claims, err := env.tokens.ValidateAccessToken(res.Tokens.Access)
	require.NoError(t, err)
	assert.Equal(t, "renter", claims.Role)
	assert.Equal(t, "active", claims.AccountStatus)
	assert.Nil(t, claims.ResidencesToPublish)
	_, err = env.tokens.ValidateRefreshToken(res.Tokens.Refresh)
	assert.NoError(t, err)

	_, err = env.service.Login(ctx, LoginRequest{Email: "guest@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.service.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_ReloadsIdentity(t *testing.T) {
	env := newTestEnv(t)
	user := domain.User{ID: 42, Email: "host@example.com"}
	pending := domain.Owner{User: user, Profile: domain.OwnerProfile{UserID: 42, AccountStatus: domain.StatusPending, ResidencesToPublish: 1}}
	active := pending
	active.Profile.AccountStatus = domain.StatusActive

	first, err := env.tokens.GeneratePair(pending)
	require.NoError(t, err)

	env.repo.On("GetIdentity", mock.Anything, int64(42)).Return(active, nil)
	res, err := env.service.Refresh(context.Background(), first.Refresh)
	require.NoError(t, err)

	claims, err := env.tokens.ValidateAccessToken(res.Tokens.Access)
	require.NoError(t, err)
	assert.Equal(t, "owner", claims.Role)
	assert.Equal(t, "active", claims.AccountStatus)
	require.NotNil(t, claims.ResidencesToPublish)
	assert.Equal(t, 1, *claims.ResidencesToPublish)

	_, err = env.service.Refresh(context.Background(), first.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = env.service.Refresh(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh_DeletedUser(t *testing.T) {
	env := newTestEnv(t)
	pair, err := env.tokens.GeneratePair(domain.Renter{User: domain.User{ID: 9}})
	require.NoError(t, err)
	env.repo.On("GetIdentity", mock.Anything, int64(9)).Return(nil, gorm.ErrRecordNotFound)

	_, err = env.service.Refresh(context.Background(), pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
