package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resirent/internal/domain"
	"resirent/internal/pkg/jwt"
	"resirent/internal/pkg/storage"
	"resirent/internal/pkg/validator"
	"resirent/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service contains all business logic for authentication
type Service struct {
	users      UserRepository
	tokens     TokenIssuer
	files      storage.FileStorage
	log        *logrus.Logger
	bcryptCost int
}

func NewService(users UserRepository, tokens TokenIssuer, files storage.FileStorage, log *logrus.Logger) *Service {
	return &Service{
		users:      users,
		tokens:     tokens,
		files:      files,
		log:        log,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// WithBcryptCost lowers the hashing cost, for tests.
func (s *Service) WithBcryptCost(cost int) *Service {
	s.bcryptCost = cost
	return s
}

type LoginResult struct {
	Identity domain.Identity
	Tokens   jwt.TokenPair
}

// RegisterOwner creates a pending owner account. The identity document
// photos are stored first and removed again if the account cannot be
// created.
func (s *Service) RegisterOwner(ctx context.Context, req RegisterOwnerRequest, front, back *storage.Upload) (domain.Owner, error) {
	if err := validator.Validate(req); err != nil {
		return domain.Owner{}, err
	}
	for _, doc := range []struct {
		field string
		file  *storage.Upload
	}{{"id_front_photo", front}, {"id_back_photo", back}} {
		if doc.file == nil {
			return domain.Owner{}, validator.Field(doc.field, ErrIDPhotoRequired)
		}
		if err := s.files.Check(*doc.file); err != nil {
			return domain.Owner{}, validator.Field(doc.field, err)
		}
	}
	if err := s.ensureUnique(ctx, req.Email, req.Username); err != nil {
		return domain.Owner{}, err
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return domain.Owner{}, err
	}

	frontURL, err := s.files.Save(ctx, storage.IDDocuments, *front)
	if err != nil {
		return domain.Owner{}, fmt.Errorf("auth: store id front photo: %w", err)
	}
	backURL, err := s.files.Save(ctx, storage.IDDocuments, *back)
	if err != nil {
		s.discard(ctx, frontURL)
		return domain.Owner{}, fmt.Errorf("auth: store id back photo: %w", err)
	}

	quota := domain.DefaultResidencesToPublish
	if req.ResidencesToPublish != nil {
		quota = *req.ResidencesToPublish
	}

	phone := strings.TrimSpace(req.PhoneNumber)
	user := &domain.User{
		Email:        req.Email,
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PhoneNumber:  phone,
	}
	profile := &domain.OwnerProfile{
		Address:             strings.TrimSpace(req.Address),
		PhoneNumber:         phone,
		IDFrontPhoto:        frontURL,
		IDBackPhoto:         backURL,
		ResidencesToPublish: quota,
		AccountStatus:       domain.StatusPending,
	}
	if err := s.users.CreateOwner(ctx, user, profile); err != nil {
		s.discard(ctx, frontURL, backURL)
		return domain.Owner{}, translateCreateError(err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "quota": quota}).Info("owner registered, awaiting approval")
	return domain.Owner{User: *user, Profile: *profile}, nil
}

func (s *Service) RegisterRenter(ctx context.Context, req RegisterRenterRequest) (domain.Renter, error) {
	if err := validator.Validate(req); err != nil {
		return domain.Renter{}, err
	}
	if err := s.ensureUnique(ctx, req.Email, req.Username); err != nil {
		return domain.Renter{}, err
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return domain.Renter{}, err
	}
	user := &domain.User{
		Email:        req.Email,
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.Renter{}, translateCreateError(err)
	}

	s.log.WithField("user_id", user.ID).Info("renter registered")
	return domain.Renter{User: *user}, nil
}

// Login checks the password and issues an access/refresh pair. Accounts that
// await approval may log in; their token says so.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("auth: load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(ctx, user.ID)
}

// Refresh issues a new pair for the holder of a valid refresh token. The
// identity is reloaded so role and account status are current.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	res, err := s.issue(ctx, claims.UserID)
	if errors.Is(err, ErrInvalidCredentials) {
		return nil, ErrInvalidToken
	}
	return res, err
}

func (s *Service) Me(ctx context.Context, userID int64) (domain.Identity, error) {
	id, err := s.users.GetIdentity(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("auth: load identity: %w", err)
	}
	return id, nil
}

func (s *Service) issue(ctx context.Context, userID int64) (*LoginResult, error) {
	id, err := s.users.GetIdentity(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("auth: load identity: %w", err)
	}
	pair, err := s.tokens.GeneratePair(id)
	if err != nil {
		return nil, fmt.Errorf("auth: sign tokens: %w", err)
	}
	return &LoginResult{Identity: id, Tokens: pair}, nil
}

func (s *Service) ensureUnique(ctx context.Context, email, username string) error {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("auth: check email: %w", err)
	}
	if exists {
		return ErrEmailAlreadyExists
	}
	exists, err = s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("auth: check username: %w", err)
	}
	if exists {
		return ErrUsernameAlreadyExists
	}
	return nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hash), nil
}

func (s *Service) discard(ctx context.Context, urls ...string) {
	for _, url := range urls {
		if err := s.files.Remove(ctx, url); err != nil {
			s.log.WithError(err).WithField("file", url).Warn("auth: could not remove stored document")
		}
	}
}

// translateCreateError maps unique violations that slipped past the
// existence checks (concurrent sign-ups) to the same conflicts.
func translateCreateError(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return ErrEmailAlreadyExists
	case errors.Is(err, repository.ErrDuplicateUsername):
		return ErrUsernameAlreadyExists
	}
	return fmt.Errorf("auth: create user: %w", err)
}
