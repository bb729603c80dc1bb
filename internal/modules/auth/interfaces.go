package auth

import (
	"context"

	"resirent/internal/domain"
	"resirent/internal/pkg/jwt"
)

// UserRepository is the part of the user store that authentication needs.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	CreateOwner(ctx context.Context, u *domain.User, p *domain.OwnerProfile) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetIdentity(ctx context.Context, id int64) (domain.Identity, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

type TokenIssuer interface {
	GeneratePair(id domain.Identity) (jwt.TokenPair, error)
	ValidateRefreshToken(token string) (*jwt.Claims, error)
}
