package jwt

import (
	"errors"
	"fmt"
	"time"

	"resirent/internal/domain"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrWrongType    = errors.New("wrong token type")
)

type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Claims carry enough of the identity for clients to render the account
// without another round trip. ResidencesToPublish is only set for owners.
type Claims struct {
	UserID              int64  `json:"user_id"`
	Email               string `json:"email"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	Role                string `json:"role"`
	AccountStatus       string `json:"account_status"`
	ResidencesToPublish *int   `json:"residences_to_publish,omitempty"`
	TokenType           string `json:"token_type"`
	jwtlib.RegisteredClaims
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func New(secret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock replaces the time source. Tests use it to mint expired tokens.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) GeneratePair(id domain.Identity) (TokenPair, error) {
	access, err := s.GenerateToken(id, TokenAccess)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.GenerateToken(id, TokenRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *Service) GenerateToken(id domain.Identity, tokenType string) (string, error) {
	ttl := s.accessTTL
	if tokenType == TokenRefresh {
		ttl = s.refreshTTL
	}

	u := id.Account()
	now := s.now()
	claims := Claims{
		UserID:        u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Role:          string(id.Role()),
		AccountStatus: string(id.AccountStatus()),
		TokenType:     tokenType,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   fmt.Sprint(u.ID),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	if o, ok := id.(domain.Owner); ok {
		quota := o.Profile.ResidencesToPublish
		claims.ResidencesToPublish = &quota
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) ValidateAccessToken(tokenStr string) (*Claims, error) {
	return s.validate(tokenStr, TokenAccess)
}

func (s *Service) ValidateRefreshToken(tokenStr string) (*Claims, error) {
	return s.validate(tokenStr, TokenRefresh)
}

func (s *Service) validate(tokenStr, tokenType string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenType {
		return nil, ErrWrongType
	}
	return claims, nil
}
