package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resirent/internal/domain"
	"resirent/internal/modules/access"
	"resirent/internal/pkg/jwt"
	"resirent/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func renter(id int64) domain.Identity {
	return domain.Renter{User: domain.User{ID: id, Email: "r@example.com"}}
}

func TestJWTAuth_ValidToken(t *testing.T) {
	jwtService := jwt.New("test-secret-123", time.Hour, 2*time.Hour)
	validToken, err := jwtService.GenerateToken(renter(42), jwt.TokenAccess)
	require.NoError(t, err)

	router := gin.New()
	router.Use(JWTAuth(jwtService))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":        c.GetInt64("user_id"),
			"role":           c.GetString("role"),
			"account_status": c.GetString("account_status"),
		})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+validToken)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":42,"role":"renter","account_status":"active"}`, w.Body.String())
}

func TestJWTAuth_Rejections(t *testing.T) {
	issuer := jwt.New("secret", time.Hour, 2*time.Hour)
	refresh, err := issuer.GenerateToken(renter(1), jwt.TokenRefresh)
	require.NoError(t, err)
	expired, err := jwt.New("secret", time.Minute, time.Hour).
		WithClock(func() time.Time { return time.Now().Add(-time.Hour) }).
		GenerateToken(renter(1), jwt.TokenAccess)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"no header", "", "AUTH_HEADER_MISSING"},
		{"basic auth", "Basic dGVzdA==", "INVALID_AUTH_FORMAT"},
		{"bearer without token", "Bearer ", "INVALID_AUTH_FORMAT"},
		{"garbage", "Bearer invalid-jwt-here", "INVALID_TOKEN"},
		{"refresh used as access", "Bearer " + refresh, "INVALID_TOKEN"},
		{"expired", "Bearer " + expired, "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.Use(JWTAuth(issuer))
			router.GET("/protected", func(c *gin.Context) {
				t.Fatal("Should not reach here")
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tc.code)
		})
	}
}

type stubIdentities map[int64]domain.Identity

func (s stubIdentities) GetIdentity(_ context.Context, id int64) (domain.Identity, error) {
	if v, ok := s[id]; ok {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubBookings map[int64]int64

func (s stubBookings) GetResidenceOwnerID(_ context.Context, bookingID int64) (int64, error) {
	if v, ok := s[bookingID]; ok {
		return v, nil
	}
	return 0, gorm.ErrRecordNotFound
}

func ownerWith(id int64, status domain.AccountStatus) domain.Identity {
	return domain.Owner{User: domain.User{ID: id}, Profile: domain.OwnerProfile{UserID: id, AccountStatus: status}}
}

// withUser stands in for JWTAuth.
func withUser(id int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id != 0 {
			c.Set("user_id", id)
		}
		c.Next()
	}
}

func TestRequireActiveOwner(t *testing.T) {
	gate := access.NewGate(stubIdentities{
		1: ownerWith(1, domain.StatusActive),
		2: ownerWith(2, domain.StatusPending),
		3: ownerWith(3, domain.StatusSuspended),
		4: renter(4),
	}, stubBookings{}, logger.Discard())

	for userID, want := range map[int64]int{
		0: http.StatusForbidden,
		1: http.StatusOK,
		2: http.StatusForbidden,
		3: http.StatusForbidden,
		4: http.StatusForbidden,
		5: http.StatusForbidden,
	} {
		router := gin.New()
		router.GET("/residences", withUser(userID), RequireActiveOwner(gate), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/residences", nil))
		assert.Equal(t, want, w.Code, "user %d", userID)
		if want == http.StatusForbidden {
			assert.Contains(t, w.Body.String(), "PERMISSION_DENIED")
			assert.Contains(t, w.Body.String(), access.InactiveOwnerMessage)
		}
	}
}

func TestRequireBookingOwner(t *testing.T) {
	gate := access.NewGate(stubIdentities{}, stubBookings{10: 1}, logger.Discard())

	cases := []struct {
		user int64
		path string
		want int
	}{
		{1, "/owner/bookings/10/status", http.StatusOK},
		{2, "/owner/bookings/10/status", http.StatusNotFound},
		{1, "/owner/bookings/11/status", http.StatusNotFound},
		{1, "/owner/bookings/abc/status", http.StatusBadRequest},
	}
	for _, tc := range cases {
		router := gin.New()
		router.PATCH("/owner/bookings/:id/status", withUser(tc.user), RequireBookingOwner(gate, "id"), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, tc.path, nil))
		assert.Equal(t, tc.want, w.Code, "user %d %s", tc.user, tc.path)
	}
}
