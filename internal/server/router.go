package server

import (
	"context"
	"net/http"
	"time"

	"resirent/internal/config"
	"resirent/internal/middleware"
	"resirent/internal/modules/access"
	"resirent/internal/modules/auth"
	"resirent/internal/modules/booking"
	"resirent/internal/modules/catalog"
	"resirent/internal/pkg/jwt"
	"resirent/internal/pkg/response"
	"resirent/internal/pkg/storage"
	"resirent/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Log    *logrus.Logger
	// Clock decides what "today" is for booking validation; nil means time.Now.
	Clock func() time.Time
}

// NewRouter wires repositories, services and handlers under /api/v1.
func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	users := repository.NewUserRepository(d.DB)
	residences := repository.NewResidenceRepository(d.DB)
	bookings := repository.NewBookingRepository(d.DB)

	tokens := jwt.New(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	files := storage.NewLocal(cfg.MediaRoot, cfg.MediaURL, cfg.MaxUploadBytes)
	gate := access.NewGate(users, bookings, d.Log)

	authHandler := auth.NewHandler(auth.NewService(users, tokens, files, d.Log), d.Log)
	catalogHandler := catalog.NewHandler(catalog.NewService(residences, files, d.Log), cfg.PublicBaseURL, d.Log)

	bookingService := booking.NewService(bookings, d.Log)
	if d.Clock != nil {
		bookingService.WithClock(d.Clock)
	}
	bookingHandler := booking.NewHandler(bookingService, d.Log)

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(
		middleware.RequestID(),
		middleware.ErrorLogger(d.Log),
		middleware.RequestLogger(d.Log),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	r.GET("/health", health(d.DB))
	r.Static(cfg.MediaURL, cfg.MediaRoot)

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)
		catalogHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(tokens))
		{
			authHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterRoutes(protected, middleware.RequireBookingOwner(gate, "id"))

			owners := protected.Group("")
			owners.Use(middleware.RequireActiveOwner(gate))
			catalogHandler.RegisterOwnerRoutes(owners)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})
	return r
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database is not reachable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
