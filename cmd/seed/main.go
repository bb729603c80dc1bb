package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"time"

	"resirent/internal/config"
	"resirent/internal/database"
	"resirent/internal/domain"
	"resirent/internal/modules/admin"
	"resirent/internal/modules/auth"
	"resirent/internal/modules/booking"
	"resirent/internal/modules/catalog"
	"resirent/internal/pkg/jwt"
	"resirent/internal/pkg/logger"
	"resirent/internal/pkg/storage"
	"resirent/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	ownerPassword  = "owner12345"
	renterPassword = "renter12345"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", false).WithError(err).Fatal("invalid configuration")
	}
	log := logger.New(cfg.LogLevel, false)

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	if err := seed(context.Background(), db, cfg, log); err != nil {
		log.WithError(err).Fatal("seed failed")
	}
	log.Info("seed completed")
}

func seed(ctx context.Context, db *gorm.DB, cfg *config.Config, log *logrus.Logger) error {
	// ================== CLEANUP ==================
	log.Info("cleaning old data")
	for _, table := range []string{"bookings", "residence_photos", "residences", "owner_profiles", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clean %s: %w", table, err)
		}
	}

	users := repository.NewUserRepository(db)
	files := storage.NewLocal(cfg.MediaRoot, cfg.MediaURL, cfg.MaxUploadBytes)
	tokens := jwt.New(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	authSvc := auth.NewService(users, tokens, files, log)
	adminSvc := admin.NewService(users, log)
	catalogSvc := catalog.NewService(repository.NewResidenceRepository(db), files, log)
	bookingSvc := booking.NewService(repository.NewBookingRepository(db), log)

	// ================== OWNERS ==================
	log.Info("creating owners")
	quota := 3
	active, err := registerOwner(ctx, authSvc, "olivia", "Olivia", &quota)
	if err != nil {
		return err
	}
	if _, err := adminSvc.ApproveOwner(ctx, active.User.ID); err != nil {
		return err
	}
	log.Infof("active owner: olivia@resirent.test / %s", ownerPassword)

	if _, err := registerOwner(ctx, authSvc, "pedro", "Pedro", nil); err != nil {
		return err
	}
	log.Infof("pending owner: pedro@resirent.test / %s", ownerPassword)

	// ================== RENTERS ==================
	log.Info("creating renters")
	renters := make([]domain.Renter, 0, 2)
	for _, name := range [][2]string{{"rita", "Rita"}, {"rui", "Rui"}} {
		r, err := authSvc.RegisterRenter(ctx, auth.RegisterRenterRequest{
			Email:       name[0] + "@resirent.test",
			Username:    name[0],
			Password:    renterPassword,
			FirstName:   name[1],
			LastName:    "Renter",
			PhoneNumber: "+351910000000",
		})
		if err != nil {
			return fmt.Errorf("register renter %s: %w", name[0], err)
		}
		renters = append(renters, r)
		log.Infof("renter: %s@resirent.test / %s", name[0], renterPassword)
	}

	// ================== RESIDENCES ==================
	log.Info("creating residences")
	listings := []struct {
		title, city, country, price string
		shade                       color.RGBA
	}{
		{"Riverside loft", "Porto", "Portugal", "85.00", color.RGBA{R: 40, G: 90, B: 160, A: 255}},
		{"Old town studio", "Lisbon", "Portugal", "64.50", color.RGBA{R: 200, G: 120, B: 40, A: 255}},
		{"Surf house", "Ericeira", "Portugal", "120.00", color.RGBA{R: 30, G: 150, B: 90, A: 255}},
	}
	residences := make([]*domain.Residence, 0, len(listings))
	for i, l := range listings {
		img, err := swatch(l.shade)
		if err != nil {
			return err
		}
		res, err := catalogSvc.CreateResidence(ctx, active.User.ID, catalog.CreateResidenceRequest{
			Title:         l.title,
			Description:   "Bright and quiet, close to public transport.",
			Address:       fmt.Sprintf("Rua das Flores %d", 10+i),
			City:          l.city,
			Country:       l.country,
			PricePerNight: json.Number(l.price),
		}, []storage.Upload{storage.FromBytes(fmt.Sprintf("residence-%d.png", i+1), img)})
		if err != nil {
			return fmt.Errorf("create residence %q: %w", l.title, err)
		}
		residences = append(residences, res)
	}

	// ================== BOOKINGS ==================
	log.Info("creating bookings")
	today := domain.DateOf(time.Now())
	stays := []struct {
		guest     int
		residence int
		from, to  int
		status    domain.BookingStatus
	}{
		{0, 0, 7, 11, domain.BookingConfirmed},
		{1, 0, 11, 14, domain.BookingPending},
		{1, 1, 3, 5, domain.BookingConfirmed},
		{0, 2, 20, 27, domain.BookingCancelled},
		{0, 2, 30, 33, domain.BookingPending},
	}
	for _, st := range stays {
		b, err := bookingSvc.CreateBooking(ctx, renters[st.guest].User.ID, booking.CreateBookingRequest{
			Residence:    residences[st.residence].ID,
			CheckInDate:  domain.FormatDate(today.AddDate(0, 0, st.from)),
			CheckOutDate: domain.FormatDate(today.AddDate(0, 0, st.to)),
		})
		if err != nil {
			return fmt.Errorf("create booking: %w", err)
		}
		if st.status == domain.BookingPending {
			continue
		}
		if _, err := bookingSvc.UpdateBookingStatus(ctx, active.User.ID, b.ID, string(st.status)); err != nil {
			return fmt.Errorf("set booking %d %s: %w", b.ID, st.status, err)
		}
	}
	return nil
}

func registerOwner(ctx context.Context, svc *auth.Service, username, firstName string, quota *int) (domain.Owner, error) {
	front, err := swatch(color.RGBA{R: 220, G: 220, B: 220, A: 255})
	if err != nil {
		return domain.Owner{}, err
	}
	back, err := swatch(color.RGBA{R: 180, G: 180, B: 180, A: 255})
	if err != nil {
		return domain.Owner{}, err
	}
	frontUp := storage.FromBytes("id-front.png", front)
	backUp := storage.FromBytes("id-back.png", back)

	owner, err := svc.RegisterOwner(ctx, auth.RegisterOwnerRequest{
		Email:               username + "@resirent.test",
		Username:            username,
		Password:            ownerPassword,
		FirstName:           firstName,
		LastName:            "Owner",
		Address:             "Avenida da Liberdade 1",
		PhoneNumber:         "+351900000000",
		ResidencesToPublish: quota,
	}, &frontUp, &backUp)
	if err != nil {
		return domain.Owner{}, fmt.Errorf("register owner %s: %w", username, err)
	}
	return owner, nil
}

// swatch renders a small solid PNG used as a placeholder photo.
func swatch(c color.RGBA) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
