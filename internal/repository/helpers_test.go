package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"resirent/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

var userSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(gormsqlite.New(gormsqlite.Config{
		DriverName: "sqlite",
		DSN:        ":memory:?_pragma=foreign_keys(1)&_time_format=sqlite",
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(Models()...))
	return db
}

func newUser(prefix string) *domain.User {
	n := userSeq.Add(1)
	return &domain.User{
		Email:        fmt.Sprintf("%s%d@example.com", prefix, n),
		Username:     fmt.Sprintf("%s%d", prefix, n),
		PasswordHash: "hash",
		FirstName:    "First",
		LastName:     "Last",
		PhoneNumber:  "+33100000000",
	}
}

func seedOwner(t *testing.T, db *gorm.DB, status domain.AccountStatus, quota int) *domain.User {
	t.Helper()
	u := newUser("owner")
	p := &domain.OwnerProfile{
		Address:             "1 rue de la Paix",
		PhoneNumber:         "+33100000001",
		ResidencesToPublish: quota,
		AccountStatus:       status,
	}
	require.NoError(t, NewUserRepository(db).CreateOwner(context.Background(), u, p))
	return u
}

func seedRenter(t *testing.T, db *gorm.DB) *domain.User {
	t.Helper()
	u := newUser("renter")
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func allowAll(domain.OwnerProfile, int64) error { return nil }

func seedResidence(t *testing.T, db *gorm.DB, ownerID int64, city string, price string) *domain.Residence {
	t.Helper()
	res := &domain.Residence{
		OwnerID:       ownerID,
		Title:         "Flat in " + city,
		Description:   "Bright and quiet",
		Address:       "2 avenue Foch",
		City:          city,
		Country:       "France",
		PricePerNight: decimal.RequireFromString(price),
		IsAvailable:   true,
	}
	require.NoError(t, NewResidenceRepository(db).CreateWithinQuota(context.Background(), res, allowAll))
	return res
}

func day(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedBooking(t *testing.T, db *gorm.DB, guestID, residenceID int64, in, out string, status domain.BookingStatus) *domain.Booking {
	t.Helper()
	m := toBookingModel(&domain.Booking{
		GuestID:      guestID,
		ResidenceID:  residenceID,
		CheckInDate:  day(in),
		CheckOutDate: day(out),
		Status:       status,
	})
	require.NoError(t, db.Create(&m).Error)
	return toDomainBooking(m)
}
