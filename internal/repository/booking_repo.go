package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"resirent/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID           int64           `gorm:"column:id;primaryKey"`
	GuestID      int64           `gorm:"column:guest_id;not null;index"`
	Guest        *userModel      `gorm:"foreignKey:GuestID;constraint:OnDelete:CASCADE"`
	ResidenceID  int64           `gorm:"column:residence_id;not null;index:idx_bookings_residence_status"`
	Residence    *residenceModel `gorm:"foreignKey:ResidenceID;constraint:OnDelete:CASCADE"`
	CheckInDate  datatypes.Date  `gorm:"column:check_in_date;not null"`
	CheckOutDate datatypes.Date  `gorm:"column:check_out_date;not null"`
	Status       string          `gorm:"column:status;size:10;not null;index:idx_bookings_residence_status"`
	CreatedAt    time.Time       `gorm:"column:created_at;index"`
	UpdatedAt    time.Time       `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	return &domain.Booking{
		ID:           m.ID,
		GuestID:      m.GuestID,
		ResidenceID:  m.ResidenceID,
		CheckInDate:  domain.DateOf(time.Time(m.CheckInDate)),
		CheckOutDate: domain.DateOf(time.Time(m.CheckOutDate)),
		Status:       domain.BookingStatus(m.Status),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:           b.ID,
		GuestID:      b.GuestID,
		ResidenceID:  b.ResidenceID,
		CheckInDate:  datatypes.Date(domain.DateOf(b.CheckInDate)),
		CheckOutDate: datatypes.Date(domain.DateOf(b.CheckOutDate)),
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

// lockResidence takes a row lock on the residence for the rest of tx.
// SQLite ignores the locking clause; its single connection serializes tx.
func lockResidence(tx *gorm.DB, residenceID int64) error {
	var m residenceModel
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&m, residenceID).Error
}

// confirmedOverlaps returns confirmed bookings of the residence whose stay
// intersects [checkIn, checkOut), ignoring excludeID.
func confirmedOverlaps(tx *gorm.DB, residenceID int64, checkIn, checkOut time.Time, excludeID int64) ([]domain.Booking, error) {
	var rows []bookingModel
	err := tx.
		Where("residence_id = ? AND status = ?", residenceID, string(domain.BookingConfirmed)).
		Where("check_in_date < ? AND check_out_date > ?",
			datatypes.Date(domain.DateOf(checkOut)),
			datatypes.Date(domain.DateOf(checkIn))).
		Where("id <> ?", excludeID).
		Order("check_in_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

func setStatus(tx *gorm.DB, bookingID int64, status domain.BookingStatus) error {
	return tx.Model(&bookingModel{}).
		Where("id = ?", bookingID).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now(),
		}).Error
}

// CreateWithinLock inserts b after check approves the confirmed bookings that
// overlap it. The residence row stays locked from the check until commit.
// A missing residence yields gorm.ErrRecordNotFound.
func (r *BookingRepository) CreateWithinLock(ctx context.Context, b *domain.Booking, check func(overlapping []domain.Booking) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockResidence(tx, b.ResidenceID); err != nil {
			return err
		}

		overlapping, err := confirmedOverlaps(tx, b.ResidenceID, b.CheckInDate, b.CheckOutDate, 0)
		if err != nil {
			return err
		}
		if err := check(overlapping); err != nil {
			return err
		}

		m := toBookingModel(b)
		if err := tx.Omit(clause.Associations).Create(&m).Error; err != nil {
			return err
		}
		*b = *toDomainBooking(m)
		return nil
	})
}

// TransitionForOwner moves a booking of one of ownerID's residences to next.
// check receives the current booking and the other confirmed bookings that
// overlap it, both read under the residence lock. Bookings of residences owned
// by someone else are reported as gorm.ErrRecordNotFound.
func (r *BookingRepository) TransitionForOwner(
	ctx context.Context,
	ownerID, bookingID int64,
	next domain.BookingStatus,
	check func(current domain.Booking, overlapping []domain.Booking) error,
) (*domain.Booking, error) {
	var out *domain.Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var residenceID int64
		err := tx.Model(&bookingModel{}).
			Select("bookings.residence_id").
			Joins("JOIN residences ON residences.id = bookings.residence_id").
			Where("bookings.id = ? AND residences.owner_id = ?", bookingID, ownerID).
			Row().
			Scan(&residenceID)
		if err != nil {
			return noRows(err)
		}

		if err := lockResidence(tx, residenceID); err != nil {
			return err
		}

		var m bookingModel
		if err := tx.First(&m, bookingID).Error; err != nil {
			return err
		}
		current := toDomainBooking(m)

		overlapping, err := confirmedOverlaps(tx, residenceID, current.CheckInDate, current.CheckOutDate, current.ID)
		if err != nil {
			return err
		}
		if err := check(*current, overlapping); err != nil {
			return err
		}

		if err := setStatus(tx, current.ID, next); err != nil {
			return err
		}
		if err := tx.First(&m, bookingID).Error; err != nil {
			return err
		}
		out = toDomainBooking(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetResidenceOwnerID returns the owner of the residence a booking belongs to.
func (r *BookingRepository) GetResidenceOwnerID(ctx context.Context, bookingID int64) (int64, error) {
	var ownerID int64
	err := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Select("residences.owner_id").
		Joins("JOIN residences ON residences.id = bookings.residence_id").
		Where("bookings.id = ?", bookingID).
		Row().
		Scan(&ownerID)
	if err != nil {
		return 0, noRows(err)
	}
	return ownerID, nil
}

type bookingDetailsRow struct {
	ID               int64           `gorm:"column:id"`
	GuestID          int64           `gorm:"column:guest_id"`
	ResidenceID      int64           `gorm:"column:residence_id"`
	CheckInDate      datatypes.Date  `gorm:"column:check_in_date"`
	CheckOutDate     datatypes.Date  `gorm:"column:check_out_date"`
	Status           string          `gorm:"column:status"`
	CreatedAt        time.Time       `gorm:"column:created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at"`
	ResidenceTitle   string          `gorm:"column:residence_title"`
	PricePerNight    decimal.Decimal `gorm:"column:price_per_night"`
	GuestFirstName   string          `gorm:"column:guest_first_name"`
	GuestLastName    string          `gorm:"column:guest_last_name"`
	GuestEmail       string          `gorm:"column:guest_email"`
	GuestPhoneNumber *string         `gorm:"column:guest_phone_number"`
	OwnerFirstName   string          `gorm:"column:owner_first_name"`
	OwnerLastName    string          `gorm:"column:owner_last_name"`
	OwnerEmail       string          `gorm:"column:owner_email"`
	OwnerPhoneNumber *string         `gorm:"column:owner_phone_number"`
}

const bookingDetailsSelect = `b.id, b.guest_id, b.residence_id, b.check_in_date, b.check_out_date,
	b.status, b.created_at, b.updated_at,
	r.title AS residence_title, r.price_per_night,
	g.first_name AS guest_first_name, g.last_name AS guest_last_name,
	g.email AS guest_email, g.phone_number AS guest_phone_number,
	o.first_name AS owner_first_name, o.last_name AS owner_last_name,
	o.email AS owner_email, o.phone_number AS owner_phone_number`

func (r *BookingRepository) listDetails(ctx context.Context, where string, arg any) ([]domain.BookingDetails, error) {
	var rows []bookingDetailsRow
	err := r.db.WithContext(ctx).
		Table("bookings b").
		Select(bookingDetailsSelect).
		Joins("JOIN residences r ON r.id = b.residence_id").
		Joins("JOIN users g ON g.id = b.guest_id").
		Joins("JOIN users o ON o.id = r.owner_id").
		Where(where, arg).
		Order("b.created_at DESC, b.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.BookingDetails, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.BookingDetails{
			Booking: domain.Booking{
				ID:           row.ID,
				GuestID:      row.GuestID,
				ResidenceID:  row.ResidenceID,
				CheckInDate:  domain.DateOf(time.Time(row.CheckInDate)),
				CheckOutDate: domain.DateOf(time.Time(row.CheckOutDate)),
				Status:       domain.BookingStatus(row.Status),
				CreatedAt:    row.CreatedAt,
				UpdatedAt:    row.UpdatedAt,
			},
			ResidenceTitle: row.ResidenceTitle,
			PricePerNight:  row.PricePerNight,
			Guest: domain.Contact{
				FirstName:   row.GuestFirstName,
				LastName:    row.GuestLastName,
				Email:       row.GuestEmail,
				PhoneNumber: deref(row.GuestPhoneNumber),
			},
			Owner: domain.Contact{
				FirstName:   row.OwnerFirstName,
				LastName:    row.OwnerLastName,
				Email:       row.OwnerEmail,
				PhoneNumber: deref(row.OwnerPhoneNumber),
			},
		})
	}
	return out, nil
}

// ListForOwner returns bookings of every residence ownerID owns, newest first.
func (r *BookingRepository) ListForOwner(ctx context.Context, ownerID int64) ([]domain.BookingDetails, error) {
	return r.listDetails(ctx, "r.owner_id = ?", ownerID)
}

// ListForGuest returns the bookings guestID made, newest first.
func (r *BookingRepository) ListForGuest(ctx context.Context, guestID int64) ([]domain.BookingDetails, error) {
	return r.listDetails(ctx, "b.guest_id = ?", guestID)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// noRows maps sql.ErrNoRows from Row().Scan to gorm's not-found error.
func noRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return gorm.ErrRecordNotFound
	}
	return err
}
