package repository

import (
	"context"
	"strings"
	"time"

	"resirent/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID           int64              `gorm:"column:id;primaryKey"`
	Email        string             `gorm:"column:email;size:254;not null;uniqueIndex:idx_users_email"`
	Username     string             `gorm:"column:username;size:150;not null;uniqueIndex:idx_users_username"`
	PasswordHash string             `gorm:"column:password_hash;not null"`
	FirstName    string             `gorm:"column:first_name;size:150"`
	LastName     string             `gorm:"column:last_name;size:150"`
	PhoneNumber  *string            `gorm:"column:phone_number;size:20"`
	CreatedAt    time.Time          `gorm:"column:created_at"`
	UpdatedAt    time.Time          `gorm:"column:updated_at"`
	OwnerProfile *ownerProfileModel `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (userModel) TableName() string { return "users" }

// ownerProfileModel has no default tags: a zero quota is a legal value and
// must not be replaced on insert.
type ownerProfileModel struct {
	UserID              int64     `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	Address             string    `gorm:"column:address;size:255;not null"`
	PhoneNumber         string    `gorm:"column:phone_number;size:20;not null"`
	IDFrontPhoto        string    `gorm:"column:id_front_photo;size:255"`
	IDBackPhoto         string    `gorm:"column:id_back_photo;size:255"`
	ResidencesToPublish int       `gorm:"column:residences_to_publish;not null"`
	AccountStatus       string    `gorm:"column:account_status;size:10;not null;index"`
	CreatedAt           time.Time `gorm:"column:created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at"`
}

func (ownerProfileModel) TableName() string { return "owner_profiles" }

func toDomainUser(m userModel) *domain.User {
	var phone string
	if m.PhoneNumber != nil {
		phone = *m.PhoneNumber
	}
	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		PhoneNumber:  phone,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) userModel {
	var phone *string
	if p := strings.TrimSpace(u.PhoneNumber); p != "" {
		phone = &p
	}
	return userModel{
		ID:           u.ID,
		Email:        normalizeEmail(u.Email),
		Username:     strings.TrimSpace(u.Username),
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PhoneNumber:  phone,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func toDomainProfile(m ownerProfileModel) *domain.OwnerProfile {
	return &domain.OwnerProfile{
		UserID:              m.UserID,
		Address:             m.Address,
		PhoneNumber:         m.PhoneNumber,
		IDFrontPhoto:        m.IDFrontPhoto,
		IDBackPhoto:         m.IDBackPhoto,
		ResidencesToPublish: m.ResidencesToPublish,
		AccountStatus:       domain.AccountStatus(m.AccountStatus),
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func toProfileModel(p *domain.OwnerProfile) ownerProfileModel {
	return ownerProfileModel{
		UserID:              p.UserID,
		Address:             p.Address,
		PhoneNumber:         p.PhoneNumber,
		IDFrontPhoto:        p.IDFrontPhoto,
		IDBackPhoto:         p.IDBackPhoto,
		ResidencesToPublish: p.ResidencesToPublish,
		AccountStatus:       string(p.AccountStatus),
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translateUserError(err)
	}
	*u = *toDomainUser(m)
	return nil
}

// CreateOwner inserts the user and its owner profile in one transaction.
func (r *UserRepository) CreateOwner(ctx context.Context, u *domain.User, p *domain.OwnerProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		um := toUserModel(u)
		if err := tx.Omit("OwnerProfile").Create(&um).Error; err != nil {
			return translateUserError(err)
		}

		pm := toProfileModel(p)
		pm.UserID = um.ID
		if err := tx.Create(&pm).Error; err != nil {
			return err
		}

		*u = *toDomainUser(um)
		*p = *toDomainProfile(pm)
		return nil
	})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	err := r.db.WithContext(ctx).
		Where("email = ?", normalizeEmail(email)).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainUser(m), nil
}

// GetIdentity loads the user together with its owner profile, if any, and
// resolves it into an Owner or a Renter.
func (r *UserRepository) GetIdentity(ctx context.Context, id int64) (domain.Identity, error) {
	var m userModel
	if err := r.db.WithContext(ctx).Preload("OwnerProfile").First(&m, id).Error; err != nil {
		return nil, err
	}
	var profile *domain.OwnerProfile
	if m.OwnerProfile != nil {
		profile = toDomainProfile(*m.OwnerProfile)
	}
	return domain.NewIdentity(*toDomainUser(m), profile), nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("email = ?", normalizeEmail(email)).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("username = ?", strings.TrimSpace(username)).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) GetOwnerProfile(ctx context.Context, userID int64) (*domain.OwnerProfile, error) {
	var m ownerProfileModel
	if err := r.db.WithContext(ctx).First(&m, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return toDomainProfile(m), nil
}

// UpdateOwnerProfile locks the profile row, lets apply mutate it and saves
// the result. Returning an error from apply aborts without writing.
func (r *UserRepository) UpdateOwnerProfile(ctx context.Context, userID int64, apply func(p *domain.OwnerProfile) error) (*domain.OwnerProfile, error) {
	var out *domain.OwnerProfile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m ownerProfileModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&m, "user_id = ?", userID).Error; err != nil {
			return err
		}

		p := toDomainProfile(m)
		if err := apply(p); err != nil {
			return err
		}

		err := tx.Model(&ownerProfileModel{}).
			Where("user_id = ?", userID).
			Updates(map[string]any{
				"residences_to_publish": p.ResidencesToPublish,
				"account_status":        string(p.AccountStatus),
				"updated_at":            time.Now(),
			}).Error
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type ownerSummaryRow struct {
	ID                  int64     `gorm:"column:id"`
	Email               string    `gorm:"column:email"`
	Username            string    `gorm:"column:username"`
	FirstName           string    `gorm:"column:first_name"`
	LastName            string    `gorm:"column:last_name"`
	CreatedAt           time.Time `gorm:"column:created_at"`
	Address             string    `gorm:"column:address"`
	PhoneNumber         string    `gorm:"column:phone_number"`
	ResidencesToPublish int       `gorm:"column:residences_to_publish"`
	AccountStatus       string    `gorm:"column:account_status"`
	ResidenceCount      int64     `gorm:"column:residence_count"`
}

// ListOwners returns every owner with its residence count, optionally
// restricted to one account status, oldest registration first.
func (r *UserRepository) ListOwners(ctx context.Context, status *domain.AccountStatus) ([]domain.OwnerSummary, error) {
	q := r.db.WithContext(ctx).
		Table("users u").
		Select(`u.id, u.email, u.username, u.first_name, u.last_name, u.created_at,
			op.address, op.phone_number, op.residences_to_publish, op.account_status,
			(SELECT COUNT(*) FROM residences r WHERE r.owner_id = u.id) AS residence_count`).
		Joins("JOIN owner_profiles op ON op.user_id = u.id")
	if status != nil {
		q = q.Where("op.account_status = ?", string(*status))
	}

	var rows []ownerSummaryRow
	if err := q.Order("u.id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.OwnerSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.OwnerSummary{
			User: domain.User{
				ID:        row.ID,
				Email:     row.Email,
				Username:  row.Username,
				FirstName: row.FirstName,
				LastName:  row.LastName,
				CreatedAt: row.CreatedAt,
			},
			Profile: domain.OwnerProfile{
				UserID:              row.ID,
				Address:             row.Address,
				PhoneNumber:         row.PhoneNumber,
				ResidencesToPublish: row.ResidencesToPublish,
				AccountStatus:       domain.AccountStatus(row.AccountStatus),
			},
			ResidenceCount: row.ResidenceCount,
		})
	}
	return out, nil
}
