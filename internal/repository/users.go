package repository

import (
	"context"
	"errors"
	"time"

	"livsoul/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Users is the account store.
type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (r *Users) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	return err
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return &user, err
}

func (r *Users) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return &user, err
}

// UpdateProfile writes the named fields from the given snapshot. Struct
// updates keep the JSON serializer on medical_history in the loop, which
// a column/value map would bypass.
func (r *Users) UpdateProfile(ctx context.Context, userID uuid.UUID, fields []string, values *models.User) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Select(fields).Updates(*values).Error
}

func (r *Users) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Update("password_hash", passwordHash).Error
}

func (r *Users) TouchLastLogin(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Update("last_login", time.Now().UTC()).Error
}
