package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/contacts/internal/db"
	"github.com/Skotchmaster/contacts/internal/hash"
	"github.com/Skotchmaster/contacts/internal/models"
)

// UserUpdate carries the account fields to change. Nil fields are left as they are.
type UserUpdate struct {
	Username *string
	Email    *string
	Password *string
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IdentityTaken reports whether another user already holds username
// (case-insensitive) or email. except is ignored when comparing.
func (r *GormRepo) IdentityTaken(ctx context.Context, username, email string, except uuid.UUID) (bool, error) {
	q := r.DB.WithContext(ctx).Model(&models.User{})

	switch {
	case username != "" && email != "":
		q = q.Where("LOWER(username) = LOWER(?) OR email = ?", username, NormalizeEmail(email))
	case username != "":
		q = q.Where("LOWER(username) = LOWER(?)", username)
	case email != "":
		q = q.Where("email = ?", NormalizeEmail(email))
	default:
		return false, nil
	}
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("identity lookup: %w", err)
	}
	return count > 0, nil
}

// CreateUser hashes password and stores a new user.
func (r *GormRepo) CreateUser(ctx context.Context, username, email, password string) (*models.User, error) {
	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     strings.TrimSpace(username),
		Email:        NormalizeEmail(email),
		PasswordHash: pwHash,
	}
	if err := r.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

func (r *GormRepo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user by email: %w", err)
	}
	return &user, nil
}

func (r *GormRepo) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user by id: %w", err)
	}
	return &user, nil
}

// UpdateUser applies upd. The password hash is recomputed only when upd.Password is set.
func (r *GormRepo) UpdateUser(ctx context.Context, id uuid.UUID, upd UserUpdate) (*models.User, error) {
	user, err := r.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Username != nil {
		user.Username = strings.TrimSpace(*upd.Username)
	}
	if upd.Email != nil {
		user.Email = NormalizeEmail(*upd.Email)
	}
	if upd.Password != nil {
		pwHash, err := hash.HashPassword(*upd.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = pwHash
	}

	if err := r.DB.WithContext(ctx).Save(user).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes the user and every contact it owns in one transaction.
func (r *GormRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Contact{}).Error; err != nil {
			return fmt.Errorf("delete user contacts: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return fmt.Errorf("delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
