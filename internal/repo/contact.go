package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/contacts/internal/models"
)

// Every query here is scoped by owner: a contact owned by someone else is
// reported as ErrNotFound, exactly like a missing one.

func (r *GormRepo) ListContacts(ctx context.Context, ownerID uuid.UUID) ([]models.Contact, error) {
	items := make([]models.Contact, 0)
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return items, nil
}

func (r *GormRepo) GetContact(ctx context.Context, ownerID, id uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	if err := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return &contact, nil
}

func (r *GormRepo) CreateContact(ctx context.Context, ownerID uuid.UUID, name, email string) (*models.Contact, error) {
	contact := models.Contact{
		Name:   name,
		Email:  email,
		UserID: ownerID,
	}
	if err := r.DB.WithContext(ctx).Create(&contact).Error; err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return &contact, nil
}

func (r *GormRepo) UpdateContact(ctx context.Context, ownerID, id uuid.UUID, name, email string) (*models.Contact, error) {
	contact, err := r.GetContact(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	contact.Name = name
	contact.Email = email

	if err := r.DB.WithContext(ctx).Save(contact).Error; err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return contact, nil
}

func (r *GormRepo) DeleteContact(ctx context.Context, ownerID, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&models.Contact{})
	if res.Error != nil {
		return fmt.Errorf("delete contact: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchContacts matches q against name and email of the owner's contacts.
func (r *GormRepo) SearchContacts(ctx context.Context, ownerID uuid.UUID, q string, offset, limit int) (int64, []models.Contact, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(q))) + "%"
	where := "user_id = ? AND (LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\')"

	var total int64
	if err := r.DB.WithContext(ctx).
		Model(&models.Contact{}).
		Where(where, ownerID, pattern, pattern).
		Count(&total).Error; err != nil {
		return 0, nil, fmt.Errorf("count contacts: %w", err)
	}

	items := make([]models.Contact, 0, limit)
	if err := r.DB.WithContext(ctx).
		Where(where, ownerID, pattern, pattern).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, fmt.Errorf("search contacts: %w", err)
	}
	return total, items, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
