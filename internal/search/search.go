package search

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/contacts/internal/models"
	"github.com/Skotchmaster/contacts/internal/repo"
)

// Index finds an owner's contacts by free text. Every method is scoped to
// a single owner.
type Index interface {
	Search(ctx context.Context, ownerID uuid.UUID, q string, offset, limit int) (int64, []models.Contact, error)
	Put(ctx context.Context, c *models.Contact) error
	Remove(ctx context.Context, ownerID, id uuid.UUID) error
	RemoveOwner(ctx context.Context, ownerID uuid.UUID) error
}

// DBIndex searches the contacts table directly. The rows are the index, so
// writes are no-ops.
type DBIndex struct {
	Repo *repo.GormRepo
}

func NewDBIndex(r *repo.GormRepo) *DBIndex {
	return &DBIndex{Repo: r}
}

func (i *DBIndex) Search(ctx context.Context, ownerID uuid.UUID, q string, offset, limit int) (int64, []models.Contact, error) {
	return i.Repo.SearchContacts(ctx, ownerID, q, offset, limit)
}

func (i *DBIndex) Put(context.Context, *models.Contact) error { return nil }

func (i *DBIndex) Remove(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (i *DBIndex) RemoveOwner(context.Context, uuid.UUID) error { return nil }
