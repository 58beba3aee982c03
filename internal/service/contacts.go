package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/contacts/internal/events"
	"github.com/Skotchmaster/contacts/internal/logging"
	"github.com/Skotchmaster/contacts/internal/models"
	"github.com/Skotchmaster/contacts/internal/repo"
	"github.com/Skotchmaster/contacts/internal/search"
	"github.com/Skotchmaster/contacts/internal/util"
)

type ContactService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Index  search.Index
}

type SearchResult struct {
	Total int64
	Items []models.Contact
}

// List returns the owner's contacts, newest first.
func (s *ContactService) List(ctx context.Context, ownerID uuid.UUID) ([]models.Contact, error) {
	return s.Repo.ListContacts(ctx, ownerID)
}

func (s *ContactService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Contact, error) {
	contact, err := s.Repo.GetContact(ctx, ownerID, id)
	if err != nil {
		return nil, notFound(err)
	}
	return contact, nil
}

func (s *ContactService) Create(ctx context.Context, ownerID uuid.UUID, name, email string) (*models.Contact, error) {
	l := logging.FromContext(ctx).With("svc", "contacts.create", "user_id", ownerID)

	fields, err := contactInput(name, email)
	if err != nil {
		return nil, err
	}

	contact, err := s.Repo.CreateContact(ctx, ownerID, fields.Name, fields.Email)
	if err != nil {
		l.Error("contact_create_error", "status", 500, "error", err)
		return nil, err
	}

	s.index(ctx, contact)
	s.publish(ctx, events.NewContactEvent(events.ContactCreated, contact))
	return contact, nil
}

func (s *ContactService) Update(ctx context.Context, ownerID, id uuid.UUID, name, email string) (*models.Contact, error) {
	l := logging.FromContext(ctx).With("svc", "contacts.update", "user_id", ownerID, "contact_id", id)

	if name == "" || email == "" {
		return nil, missingFields("Name and email are required")
	}
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return nil, err
	}
	fields, err := contactInput(name, email)
	if err != nil {
		return nil, err
	}

	contact, err := s.Repo.UpdateContact(ctx, ownerID, id, fields.Name, fields.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		l.Error("contact_update_error", "status", 500, "error", err)
		return nil, err
	}

	s.index(ctx, contact)
	s.publish(ctx, events.NewContactEvent(events.ContactUpdated, contact))
	return contact, nil
}

func (s *ContactService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "contacts.delete", "user_id", ownerID, "contact_id", id)

	contact, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.Repo.DeleteContact(ctx, ownerID, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		l.Error("contact_delete_error", "status", 500, "error", err)
		return err
	}

	if s.Index != nil {
		if err := s.Index.Remove(ctx, ownerID, id); err != nil {
			l.Error("search_index_error", "op", "remove", "error", err)
		}
	}
	s.publish(ctx, events.NewContactEvent(events.ContactDeleted, contact))
	return nil
}

// Search matches q against the owner's contacts. page is 1-based.
func (s *ContactService) Search(ctx context.Context, ownerID uuid.UUID, q string, page, size int) (*SearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, missingFields("Search query is required")
	}

	offset, limit := util.Calculate(page, size)
	idx := s.Index
	if idx == nil {
		idx = search.NewDBIndex(s.Repo)
	}

	total, items, err := idx.Search(ctx, ownerID, q, offset, limit)
	if err != nil {
		logging.FromContext(ctx).Error("contact_search_error", "svc", "contacts.search", "status", 500, "error", err)
		return nil, err
	}
	return &SearchResult{Total: total, Items: items}, nil
}

func contactInput(name, email string) (contactFields, error) {
	if name == "" || email == "" {
		return contactFields{}, missingFields("Name and email are required")
	}
	fields := contactFields{
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
	}
	if err := check(fields); err != nil {
		return contactFields{}, err
	}
	return fields, nil
}

func notFound(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *ContactService) index(ctx context.Context, c *models.Contact) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Put(ctx, c); err != nil {
		logging.FromContext(ctx).Error("search_index_error", "op", "put", "contact_id", c.ID, "error", err)
	}
}

func (s *ContactService) publish(ctx context.Context, ev events.ContactEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, events.TopicContacts, ev.UserID.String(), ev); err != nil {
		logging.FromContext(ctx).Error("publish_error", "topic", events.TopicContacts, "event", ev.Type, "error", err)
	}
}
