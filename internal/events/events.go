package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/contacts/internal/models"
)

const (
	TopicUsers    = "user_events"
	TopicContacts = "contact_events"
)

const (
	UserRegistered = "user_registered"
	UserUpdated    = "user_updated"
	UserDeleted    = "user_deleted"

	ContactCreated = "contact_created"
	ContactUpdated = "contact_updated"
	ContactDeleted = "contact_deleted"
)

// Topics lists every topic the service writes to.
func Topics() []string {
	return []string{TopicUsers, TopicContacts}
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
	Close() error
}

type UserEvent struct {
	Type       string    `json:"type"`
	UserID     uuid.UUID `json:"userId"`
	Username   string    `json:"username,omitempty"`
	Email      string    `json:"email,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type ContactEvent struct {
	Type       string    `json:"type"`
	ContactID  uuid.UUID `json:"contactId"`
	UserID     uuid.UUID `json:"userId"`
	Name       string    `json:"name,omitempty"`
	Email      string    `json:"email,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewUserEvent(typ string, u *models.User) UserEvent {
	return UserEvent{
		Type:       typ,
		UserID:     u.ID,
		Username:   u.Username,
		Email:      u.Email,
		OccurredAt: time.Now().UTC(),
	}
}

func NewContactEvent(typ string, c *models.Contact) ContactEvent {
	return ContactEvent{
		Type:       typ,
		ContactID:  c.ID,
		UserID:     c.UserID,
		Name:       c.Name,
		Email:      c.Email,
		OccurredAt: time.Now().UTC(),
	}
}

// NopPublisher drops every event. Used when KAFKA_BROKERS is empty.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) error { return nil }

func (NopPublisher) Close() error { return nil }
