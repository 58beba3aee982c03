package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"              json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null"      json:"username"`
	Email        string    `gorm:"size:255;uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"column:password;not null"          json:"-"`
	CreatedAt    time.Time `gorm:"not null"                          json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null"                          json:"updatedAt"`
	Contacts     []Contact `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

type Contact struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"              json:"id"`
	Name      string    `gorm:"size:255;not null"                 json:"name"`
	Email     string    `gorm:"size:255;not null"                 json:"email"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"          json:"userId"`
	CreatedAt time.Time `gorm:"not null;index"                    json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null"                          json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// All lists every table owned by the service, parents first.
func All() []any {
	return []any{&User{}, &Contact{}}
}
