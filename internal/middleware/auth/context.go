package auth

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/contacts/internal/models"
)

const (
	ContextKeyUser   = "user"
	ContextKeyUserID = "user_id"
)

func setUser(c echo.Context, u *models.User) {
	c.Set(ContextKeyUser, u)
	c.Set(ContextKeyUserID, u.ID)
}

func UserFromContext(c echo.Context) (*models.User, bool) {
	u, ok := c.Get(ContextKeyUser).(*models.User)
	return u, ok && u != nil
}

func UserIDFromContext(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(ContextKeyUserID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
