package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/contacts/internal/db"
	"github.com/Skotchmaster/contacts/internal/logging"
	"github.com/Skotchmaster/contacts/internal/middleware/auth"
)

type Deps struct {
	DB              *gorm.DB
	AuthHandler     *AuthHTTP
	ContactsHandler *ContactsHTTP
	AuthMiddleware  *auth.BearerAuth
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx, d.DB); err != nil {
			logging.FromContext(ctx).Error("readiness_failed", "status", 503, "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	authGroup := e.Group("/auth")
	authGroup.POST("/register", d.AuthHandler.Register)
	authGroup.POST("/login", d.AuthHandler.Login)

	me := authGroup.Group("/me", d.AuthMiddleware.RequireAuth)
	me.GET("", d.AuthHandler.Me)
	me.PUT("", d.AuthHandler.UpdateMe)
	me.DELETE("", d.AuthHandler.DeleteMe)

	contacts := e.Group("/contacts", d.AuthMiddleware.RequireAuth)
	contacts.GET("", d.ContactsHandler.List)
	contacts.POST("", d.ContactsHandler.Create)
	contacts.GET("/search", d.ContactsHandler.Search)
	contacts.GET("/:id", d.ContactsHandler.Get)
	contacts.PUT("/:id", d.ContactsHandler.Update)
	contacts.DELETE("/:id", d.ContactsHandler.Delete)
}
