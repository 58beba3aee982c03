package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/contacts/internal/logging"
	"github.com/Skotchmaster/contacts/internal/models"
	"github.com/Skotchmaster/contacts/internal/service"
	"github.com/Skotchmaster/contacts/internal/tokens"
)

const (
	msgTokenRequired = "Access token required"
	msgTokenRejected = "Invalid or expired token"
	msgUserMissing   = "Invalid token"
)

// Authenticator resolves a raw bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type BearerAuth struct {
	Svc Authenticator
}

func NewBearerAuth(svc Authenticator) *BearerAuth {
	return &BearerAuth{Svc: svc}
}

// RequireAuth lets the request through only with a verified token whose
// user still exists. The user is stored on the context under ContextKeyUser.
func (m *BearerAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "auth.require")

		token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			l.Warn("auth_failed", "status", 401, "reason", "missing bearer token")
			return echo.NewHTTPError(http.StatusUnauthorized, msgTokenRequired)
		}

		user, err := m.Svc.Authenticate(ctx, token)
		if err != nil {
			switch {
			case errors.Is(err, tokens.ErrInvalidToken):
				l.Warn("auth_failed", "status", 403, "reason", "token rejected", "error", err)
				return echo.NewHTTPError(http.StatusForbidden, msgTokenRejected)
			case errors.Is(err, service.ErrNotFound):
				l.Warn("auth_failed", "status", 401, "reason", "user no longer exists")
				return echo.NewHTTPError(http.StatusUnauthorized, msgUserMissing)
			default:
				l.Error("auth_failed", "status", 500, "reason", "user lookup failed", "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
			}
		}

		setUser(c, user)
		return next(c)
	}
}

// bearerToken returns the second space-separated part of the header.
// Only an absent part counts as a missing token; any other value, whatever
// the scheme word, goes to verification.
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) < 2 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
