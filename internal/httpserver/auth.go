package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/contacts/internal/logging"
	"github.com/Skotchmaster/contacts/internal/middleware/auth"
	"github.com/Skotchmaster/contacts/internal/service"
	"github.com/Skotchmaster/contacts/internal/transport"
)

const msgUserNotFound = "User not found"

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "register_error", err)
	}

	res, err := h.Svc.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return serviceError(l, "register_error", msgUserNotFound, err)
	}

	return c.JSON(http.StatusCreated, transport.AuthResponse{
		Message: "User created successfully",
		User:    res.User,
		Token:   res.Token,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "login_error", err)
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return serviceError(l, "login_failed", msgUserNotFound, err)
	}

	return c.JSON(http.StatusOK, transport.AuthResponse{
		Message: "Login successful",
		User:    res.User,
		Token:   res.Token,
	})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Access token required")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) UpdateMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.update_me")

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Access token required")
	}

	var req transport.UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_account_error", err)
	}

	user, err := h.Svc.UpdateAccount(ctx, userID, service.AccountUpdate{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return serviceError(l, "update_account_error", msgUserNotFound, err)
	}

	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) DeleteMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.delete_me")

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Access token required")
	}

	if err := h.Svc.DeleteAccount(ctx, userID); err != nil {
		return serviceError(l, "delete_account_error", msgUserNotFound, err)
	}

	l.Info("delete_account_success", "user_id", userID)
	return c.NoContent(http.StatusNoContent)
}
