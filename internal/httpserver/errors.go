package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/contacts/internal/service"
	"github.com/Skotchmaster/contacts/internal/transport"
)

const msgInternal = "Internal server error"

// ErrorHandler renders every error as {"error": "..."} with optional details.
// Messages of 5xx responses are replaced so internals never reach the client.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	body := transport.ErrorResponse{Error: msgInternal}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			body.Error = m
		case transport.ErrorResponse:
			body = m
		default:
			body.Error = http.StatusText(code)
		}
	}
	if code >= http.StatusInternalServerError {
		body = transport.ErrorResponse{Error: msgInternal}
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, body)
	}
	if werr != nil {
		slog.Error("error_response_failed", "error", werr)
	}
}

// serviceError maps a service failure to an HTTP error and logs it.
func serviceError(l *slog.Logger, event, notFoundMsg string, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		l.Warn(event, "status", 400, "reason", verr.Message, "error", err)
		body := transport.ErrorResponse{Error: verr.Message}
		if len(verr.Details) > 0 {
			body.Details = verr.Details
		}
		return echo.NewHTTPError(http.StatusBadRequest, body)
	case errors.Is(err, service.ErrDuplicateIdentity):
		l.Warn(event, "status", 400, "reason", "duplicate identity")
		return echo.NewHTTPError(http.StatusBadRequest, "Username or email already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		l.Warn(event, "status", 401, "reason", "invalid credentials")
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "reason", notFoundMsg)
		return echo.NewHTTPError(http.StatusNotFound, notFoundMsg)
	default:
		l.Error(event, "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msgInternal).SetInternal(err)
	}
}

func badBody(l *slog.Logger, event string, err error) error {
	l.Warn(event, "status", 400, "reason", "invalid body", "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
}
