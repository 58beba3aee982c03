package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/contacts/internal/logging"
	"github.com/Skotchmaster/contacts/internal/middleware/auth"
	"github.com/Skotchmaster/contacts/internal/service"
	"github.com/Skotchmaster/contacts/internal/transport"
	"github.com/Skotchmaster/contacts/internal/util"
)

const msgContactNotFound = "Contact not found"

type ContactsHTTP struct {
	Svc *service.ContactService
}

func (h *ContactsHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contacts.list")

	owner, ok := auth.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Access token required")
	}

	items, err := h.Svc.List(ctx, owner)
	if err != nil {
		return serviceError(l, "contact_list_error", msgContactNotFound, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ContactsHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contacts.get")

	owner, id, err := h.target(c)
	if err != nil {
		return err
	}

	contact, err := h.Svc.Get(ctx, owner, id)
	if err != nil {
		return serviceError(l, "contact_get_error", msgContactNotFound, err)
	}
	return c.JSON(http.StatusOK, contact)
}

func (h *ContactsHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contacts.create")

	owner, ok := auth.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Access token required")
	}

	var req transport.ContactRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "contact_create_error", err)
	}

	contact, err := h.Svc.Create(ctx, owner, req.Name, req.Email)
	if err != nil {
		return serviceError(l, "contact_create_error", msgContactNotFound, err)
	}

	l.Info("contact_create_success", "contact_id", contact.ID)
	return c.JSON(http.StatusCreated, contact)
}

func (h *ContactsHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contacts.update")

	owner, id, err := h.target(c)
	if err != nil {
		return err
	}

	var req transport.ContactRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "contact_update_error", err)
	}

	contact, err := h.Svc.Update(ctx, owner, id, req.Name, req.Email)
	if err != nil {
		return serviceError(l, "contact_update_error", msgContactNotFound, err)
	}

	l.Info("contact_update_success", "contact_id", contact.ID)
	return c.JSON(http.StatusOK, contact)
}

func (h *ContactsHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contacts.delete")

	owner, id, err := h.target(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, owner, id); err != nil {
		return serviceError(l, "contact_delete_error", msgContactNotFound, err)
	}

	l.Info("contact_delete_success", "contact_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *ContactsHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contacts.search")

	owner, ok := auth.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Access token required")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	res, err := h.Svc.Search(ctx, owner, c.QueryParam("q"), page, size)
	if err != nil {
		return serviceError(l, "contact_search_error", msgContactNotFound, err)
	}

	return c.JSON(http.StatusOK, transport.SearchResponse{Total: res.Total, Contacts: res.Items})
}

// target returns the caller and the contact id from the path. An id that is
// not a uuid cannot name any contact, so it is reported as not found.
func (h *ContactsHTTP) target(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	owner, ok := auth.UserIDFromContext(c)
	if !ok {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "Access token required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		logging.FromContext(c.Request().Context()).Warn("contact_lookup_error", "status", 404, "reason", "id is not a uuid", "error", err)
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusNotFound, msgContactNotFound)
	}
	return owner, id, nil
}
