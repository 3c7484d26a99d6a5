package client

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/beautydesk/beautydesk/internal/platform/apperr"
	"github.com/beautydesk/beautydesk/internal/platform/auth"
	"github.com/beautydesk/beautydesk/internal/platform/db"
	"github.com/beautydesk/beautydesk/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Any staff member manages clients.
	staff := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleCollaborator))
	staff.GET("/clients", h.List)
	staff.GET("/clients/:id", h.Get)
	staff.POST("/clients", h.Create)
	staff.PUT("/clients/:id", h.Update)
	staff.DELETE("/clients/:id", h.Delete)
}

type clientRequest struct {
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Notes *string `json:"notes"`
}

func (r clientRequest) toClient() *Client {
	return &Client{Name: r.Name, Phone: r.Phone, Notes: r.Notes}
}

func (h *Handler) Create(c echo.Context) error {
	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	cl := req.toClient()
	if err := h.svc.Create(ctx, db.TenantFromContext(ctx), cl); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, cl)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	cl, err := h.svc.Get(ctx, db.TenantFromContext(ctx), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(ctx, db.TenantFromContext(ctx), c.QueryParam("search"), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	cl := req.toClient()
	cl.ID = id
	if err := h.svc.Update(ctx, db.TenantFromContext(ctx), cl); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	if err := h.svc.Delete(ctx, db.TenantFromContext(ctx), id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
