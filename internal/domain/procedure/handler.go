package procedure

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/beautydesk/beautydesk/internal/platform/apperr"
	"github.com/beautydesk/beautydesk/internal/platform/auth"
	"github.com/beautydesk/beautydesk/internal/platform/db"
	"github.com/beautydesk/beautydesk/pkg/money"
	"github.com/beautydesk/beautydesk/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleCollaborator))
	read.GET("/procedures", h.List)
	read.GET("/procedures/:id", h.Get)

	write := api.Group("", auth.RequireRole(auth.RoleAdmin))
	write.POST("/procedures", h.Create)
	write.PUT("/procedures/:id", h.Update)
	write.DELETE("/procedures/:id", h.Delete)
}

// procedureRequest takes the price as "19.90" or 19.90; an amount with more
// than two fractional digits fails the bind.
type procedureRequest struct {
	Name  string        `json:"name"`
	Price *money.Amount `json:"price"`
}

func (r procedureRequest) toProcedure() (*Procedure, error) {
	if r.Price == nil {
		return nil, apperr.Validation("price is required")
	}
	return &Procedure{Name: r.Name, Price: *r.Price}, nil
}

func (h *Handler) Create(c echo.Context) error {
	var req procedureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := req.toProcedure()
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := c.Request().Context()
	if err := h.svc.Create(ctx, db.TenantFromContext(ctx), p); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	p, err := h.svc.Get(ctx, db.TenantFromContext(ctx), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(ctx, db.TenantFromContext(ctx), pg.Limit, pg.Offset)
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
	var req procedureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := req.toProcedure()
	if err != nil {
		return apperr.Respond(c, err)
	}
	p.ID = id
	ctx := c.Request().Context()
	if err := h.svc.Update(ctx, db.TenantFromContext(ctx), p); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, p)
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
