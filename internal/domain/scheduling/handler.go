package scheduling

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/beautydesk/beautydesk/internal/platform/apperr"
	"github.com/beautydesk/beautydesk/internal/platform/auth"
	"github.com/beautydesk/beautydesk/internal/platform/db"
	"github.com/beautydesk/beautydesk/internal/platform/timeutil"
	"github.com/beautydesk/beautydesk/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleCollaborator))
	staff.GET("/appointments", h.List)
	staff.GET("/appointments/:id", h.Get)
	staff.POST("/appointments", h.Create)
	staff.PUT("/appointments/:id", h.Update)
	staff.DELETE("/appointments/:id", h.Delete)
}

// appointmentRequest is shared by create and update. A submitted value is
// ignored; it is always recomputed from the procedures. procedureId is the
// single-procedure form older clients send.
type appointmentRequest struct {
	ClientID       *uuid.UUID  `json:"clientId"`
	CollaboratorID *uuid.UUID  `json:"collaboratorId"`
	ProcedureIDs   []uuid.UUID `json:"procedureIds"`
	ProcedureID    *uuid.UUID  `json:"procedureId"`
	Date           *string     `json:"date"`
	Status         *string     `json:"status"`
	Notes          *string     `json:"notes"`
}

func (r appointmentRequest) procedureIDs() []uuid.UUID {
	if r.ProcedureIDs != nil {
		return r.ProcedureIDs
	}
	if r.ProcedureID != nil {
		return []uuid.UUID{*r.ProcedureID}
	}
	return nil
}

func viewerFrom(ctx context.Context) Viewer {
	p := auth.PrincipalFromContext(ctx)
	if p == nil {
		return Viewer{}
	}
	return Viewer{UserID: p.UserID, Admin: p.IsAdmin()}
}

func (h *Handler) Create(c echo.Context) error {
	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	viewer := viewerFrom(ctx)

	if req.ClientID == nil {
		return apperr.Respond(c, apperr.Validation("clientId is required"))
	}
	in := CreateInput{
		ClientID:       *req.ClientID,
		CollaboratorID: viewer.UserID,
		ProcedureIDs:   req.procedureIDs(),
		Notes:          req.Notes,
	}
	if req.CollaboratorID != nil {
		in.CollaboratorID = *req.CollaboratorID
	}
	if req.Status != nil {
		in.Status = *req.Status
	}
	date := ""
	if req.Date != nil {
		date = *req.Date
	}
	t, err := timeutil.Parse("date", date)
	if err != nil {
		return apperr.Respond(c, err)
	}
	in.Date = t

	a, err := h.svc.Create(ctx, db.TenantFromContext(ctx), in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	a, err := h.svc.Get(ctx, db.TenantFromContext(ctx), id, viewerFrom(ctx))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) List(c echo.Context) error {
	f := ListFilter{Status: c.QueryParam("status")}
	var err error
	if f.Start, err = timeutil.ParseOptional("start", c.QueryParam("start")); err != nil {
		return apperr.Respond(c, err)
	}
	if f.End, err = timeutil.ParseOptional("end", c.QueryParam("end")); err != nil {
		return apperr.Respond(c, err)
	}
	if f.End != nil {
		end := timeutil.EndOfDayIfDateOnly(c.QueryParam("end"), *f.End)
		f.End = &end
	}
	if f.CollaboratorID, err = optionalID(c, "collaboratorId"); err != nil {
		return err
	}
	if f.ClientID, err = optionalID(c, "clientId"); err != nil {
		return err
	}

	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(ctx, db.TenantFromContext(ctx), viewerFrom(ctx), f, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func optionalID(c echo.Context, param string) (*uuid.UUID, error) {
	raw := c.QueryParam(param)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+param)
	}
	return &id, nil
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	in := UpdateInput{
		ClientID:       req.ClientID,
		CollaboratorID: req.CollaboratorID,
		ProcedureIDs:   req.procedureIDs(),
		Status:         req.Status,
		Notes:          req.Notes,
	}
	if req.Date != nil {
		t, err := timeutil.Parse("date", *req.Date)
		if err != nil {
			return apperr.Respond(c, err)
		}
		in.Date = &t
	}

	ctx := c.Request().Context()
	tenant := db.TenantFromContext(ctx)
	// Collaborators may only change their own appointments.
	if _, err := h.svc.Get(ctx, tenant, id, viewerFrom(ctx)); err != nil {
		return apperr.Respond(c, err)
	}
	a, err := h.svc.Update(ctx, tenant, id, in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	tenant := db.TenantFromContext(ctx)
	if _, err := h.svc.Get(ctx, tenant, id, viewerFrom(ctx)); err != nil {
		return apperr.Respond(c, err)
	}
	if err := h.svc.Delete(ctx, tenant, id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
