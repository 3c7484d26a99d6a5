package financial

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/beautydesk/beautydesk/internal/platform/apperr"
	"github.com/beautydesk/beautydesk/internal/platform/auth"
	"github.com/beautydesk/beautydesk/internal/platform/db"
	"github.com/beautydesk/beautydesk/internal/platform/timeutil"
	"github.com/beautydesk/beautydesk/pkg/money"
	"github.com/beautydesk/beautydesk/pkg/pagination"
)

// ExportRoute is the export path; it is exempt from the request timeout.
const ExportRoute = "/api/financial-records/export"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))

	admin.GET("/financial-records", h.ListRecords)
	admin.GET("/financial-records/summary", h.Summary)
	admin.GET("/financial-records/export", h.Export)
	admin.GET("/financial-records/:id", h.GetRecord)
	admin.POST("/financial-records", h.CreateRecord)
	admin.PUT("/financial-records/:id", h.UpdateRecord)
	admin.DELETE("/financial-records/:id", h.DeleteRecord)

	admin.GET("/financial-goals", h.ListGoals)
	admin.GET("/financial-goals/:id", h.GetGoal)
	admin.GET("/financial-goals/:id/progress", h.Progress)
	admin.POST("/financial-goals", h.CreateGoal)
	admin.PUT("/financial-goals/:id", h.UpdateGoal)
	admin.DELETE("/financial-goals/:id", h.DeleteGoal)
}

// -- Records --

type recordRequest struct {
	Type        string        `json:"type"`
	Category    string        `json:"category"`
	Description string        `json:"description"`
	Value       *money.Amount `json:"value"`
	Date        string        `json:"date"`
}

func (r recordRequest) toRecord() (*Record, error) {
	if r.Value == nil {
		return nil, apperr.Validation("value is required")
	}
	date, err := timeutil.Parse("date", r.Date)
	if err != nil {
		return nil, err
	}
	return &Record{
		Type:        r.Type,
		Category:    r.Category,
		Description: r.Description,
		Value:       *r.Value,
		Date:        date,
	}, nil
}

func parseRecordFilter(c echo.Context) (RecordFilter, error) {
	f := RecordFilter{Type: c.QueryParam("type"), Category: c.QueryParam("category")}
	start, err := timeutil.ParseOptional("start", c.QueryParam("start"))
	if err != nil {
		return f, err
	}
	end, err := timeutil.ParseOptional("end", c.QueryParam("end"))
	if err != nil {
		return f, err
	}
	if end != nil {
		e := timeutil.EndOfDayIfDateOnly(c.QueryParam("end"), *end)
		end = &e
	}
	f.Start, f.End = start, end
	return f, nil
}

func (h *Handler) CreateRecord(c echo.Context) error {
	var req recordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	rec, err := req.toRecord()
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := c.Request().Context()
	if err := h.svc.CreateRecord(ctx, db.TenantFromContext(ctx), rec); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) GetRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	rec, err := h.svc.GetRecord(ctx, db.TenantFromContext(ctx), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) ListRecords(c echo.Context) error {
	f, err := parseRecordFilter(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListRecords(ctx, db.TenantFromContext(ctx), f, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req recordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	rec, err := req.toRecord()
	if err != nil {
		return apperr.Respond(c, err)
	}
	rec.ID = id
	ctx := c.Request().Context()
	if err := h.svc.UpdateRecord(ctx, db.TenantFromContext(ctx), rec); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) DeleteRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	if err := h.svc.DeleteRecord(ctx, db.TenantFromContext(ctx), id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Summary(c echo.Context) error {
	f, err := parseRecordFilter(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := c.Request().Context()
	sum, err := h.svc.Summary(ctx, db.TenantFromContext(ctx), f.Start, f.End)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *Handler) Export(c echo.Context) error {
	f, err := parseRecordFilter(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := c.Request().Context()
	data, err := h.svc.Export(ctx, db.TenantFromContext(ctx), f)
	if err != nil {
		return apperr.Respond(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="financial-records-%s.xlsx"`, h.svc.now().Format("20060102")))
	return c.Blob(http.StatusOK, XLSXContentType, data)
}

// -- Goals --

type goalRequest struct {
	Target    *money.Amount `json:"target"`
	Period    string        `json:"period"`
	StartDate string        `json:"startDate"`
	EndDate   string        `json:"endDate"`
}

func (r goalRequest) toGoal() (*Goal, error) {
	if r.Target == nil {
		return nil, apperr.Validation("target is required")
	}
	start, err := timeutil.Parse("startDate", r.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := timeutil.Parse("endDate", r.EndDate)
	if err != nil {
		return nil, err
	}
	return &Goal{
		Target:    *r.Target,
		Period:    r.Period,
		StartDate: start,
		EndDate:   timeutil.EndOfDayIfDateOnly(r.EndDate, end),
	}, nil
}

func (h *Handler) CreateGoal(c echo.Context) error {
	var req goalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	g, err := req.toGoal()
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := c.Request().Context()
	if err := h.svc.CreateGoal(ctx, db.TenantFromContext(ctx), g); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, g)
}

func (h *Handler) GetGoal(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	g, err := h.svc.GetGoal(ctx, db.TenantFromContext(ctx), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *Handler) ListGoals(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListGoals(ctx, db.TenantFromContext(ctx), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateGoal(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req goalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	g, err := req.toGoal()
	if err != nil {
		return apperr.Respond(c, err)
	}
	g.ID = id
	ctx := c.Request().Context()
	if err := h.svc.UpdateGoal(ctx, db.TenantFromContext(ctx), g); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *Handler) DeleteGoal(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	if err := h.svc.DeleteGoal(ctx, db.TenantFromContext(ctx), id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Progress(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	p, err := h.svc.Progress(ctx, db.TenantFromContext(ctx), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
