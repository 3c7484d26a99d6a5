package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/beautydesk/beautydesk/internal/domain/scheduling"
	"github.com/beautydesk/beautydesk/internal/platform/apperr"
	"github.com/beautydesk/beautydesk/internal/platform/auth"
	"github.com/beautydesk/beautydesk/internal/platform/db"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleCollaborator))
	staff.GET("/dashboard/stats", h.Stats)
}

func (h *Handler) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	viewer := scheduling.Viewer{}
	if p := auth.PrincipalFromContext(ctx); p != nil {
		viewer = scheduling.Viewer{UserID: p.UserID, Admin: p.IsAdmin()}
	}
	stats, err := h.svc.Stats(ctx, db.TenantFromContext(ctx), c.QueryParam("timeFilter"), viewer)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
