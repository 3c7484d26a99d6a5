package company

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/beautydesk/beautydesk/internal/platform/apperr"
	"github.com/beautydesk/beautydesk/internal/platform/auth"
	"github.com/beautydesk/beautydesk/internal/platform/db"
	"github.com/beautydesk/beautydesk/pkg/pagination"
)

type Handler struct {
	svc      *Service
	sessions *auth.Manager
}

func NewHandler(svc *Service, sessions *auth.Manager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

// RegisterRoutes mounts the registration and login endpoints on public and
// the session-protected endpoints on api.
func (h *Handler) RegisterRoutes(public *echo.Group, api *echo.Group) {
	public.POST("/auth/register", h.RegisterAdmin)
	public.POST("/auth/register/collaborator", h.RegisterCollaborator)
	public.POST("/auth/login", h.Login)

	api.POST("/auth/logout", h.Logout)
	api.GET("/auth/me", h.Me)
	api.GET("/company", h.GetCompany)
	api.GET("/users", h.ListUsers)
	api.GET("/users/:id", h.GetUser)

	adminGroup := api.Group("", auth.RequireRole(auth.RoleAdmin))
	adminGroup.PUT("/users/:id", h.UpdateUser)
	adminGroup.DELETE("/users/:id", h.DeleteUser)
}

type sessionResponse struct {
	User      *User     `json:"user"`
	Company   *Company  `json:"company,omitempty"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// -- Auth Handlers --

func (h *Handler) RegisterAdmin(c echo.Context) error {
	var in AdminRegistration
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	u, co, err := h.svc.RegisterAdmin(c.Request().Context(), in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return h.startSession(c, http.StatusCreated, u, co)
}

func (h *Handler) RegisterCollaborator(c echo.Context) error {
	var in CollaboratorRegistration
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	u, err := h.svc.RegisterCollaborator(c.Request().Context(), in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return h.startSession(c, http.StatusCreated, u, nil)
}

func (h *Handler) Login(c echo.Context) error {
	var in loginRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if in.Email == "" || in.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}
	u, err := h.svc.Login(c.Request().Context(), in.Email, in.Password)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return h.startSession(c, http.StatusOK, u, nil)
}

func (h *Handler) startSession(c echo.Context, status int, u *User, co *Company) error {
	token, sess, err := h.sessions.Start(c.Request().Context(), u.ID, u.CompanyID, u.Role)
	if err != nil {
		return apperr.Respond(c, err)
	}
	h.sessions.SetCookie(c, token, sess.ExpiresAt)
	return c.JSON(status, sessionResponse{User: u, Company: co, Token: token, ExpiresAt: sess.ExpiresAt})
}

func (h *Handler) Logout(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())
	if p != nil {
		if err := h.sessions.End(c.Request().Context(), p.SessionID); err != nil {
			return apperr.Respond(c, err)
		}
	}
	h.sessions.ClearCookie(c)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	p := auth.PrincipalFromContext(ctx)
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	u, err := h.svc.GetUser(ctx, db.TenantFromContext(ctx), p.UserID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// -- Company Handlers --

func (h *Handler) GetCompany(c echo.Context) error {
	ctx := c.Request().Context()
	co, err := h.svc.GetCompany(ctx, db.TenantFromContext(ctx))
	if err != nil {
		return apperr.Respond(c, err)
	}
	if !auth.PrincipalFromContext(ctx).IsAdmin() {
		co.InviteCode = ""
	}
	return c.JSON(http.StatusOK, co)
}

// -- User Handlers --

func (h *Handler) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListUsers(ctx, db.TenantFromContext(ctx), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	u, err := h.svc.GetUser(ctx, db.TenantFromContext(ctx), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in UserUpdate
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	p := auth.PrincipalFromContext(ctx)
	u, err := h.svc.UpdateUser(ctx, db.TenantFromContext(ctx), p.UserID, id, in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) DeleteUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	p := auth.PrincipalFromContext(ctx)
	if err := h.svc.DeleteUser(ctx, db.TenantFromContext(ctx), p.UserID, id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
