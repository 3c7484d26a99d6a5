package db

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const TenantIDKey contextKey = "tenant_id"

// SessionCompanyKey is the echo context key under which the auth
// middleware stores the authenticated user's company.
const SessionCompanyKey = "session_company_id"

// TenantMiddleware binds the authenticated user's company to the request
// context. It must run after the session middleware; requests without a
// company are rejected.
func TenantMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tenantID, ok := c.Get(SessionCompanyKey).(uuid.UUID)
			if !ok || tenantID == uuid.Nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}

			ctx := WithTenant(c.Request().Context(), tenantID)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("tenant_id", tenantID)

			return next(c)
		}
	}
}

// WithTenant returns a copy of ctx carrying tenantID.
func WithTenant(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, TenantIDKey, tenantID)
}

// TenantFromContext retrieves the tenant (company) ID from context.
func TenantFromContext(ctx context.Context) uuid.UUID {
	tid, _ := ctx.Value(TenantIDKey).(uuid.UUID)
	return tid
}
