package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	RoleAdmin        = "admin"
	RoleCollaborator = "collaborator"
)

// ValidRole reports whether role is one of the known staff roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleCollaborator
}

// RequireRole returns middleware that checks if the caller has one of the
// specified roles. Admins pass every check.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := PrincipalFromContext(c.Request().Context())
			if p == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if p.Role == RoleAdmin {
				return next(c)
			}
			for _, required := range roles {
				if p.Role == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}
