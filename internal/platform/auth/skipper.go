package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists route paths that bypass the session middleware:
// health checks and the endpoints that create a session.
var publicPaths = map[string]bool{
	"/health":                         true,
	"/health/db":                      true,
	"/api/auth/register":              true,
	"/api/auth/register/collaborator": true,
	"/api/auth/login":                 true,
}

// AuthSkipper returns true for requests whose route should skip authentication.
func AuthSkipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}

// IsPublicPath reports whether path bypasses auth and tenant middleware.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}
