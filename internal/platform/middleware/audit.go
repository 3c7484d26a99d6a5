package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/beautydesk/beautydesk/internal/platform/auth"
)

// AuditEntry records who changed what inside which company.
type AuditEntry struct {
	RequestID  string
	UserID     string
	CompanyID  string
	Role       string
	Resource   string
	ResourceID string
	Action     string // create, update, delete
	Method     string
	Route      string
	IPAddress  string
	StatusCode int
	Timestamp  time.Time
}

// AuditRecorder persists audit entries somewhere other than the log.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// Audit emits one structured log line for every write under /api, after
// the handler ran so that the caller and the outcome are known. Reads are
// not audited. Recorders, when given, receive the same entry.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			action := httpMethodToAction(req.Method)
			if action == "" || !strings.HasPrefix(req.URL.Path, "/api/") {
				return next(c)
			}

			err := next(c)

			entry := AuditEntry{
				Timestamp:  time.Now().UTC(),
				Method:     req.Method,
				Route:      c.Path(),
				IPAddress:  c.RealIP(),
				Action:     action,
				Resource:   extractResource(req.URL.Path),
				ResourceID: c.Param("id"),
				StatusCode: c.Response().Status,
			}
			if err != nil {
				entry.StatusCode = statusOf(err)
			}
			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}
			// The session middleware runs inside this one and replaces the
			// request, so the principal is read after next returns.
			if p := auth.PrincipalFromContext(c.Request().Context()); p != nil {
				entry.UserID = p.UserID.String()
				entry.CompanyID = p.CompanyID.String()
				entry.Role = p.Role
			}

			for _, r := range recorders {
				if r == nil {
					continue
				}
				if recErr := r.RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			logger.Info().
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Str("user_id", entry.UserID).
				Str("company_id", entry.CompanyID).
				Str("role", entry.Role).
				Str("resource", entry.Resource).
				Str("resource_id", entry.ResourceID).
				Str("action", entry.Action).
				Str("route", entry.Route).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("api_write")

			return err
		}
	}
}

// httpMethodToAction maps write methods to audit actions. Reads map to "".
func httpMethodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return ""
	}
}

// extractResource returns the first path segment after /api/:
//
//   - /api/appointments       -> appointments
//   - /api/appointments/123   -> appointments
//   - /api/auth/login         -> auth
func extractResource(path string) string {
	segments := strings.Split(strings.TrimPrefix(path, "/api/"), "/")
	if len(segments) > 0 && segments[0] != "" {
		return segments[0]
	}
	return "unknown"
}
