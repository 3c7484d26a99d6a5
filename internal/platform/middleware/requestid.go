package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const RequestIDHeader = "X-Request-ID"

// RequestID assigns every request an id, taken from the X-Request-ID header
// when the client sent one. The id is stored under "request_id", echoed in
// the response header and attached to a request-scoped logger so that
// log.Ctx(ctx) in services carries it.
func RequestID() echo.MiddlewareFunc {
	return RequestIDWithLogger(zerolog.Nop())
}

func RequestIDWithLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(RequestIDHeader)
			if rid == "" || len(rid) > 128 {
				rid = uuid.New().String()
			}
			c.Set("request_id", rid)
			c.Response().Header().Set(RequestIDHeader, rid)

			reqLogger := logger.With().Str("request_id", rid).Logger()
			ctx := reqLogger.WithContext(c.Request().Context())
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
