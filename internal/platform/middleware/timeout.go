package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestTimeout returns middleware that sets a context deadline on each
// incoming request. If the deadline passes before the handler completes the
// request context is cancelled and a 504 with a {"message"} body is returned.
// Routes listed in skipRoutes (matched on c.Path()) run without a deadline.
func RequestTimeout(timeout time.Duration, skipRoutes ...string) echo.MiddlewareFunc {
	skip := make(map[string]bool, len(skipRoutes))
	for _, r := range skipRoutes {
		skip[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if timeout <= 0 || skip[c.Path()] {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()

			c.SetRequest(c.Request().WithContext(ctx))

			done := make(chan error, 1)
			go func() {
				done <- next(c)
			}()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					return gatewayTimeoutError(c)
				}
				// Client went away.
				return ctx.Err()
			}
		}
	}
}

func gatewayTimeoutError(c echo.Context) error {
	if !c.Response().Committed {
		return c.JSON(http.StatusGatewayTimeout, map[string]string{
			"message": "request processing exceeded the allowed time limit",
		})
	}
	return nil
}
