// Package apperr defines the error kinds shared by the domain services and
// their mapping onto HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrInvalidReference = errors.New("invalid reference")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = errors.New("conflict")
	ErrUnauthorized     = errors.New("unauthorized")

	// ErrInvalidDate is a validation error that is logged separately.
	ErrInvalidDate = fmt.Errorf("%w: invalid date format", ErrValidation)
)

// kindError carries a kind sentinel and a human-readable message. The
// message is what clients see; the kind drives the status code.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newKind(kind error, format string, args ...interface{}) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Validation returns an ErrValidation with the given message.
func Validation(format string, args ...interface{}) error {
	return newKind(ErrValidation, format, args...)
}

// InvalidReference returns an ErrInvalidReference with the given message.
func InvalidReference(format string, args ...interface{}) error {
	return newKind(ErrInvalidReference, format, args...)
}

// NotFound returns an ErrNotFound naming the missing entity.
func NotFound(entity string) error {
	return newKind(ErrNotFound, "%s not found", entity)
}

// Forbidden returns an ErrForbidden with the given message.
func Forbidden(format string, args ...interface{}) error {
	return newKind(ErrForbidden, format, args...)
}

// Conflict returns an ErrConflict with the given message.
func Conflict(format string, args ...interface{}) error {
	return newKind(ErrConflict, format, args...)
}

// Unauthorized returns an ErrUnauthorized with the given message.
func Unauthorized(format string, args ...interface{}) error {
	return newKind(ErrUnauthorized, format, args...)
}

// InvalidDate returns an ErrInvalidDate naming the offending field.
func InvalidDate(field string) error {
	return newKind(ErrInvalidDate, "invalid date format for %s", field)
}

// Status returns the HTTP status for err. Unknown errors are internal.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidReference):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IsInternal reports whether err maps to a 500.
func IsInternal(err error) bool {
	return err != nil && Status(err) == http.StatusInternalServerError
}

// HTTP converts err into an echo.HTTPError. Internal errors never leak
// their message; the original error is kept as Internal for logging.
func HTTP(err error) *echo.HTTPError {
	status := Status(err)
	if status == http.StatusInternalServerError {
		he := echo.NewHTTPError(status, "internal server error")
		he.Internal = err
		return he
	}
	return echo.NewHTTPError(status, err.Error())
}

// Respond logs err with the request-scoped logger and converts it into the
// HTTP error a handler returns. Invalid dates are logged at warn level
// under their own message; internal errors at error level.
func Respond(c echo.Context, err error) error {
	logger := log.Ctx(c.Request().Context())
	switch {
	case errors.Is(err, ErrInvalidDate):
		logger.Warn().Str("route", c.Path()).Str("detail", err.Error()).Msg("invalid date format")
	case IsInternal(err):
		logger.Error().Err(err).Str("route", c.Path()).Msg("request failed")
	}
	return HTTP(err)
}
