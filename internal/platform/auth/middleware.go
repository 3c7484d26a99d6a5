package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/beautydesk/beautydesk/internal/platform/db"
)

// SessionCookieName is the HttpOnly cookie that carries the session token.
const SessionCookieName = "session"

type contextKey string

const PrincipalKey contextKey = "principal"

// Principal is the authenticated caller of a request.
type Principal struct {
	SessionID string
	UserID    uuid.UUID
	CompanyID uuid.UUID
	Role      string
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(PrincipalKey).(*Principal)
	return p
}

// Manager starts, resolves and ends sessions. Tokens are signed by the
// issuer; the store is the source of truth for whether a session is live.
type Manager struct {
	store        SessionStore
	issuer       *TokenIssuer
	ttl          time.Duration
	cookieSecure bool
	now          func() time.Time
}

func NewManager(store SessionStore, issuer *TokenIssuer, ttl time.Duration, cookieSecure bool) *Manager {
	return &Manager{
		store:        store,
		issuer:       issuer,
		ttl:          ttl,
		cookieSecure: cookieSecure,
		now:          time.Now,
	}
}

// Start creates a session for the user and returns its signed token.
func (m *Manager) Start(ctx context.Context, userID, companyID uuid.UUID, role string) (string, *Session, error) {
	now := m.now()
	sess := &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		CompanyID: companyID,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, sess); err != nil {
		return "", nil, fmt.Errorf("save session: %w", err)
	}
	token, err := m.issuer.Issue(sess)
	if err != nil {
		return "", nil, err
	}
	return token, sess, nil
}

// Authenticate verifies the token and checks that its session is still live.
func (m *Manager) Authenticate(ctx context.Context, token string) (*Principal, error) {
	claims, err := m.issuer.Parse(token)
	if err != nil {
		return nil, err
	}
	sess, err := m.store.Get(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if sess.UserID.String() != claims.Subject || sess.CompanyID.String() != claims.CompanyID {
		return nil, ErrInvalidToken
	}
	return &Principal{
		SessionID: sess.ID,
		UserID:    sess.UserID,
		CompanyID: sess.CompanyID,
		Role:      sess.Role,
	}, nil
}

// End deletes a single session.
func (m *Manager) End(ctx context.Context, sessionID string) error {
	return m.store.Delete(ctx, sessionID)
}

// EndAllForUser deletes every session of a user, e.g. when the user is removed.
func (m *Manager) EndAllForUser(ctx context.Context, userID uuid.UUID) error {
	n, err := m.store.DeleteForUser(ctx, userID)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Ctx(ctx).Info().Str("user_id", userID.String()).Int("sessions", n).Msg("sessions revoked")
	}
	return nil
}

// SetCookie writes the session cookie for token.
func (m *Manager) SetCookie(c echo.Context, token string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (m *Manager) ClearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionMiddleware authenticates the request from the session cookie or a
// Bearer token and stores the principal on the request context. It also
// sets the company id for the tenant middleware.
func SessionMiddleware(m *Manager, skipper middleware.Skipper) echo.MiddlewareFunc {
	if skipper == nil {
		skipper = middleware.DefaultSkipper
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}

			token, err := tokenFromRequest(c)
			if err != nil {
				return err
			}

			ctx := c.Request().Context()
			p, err := m.Authenticate(ctx, token)
			if err != nil {
				if !errors.Is(err, ErrInvalidToken) && !errors.Is(err, ErrSessionNotFound) {
					log.Ctx(ctx).Error().Err(err).Msg("session lookup failed")
					return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
			}

			c.Set(db.SessionCompanyKey, p.CompanyID)
			c.SetRequest(c.Request().WithContext(WithPrincipal(ctx, p)))
			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context) (string, error) {
	if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
}
