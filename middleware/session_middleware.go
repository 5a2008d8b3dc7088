package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/HSouheill/storefront_backend/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Context keys set by RequireSession
const (
	ContextUsername = "username"
	ContextRealm    = "realm"
)

// SessionAuthenticator resolves a session cookie value.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, realm models.Realm, token string) (*services.SessionClaims, error)
}

// SessionCookieName is the cookie holding the realm's session token.
func SessionCookieName(realm models.Realm) string {
	return string(realm) + "_session"
}

// LoginPath is where unauthenticated browser requests of a realm are sent.
func LoginPath(realm models.Realm) string {
	if realm == models.RealmSeo {
		return "/admin/seo-login"
	}
	return "/admin/login"
}

func wantsJSON(c echo.Context) bool {
	req := c.Request()
	return strings.HasPrefix(req.URL.Path, "/api/") ||
		strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) ||
		strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) ||
		req.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// RequireSession admits only requests carrying a live session of realm.
// Browsers are redirected to the realm's login page, API callers get 401.
func RequireSession(auth SessionAuthenticator, realm models.Realm, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			deny := func() error {
				if wantsJSON(c) {
					return c.JSON(http.StatusUnauthorized, models.Response{
						Success: false,
						Message: "Authentication required",
					})
				}
				return c.Redirect(http.StatusFound, LoginPath(realm))
			}

			cookie, err := c.Cookie(SessionCookieName(realm))
			if err != nil || cookie.Value == "" {
				return deny()
			}

			claims, err := auth.Authenticate(c.Request().Context(), realm, cookie.Value)
			if err != nil {
				if !errors.Is(err, services.ErrInvalidSession) {
					logger.Error("session lookup failed", zap.String("realm", string(realm)), zap.Error(err))
				}
				return deny()
			}

			c.Set(ContextUsername, claims.Username)
			c.Set(ContextRealm, claims.Realm)
			return next(c)
		}
	}
}
