package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/HSouheill/storefront_backend/middleware"
	"github.com/HSouheill/storefront_backend/models"
	"github.com/HSouheill/storefront_backend/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthController logs users in and out of the admin and seo realms. Each
// realm has its own cookie.
type AuthController struct {
	auth         *services.AuthService
	pages        *ShopController
	secureCookie bool
	logger       *zap.Logger
}

func NewAuthController(auth *services.AuthService, pages *ShopController, secureCookie bool, logger *zap.Logger) *AuthController {
	return &AuthController{
		auth:         auth,
		pages:        pages,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// HomePath is where a realm lands after logging in.
func HomePath(realm models.Realm) string {
	if realm == models.RealmSeo {
		return "/admin/seo-panel"
	}
	return "/admin/orders"
}

type loginData struct {
	Heading string
	Action  string
	Error   string
}

func loginHeading(realm models.Realm) string {
	if realm == models.RealmSeo {
		return "SEO Panel Login"
	}
	return "Admin Login"
}

func isFormPost(c echo.Context) bool {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	return strings.HasPrefix(ct, echo.MIMEApplicationForm) || strings.HasPrefix(ct, echo.MIMEMultipartForm)
}

// LoginPage renders the realm's login form, or skips it when the session is
// already live.
func (ac *AuthController) LoginPage(realm models.Realm) echo.HandlerFunc {
	return func(c echo.Context) error {
		if cookie, err := c.Cookie(middleware.SessionCookieName(realm)); err == nil {
			if _, err := ac.auth.Authenticate(c.Request().Context(), realm, cookie.Value); err == nil {
				return c.Redirect(http.StatusFound, HomePath(realm))
			}
		}
		return ac.renderLogin(c, http.StatusOK, realm, "")
	}
}

func (ac *AuthController) renderLogin(c echo.Context, code int, realm models.Realm, message string) error {
	return ac.pages.render(c, code, "login", services.SeoDefaults{
		Title:  loginHeading(realm),
		Robots: "noindex, nofollow",
	}, loginData{
		Heading: loginHeading(realm),
		Action:  middleware.LoginPath(realm),
		Error:   message,
	})
}

// Login checks the realm's credentials and sets its session cookie. Form
// posts are redirected, JSON callers get the envelope.
func (ac *AuthController) Login(realm models.Realm) echo.HandlerFunc {
	return func(c echo.Context) error {
		form := isFormPost(c)
		fail := func(code int, message string) error {
			if form {
				return ac.renderLogin(c, code, realm, message)
			}
			return failure(c, code, message)
		}

		var req models.LoginRequest
		if err := bindAndValidate(c, &req); err != nil {
			return fail(http.StatusBadRequest, "Username and password are required")
		}

		token, expires, err := ac.auth.Login(c.Request().Context(), realm, req.Username, req.Password, c.RealIP())
		switch {
		case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrTooManyAttempts):
			ac.logger.Warn("login failed",
				zap.String("realm", string(realm)),
				zap.String("ip", c.RealIP()),
				zap.Error(err))
			return fail(statusFor(err), err.Error())
		case err != nil:
			ac.logger.Error("login error", zap.String("realm", string(realm)), zap.Error(err))
			return fail(http.StatusInternalServerError, "Login failed")
		}

		c.SetCookie(&http.Cookie{
			Name:     middleware.SessionCookieName(realm),
			Value:    token,
			Path:     "/",
			Expires:  expires,
			HttpOnly: true,
			Secure:   ac.secureCookie,
			SameSite: http.SameSiteLaxMode,
		})
		ac.logger.Info("login succeeded", zap.String("realm", string(realm)), zap.String("username", req.Username))

		if form {
			return c.Redirect(http.StatusSeeOther, HomePath(realm))
		}
		return success(c, http.StatusOK, "Login successful", map[string]interface{}{
			"username":  req.Username,
			"expiresAt": expires,
			"redirect":  HomePath(realm),
		})
	}
}

// Logout revokes the realm's session and clears its cookie.
func (ac *AuthController) Logout(realm models.Realm) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := middleware.SessionCookieName(realm)
		if cookie, err := c.Cookie(name); err == nil {
			if err := ac.auth.Logout(c.Request().Context(), realm, cookie.Value); err != nil {
				ac.logger.Warn("failed to revoke session", zap.String("realm", string(realm)), zap.Error(err))
			}
		}

		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   ac.secureCookie,
			SameSite: http.SameSiteLaxMode,
		})
		return c.Redirect(http.StatusFound, middleware.LoginPath(realm))
	}
}
