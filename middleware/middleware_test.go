package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/HSouheill/storefront_backend/services"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func ok(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func serve(e *echo.Echo, method, target, ip string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set(echo.HeaderXRealIP, ip)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	limiter := NewRateLimiter()
	defer limiter.Stop()
	limiter.SetEndpointLimit("/admin/login", rate.Every(time.Hour), 2)

	e := echo.New()
	e.Use(limiter.RateLimit())
	e.POST("/admin/login", ok)
	e.GET("/", ok)
	e.GET("/uploads/*", ok)

	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/admin/login", "1.2.3.4").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/admin/login", "1.2.3.4").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodPost, "/admin/login", "1.2.3.4").Code)

	// the IP stays blocked on every route until the block expires
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodGet, "/", "1.2.3.4").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/uploads/a.jpg", "1.2.3.4").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/admin/login", "5.6.7.8").Code)

	limiter.now = func() time.Time { return time.Now().Add(limiter.blockDuration + time.Second) }
	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/admin/login", "1.2.3.4").Code)
}

type fakeAuthenticator struct {
	valid map[string]*services.SessionClaims
}

func (f fakeAuthenticator) Authenticate(ctx context.Context, realm models.Realm, token string) (*services.SessionClaims, error) {
	claims, ok := f.valid[token]
	if !ok || claims.Realm != realm {
		return nil, services.ErrInvalidSession
	}
	return claims, nil
}

func TestRequireSession(t *testing.T) {
	auth := fakeAuthenticator{valid: map[string]*services.SessionClaims{
		"good": {Username: "admin", Realm: models.RealmAdmin},
	}}

	requireAdmin := RequireSession(auth, models.RealmAdmin, zap.NewNop())
	requireSeo := RequireSession(auth, models.RealmSeo, zap.NewNop())

	e := echo.New()
	e.GET("/admin/orders", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get(ContextUsername).(string))
	}, requireAdmin)
	e.GET("/api/admin/orders", ok, requireAdmin)
	e.GET("/admin/seo-panel", ok, requireSeo)

	rec := serve(e, http.MethodGet, "/admin/orders", "1.1.1.1")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get(echo.HeaderLocation))

	rec = serve(e, http.MethodGet, "/api/admin/orders", "1.1.1.1")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(e, http.MethodGet, "/admin/orders", "1.1.1.1", &http.Cookie{Name: "admin_session", Value: "good"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Body.String())

	// an admin cookie replayed as the seo cookie is rejected
	rec = serve(e, http.MethodGet, "/admin/seo-panel", "1.1.1.1", &http.Cookie{Name: "seo_session", Value: "good"})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/seo-login", rec.Header().Get(echo.HeaderLocation))
}

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	e.Use(SecurityHeaders(SecurityConfig{AllowInlineJS: true}))
	e.GET("/", ok)

	rec := serve(e, http.MethodGet, "/", "1.1.1.1")
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "script-src 'self' 'unsafe-inline'")
}

func TestCORSOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	assert.Equal(t,
		[]string{"https://shop.example", "https://a.example", "https://b.example"},
		CORSOrigins("https://shop.example/"))
}
