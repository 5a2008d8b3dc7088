package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

// RateLimiter throttles requests per client IP. An IP that exceeds its
// bucket is blocked for blockDuration.
type RateLimiter struct {
	ips            map[string]*rate.Limiter
	blockedIPs     map[string]time.Time
	mu             sync.Mutex
	defaultLimit   rate.Limit
	defaultBurst   int
	blockDuration  time.Duration
	endpointLimits map[string]endpointLimit
	now            func() time.Time
	done           chan struct{}
}

func NewRateLimiter() *RateLimiter {
	limiter := &RateLimiter{
		ips:            make(map[string]*rate.Limiter),
		blockedIPs:     make(map[string]time.Time),
		defaultLimit:   rate.Every(100 * time.Millisecond), // 10 requests per second
		defaultBurst:   20,
		blockDuration:  5 * time.Minute,
		endpointLimits: make(map[string]endpointLimit),
		now:            time.Now,
		done:           make(chan struct{}),
	}

	// Login forms are also throttled per realm in Redis; this stops floods
	// before they reach it.
	login := endpointLimit{limit: rate.Every(2 * time.Second), burst: 5}
	limiter.endpointLimits["/admin/login"] = login
	limiter.endpointLimits["/admin/seo-login"] = login

	limiter.endpointLimits["/checkout/place-order"] = endpointLimit{limit: rate.Every(time.Second), burst: 5}
	limiter.endpointLimits["/newsletter/subscribe"] = endpointLimit{limit: rate.Every(time.Second), burst: 3}

	go limiter.cleanupBlockedIPs()

	return limiter
}

// Stop ends the cleanup goroutine.
func (r *RateLimiter) Stop() {
	close(r.done)
}

// SetEndpointLimit overrides the bucket used for a route path.
func (r *RateLimiter) SetEndpointLimit(path string, limit rate.Limit, burst int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpointLimits[path] = endpointLimit{limit: limit, burst: burst}
}

func (r *RateLimiter) cleanupBlockedIPs() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.mu.Lock()
			now := r.now()
			for ip, blockUntil := range r.blockedIPs {
				if now.After(blockUntil) {
					delete(r.blockedIPs, ip)
					delete(r.ips, ip)
				}
			}
			r.mu.Unlock()
		}
	}
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// static files are never limited
			p := c.Request().URL.Path
			if strings.HasPrefix(p, "/uploads/") || strings.HasPrefix(p, "/static/") {
				return next(c)
			}

			ip := c.RealIP()
			if retryAfter, blocked := r.blocked(ip); blocked {
				return c.JSON(http.StatusTooManyRequests, models.Response{
					Success: false,
					Message: "IP address blocked due to too many requests",
					Data:    map[string]string{"retryAfter": retryAfter.Format(time.RFC3339)},
				})
			}

			// buckets are per IP and route, so a busy shop page does not eat
			// into the login allowance
			route := c.Path()
			limiter := r.getLimiter(ip, route)
			if !limiter.Allow() {
				r.mu.Lock()
				until := r.now().Add(r.blockDuration)
				r.blockedIPs[ip] = until
				r.mu.Unlock()

				return c.JSON(http.StatusTooManyRequests, models.Response{
					Success: false,
					Message: "Too many requests",
					Data:    map[string]string{"retryAfter": until.Format(time.RFC3339)},
				})
			}

			return next(c)
		}
	}
}

// blocked reports whether ip is blocked. Expired blocks are lifted and the
// IP's buckets reset.
func (r *RateLimiter) blocked(ip string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	blockUntil, ok := r.blockedIPs[ip]
	if !ok {
		return time.Time{}, false
	}
	if r.now().Before(blockUntil) {
		return blockUntil, true
	}
	delete(r.blockedIPs, ip)
	for key := range r.ips {
		if strings.HasPrefix(key, ip+"|") {
			delete(r.ips, key)
		}
	}
	return time.Time{}, false
}

func (r *RateLimiter) getLimiter(ip, route string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	limit, burst := r.defaultLimit, r.defaultBurst
	if l, ok := r.endpointLimits[route]; ok {
		limit, burst = l.limit, l.burst
	}

	key := ip + "|" + route
	limiter, exists := r.ips[key]
	if !exists {
		limiter = rate.NewLimiter(limit, burst)
		r.ips[key] = limiter
	}
	return limiter
}
