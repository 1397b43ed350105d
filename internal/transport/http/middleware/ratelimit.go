package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"hireflow/internal/transport/http/api"
	"hireflow/internal/transport/http/shared"
)

// sweepEvery is how many requests a limiter serves between purges of
// expired buckets.
const sweepEvery = 256

type RateLimitKeyFunc func(r *http.Request) string

type RateLimitOption func(*rateLimiter)

type rateBucket struct {
	count int
	reset time.Time
}

type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	keyFn   RateLimitKeyFunc
	now     func() time.Time
	clients map[string]*rateBucket
	served  int
}

func WithKeyFunc(fn RateLimitKeyFunc) RateLimitOption {
	return func(rl *rateLimiter) {
		if fn != nil {
			rl.keyFn = fn
		}
	}
}

// WithClock replaces time.Now; tests use it to move across windows.
func WithClock(now func() time.Time) RateLimitOption {
	return func(rl *rateLimiter) {
		if now != nil {
			rl.now = now
		}
	}
}

func RateLimit(limit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	rl := newRateLimiter(limit, window, actorOrIPKey)
	for _, opt := range opts {
		opt(rl)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.enforce(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// SensitiveMutationRateLimit adds tighter budgets on login/refresh (per IP
// and per email) and on the workflow mutations listed in sensitiveRoutes
// (per caller).
func SensitiveMutationRateLimit(baseLimit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	authLimit := max(baseLimit/4, 1)
	mutationLimit := max(baseLimit/2, 1)
	limiters := map[sensitiveScope][]*rateLimiter{
		sensitiveScopeAuth: {
			newRateLimiter(authLimit, window, clientIPKey),
			newRateLimiter(authLimit, window, AuthEmailOrIPKey("email")),
		},
		sensitiveScopeActor: {
			newRateLimiter(mutationLimit, window, actorOrIPKey),
		},
	}
	for _, group := range limiters {
		for _, rl := range group {
			for _, opt := range opts {
				opt(rl)
			}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, rl := range limiters[sensitiveRateScope(r)] {
				if !rl.enforce(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func AuthEmailOrIPKey(field string) RateLimitKeyFunc {
	field = strings.TrimSpace(field)
	if field == "" {
		field = "email"
	}
	return func(r *http.Request) string {
		email := extractJSONField(r, field)
		if email == "" {
			return clientIPKey(r)
		}
		return "email:" + strings.ToLower(email)
	}
}

func actorOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.TenantID + ":" + user.UserID
	}
	return clientIPKey(r)
}

func clientIPKey(r *http.Request) string {
	return "ip:" + shared.ClientIP(r)
}

func newRateLimiter(limit int, window time.Duration, keyFn RateLimitKeyFunc) *rateLimiter {
	if keyFn == nil {
		keyFn = actorOrIPKey
	}
	return &rateLimiter{
		limit:   limit,
		window:  window,
		keyFn:   keyFn,
		now:     time.Now,
		clients: map[string]*rateBucket{},
	}
}

// take counts one hit against key and reports the bucket state after it.
func (rl *rateLimiter) take(key string) (remaining, resetIn int, over bool) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.served++
	if rl.served%sweepEvery == 0 {
		for k, b := range rl.clients {
			if now.After(b.reset) {
				delete(rl.clients, k)
			}
		}
	}

	bucket, ok := rl.clients[key]
	if !ok || now.After(bucket.reset) {
		bucket = &rateBucket{reset: now.Add(rl.window)}
		rl.clients[key] = bucket
	}
	bucket.count++
	return rl.limit - bucket.count, ceilSeconds(bucket.reset.Sub(now)), bucket.count > rl.limit
}

func (rl *rateLimiter) enforce(w http.ResponseWriter, r *http.Request) bool {
	if rl.limit <= 0 {
		return true
	}

	key := rl.keyFn(r)
	if key == "" {
		key = clientIPKey(r)
	}
	remaining, resetIn, over := rl.take(key)

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetIn))
	if !over {
		return true
	}

	w.Header().Set("Retry-After", strconv.Itoa(max(resetIn, 1)))
	slog.WarnContext(r.Context(), "rate limit exceeded", "key", key, "method", r.Method, "path", r.URL.Path, "limit", rl.limit, "window", rl.window.String())
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// extractJSONField peeks at a JSON body field and restores the body for the
// next handler.
func extractJSONField(r *http.Request, field string) string {
	if r == nil || r.Body == nil {
		return ""
	}
	if !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	var payload map[string]any
	if len(raw) == 0 || json.Unmarshal(raw, &payload) != nil {
		return ""
	}
	value, _ := payload[field].(string)
	return strings.TrimSpace(value)
}

type sensitiveScope string

const (
	sensitiveScopeNone  sensitiveScope = ""
	sensitiveScopeAuth  sensitiveScope = "auth"
	sensitiveScopeActor sensitiveScope = "actor"
)

type sensitiveRoute struct {
	method string
	prefix string
	suffix string
	scope  sensitiveScope
}

// sensitiveRoutes are matched against the path with the /api/v1 prefix removed.
var sensitiveRoutes = []sensitiveRoute{
	{method: http.MethodPost, prefix: "/auth/login", scope: sensitiveScopeAuth},
	{method: http.MethodPost, prefix: "/auth/refresh", scope: sensitiveScopeAuth},
	{method: http.MethodPost, prefix: "/offers/", suffix: "/accept", scope: sensitiveScopeActor},
	{method: http.MethodPatch, prefix: "/contracts/", scope: sensitiveScopeActor},
	{method: http.MethodPost, prefix: "/payroll/runs/", suffix: "/initiate", scope: sensitiveScopeActor},
	{method: http.MethodPost, prefix: "/payroll/signing-bonuses/", suffix: "/approve", scope: sensitiveScopeActor},
}

// matches treats a prefix without a trailing slash as an exact path and one
// with a trailing slash as requiring at least one more segment.
func (route sensitiveRoute) matches(path string) bool {
	if !strings.HasSuffix(route.prefix, "/") {
		return path == route.prefix
	}
	if !strings.HasPrefix(path, route.prefix) || len(path) == len(route.prefix) {
		return false
	}
	return route.suffix == "" || strings.HasSuffix(path, route.suffix)
}

func sensitiveRateScope(r *http.Request) sensitiveScope {
	if r == nil {
		return sensitiveScopeNone
	}
	path := strings.TrimPrefix(strings.TrimSpace(r.URL.Path), "/api/v1")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	path = strings.TrimSuffix(path, "/")

	for _, route := range sensitiveRoutes {
		if r.Method == route.method && route.matches(path) {
			return route.scope
		}
	}
	return sensitiveScopeNone
}
