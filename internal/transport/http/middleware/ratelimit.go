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

	"backoffice/internal/transport/http/api"
	"backoffice/internal/transport/http/shared"
)

const maxTrackedClients = 10000

type sensitiveScope string

const (
	sensitiveScopeNone  sensitiveScope = ""
	sensitiveScopeAuth  sensitiveScope = "auth"
	sensitiveScopeActor sensitiveScope = "actor"
)

var authRoutes = map[string]bool{
	"/auth/login":      true,
	"/auth/mfa/setup":  true,
	"/auth/mfa/enable": true,
}

var planillaActions = []string{"/generar", "/aprobar", "/pagar", "/cancelar"}

// windowLimiter counts requests per key in fixed windows.
type windowLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	key     func(*http.Request) string
	buckets map[string]*windowBucket
}

type windowBucket struct {
	count int
	reset time.Time
}

func newWindowLimiter(limit int, window time.Duration, key func(*http.Request) string) *windowLimiter {
	return &windowLimiter{limit: limit, window: window, key: key, buckets: map[string]*windowBucket{}}
}

// take counts one request for key and reports whether it fits the window,
// how many remain and when the window resets.
func (l *windowLimiter) take(key string, now time.Time) (bool, int, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.buckets) >= maxTrackedClients {
		for k, b := range l.buckets {
			if now.After(b.reset) {
				delete(l.buckets, k)
			}
		}
	}
	b, ok := l.buckets[key]
	if !ok || now.After(b.reset) {
		b = &windowBucket{reset: now.Add(l.window)}
		l.buckets[key] = b
	}
	b.count++
	return b.count <= l.limit, max(l.limit-b.count, 0), b.reset
}

// allow answers 429 and returns false once the caller's window is spent.
func (l *windowLimiter) allow(w http.ResponseWriter, r *http.Request) bool {
	if l.limit <= 0 {
		return true
	}
	key := l.key(r)
	now := time.Now()
	ok, remaining, reset := l.take(key, now)
	resetIn := int(reset.Sub(now).Seconds())

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetIn))
	if ok {
		return true
	}
	w.Header().Set("Retry-After", strconv.Itoa(max(resetIn, 1)))
	slog.Warn("rate limit exceeded", "key", key, "method", r.Method, "path", r.URL.Path, "limit", l.limit)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

// RateLimit throttles every request per authenticated user, or per client IP
// for anonymous calls.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	l := newWindowLimiter(limit, window, actorOrIPKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.allow(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// SensitiveMutationRateLimit adds tighter limits on login and MFA (a quarter
// of baseLimit, by IP and by email) and on planilla transitions and batch
// attendance (half of baseLimit, per user).
func SensitiveMutationRateLimit(baseLimit int, window time.Duration) func(http.Handler) http.Handler {
	authByIP := newWindowLimiter(max(baseLimit/4, 1), window, clientIPKey)
	authByEmail := newWindowLimiter(max(baseLimit/4, 1), window, loginEmailKey)
	byActor := newWindowLimiter(max(baseLimit/2, 1), window, actorOrIPKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch sensitiveRateScope(r) {
			case sensitiveScopeAuth:
				if !authByIP.allow(w, r) || !authByEmail.allow(w, r) {
					return
				}
			case sensitiveScopeActor:
				if !byActor.allow(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sensitiveRateScope(r *http.Request) sensitiveScope {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return sensitiveScopeNone
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	if authRoutes[path] {
		return sensitiveScopeAuth
	}
	if path == "/asistencia/lote" {
		return sensitiveScopeActor
	}
	if strings.HasPrefix(path, "/planillas/") {
		for _, action := range planillaActions {
			if strings.HasSuffix(path, action) {
				return sensitiveScopeActor
			}
		}
	}
	return sensitiveScopeNone
}

func actorOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.CompanyID + ":" + user.UserID
	}
	return clientIPKey(r)
}

func clientIPKey(r *http.Request) string {
	return "ip:" + shared.ClientIP(r)
}

// loginEmailKey keys on the email of a JSON login body and restores the body
// for the handler. Requests without one fall back to the client IP.
func loginEmailKey(r *http.Request) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return clientIPKey(r)
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return clientIPKey(r)
	}
	var payload struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(raw, &payload) != nil || strings.TrimSpace(payload.Email) == "" {
		return clientIPKey(r)
	}
	return "email:" + strings.ToLower(strings.TrimSpace(payload.Email))
}
