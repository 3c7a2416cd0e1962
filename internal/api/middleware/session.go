package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/swirlhq/aio-assistant/internal/api/response"
	"github.com/swirlhq/aio-assistant/internal/domain"
	"github.com/swirlhq/aio-assistant/internal/repository/redis"
)

type contextKey string

const (
	// SessionIDKey carries the authenticated session id.
	SessionIDKey contextKey = "sessionID"
	// CredentialKey carries the session's credential blob.
	CredentialKey contextKey = "credential"
)

// SessionHeader is where callers put the session id; the query parameter is
// accepted as a fallback for redirects and EventSource-style clients.
const (
	SessionHeader     = "X-Session-ID"
	sessionQueryParam = "session"
)

// SessionMiddleware resolves the caller's session against the store.
type SessionMiddleware struct {
	sessions domain.SessionStore
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(sessions domain.SessionStore) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions}
}

// SessionID extracts the session id from a request without validating it.
func SessionID(r *http.Request) string {
	if id := r.Header.Get(SessionHeader); id != "" {
		return id
	}
	return r.URL.Query().Get(sessionQueryParam)
}

// Require rejects requests without a stored credential and injects the
// session id and credential into the request context.
func (m *SessionMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := SessionID(r)
		if sessionID == "" {
			response.Error(w, http.StatusUnauthorized, "missing session id")
			return
		}

		cred, err := m.sessions.Get(r.Context(), sessionID)
		if err != nil {
			response.FromError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), SessionIDKey, sessionID)
		ctx = context.WithValue(ctx, CredentialKey, cred)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionID gets the authenticated session id from context.
func GetSessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(SessionIDKey).(string)
	return id, ok
}

// GetCredential gets the session credential from context.
func GetCredential(ctx context.Context) (domain.Credential, bool) {
	cred, ok := ctx.Value(CredentialKey).(domain.Credential)
	return cred, ok
}

// RateLimitMiddleware handles rate limiting
type RateLimitMiddleware struct {
	rateLimiter *redis.RateLimiter
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(rateLimiter *redis.RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{rateLimiter: rateLimiter}
}

// Limit applies rate limiting keyed by session id, falling back to the
// caller's address for unauthenticated requests.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := SessionID(r)
		if key == "" {
			key = r.RemoteAddr
		}

		allowed, remaining, resetTime, err := m.rateLimiter.Allow(r.Context(), key)
		if err != nil {
			// If the rate limiter fails, allow the request.
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", resetTime.Format(time.RFC3339))

		if !allowed {
			response.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
