package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/askgita/askgita/internal/common"
	"github.com/askgita/askgita/internal/server/auth"
	"github.com/askgita/askgita/internal/server/repositories/redis"
)

type contextKey string

const userIDKey contextKey = "userID"

// Authenticator resolves the caller's account id from the request.
//
// Identification order:
//  1. A signed bearer token (or an accepted legacy token_<id> value).
//  2. The X-User-ID header, as a fallback for clients whose cached token
//     is damaged. When both are present they must agree.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret []byte) *Authenticator {
	return &Authenticator{secret: secret}
}

// identify extracts the account id, or "" for a guest.
func (a *Authenticator) identify(r *http.Request) (string, error) {
	headerID := r.Header.Get(common.UserIDHeaderName)

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return headerID, nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", common.ErrInvalidToken
	}

	userID, err := auth.GetUserIDFromToken(parts[1], a.secret)
	if err != nil {
		// Damaged token, readable header: the header identifies the caller.
		if headerID != "" {
			return headerID, nil
		}
		return "", err
	}

	if headerID != "" && headerID != userID {
		return "", common.ErrInvalidToken
	}
	return userID, nil
}

// Required rejects requests without a resolvable account id.
func (a *Authenticator) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.identify(r)
		if err != nil || userID == "" {
			Unauthorized(w, "invalid or missing credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
	})
}

// Optional resolves the account id when present and passes guests through.
// An unreadable token is still an error; a silent downgrade to guest would
// quietly stop archiving an authenticated user's conversations.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.identify(r)
		if err != nil {
			Unauthorized(w, "invalid credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
	})
}

func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID gets the authenticated account id from context; ok is false for
// guests.
func UserID(ctx context.Context) (string, bool) {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID, userID != ""
}

// GuestRateLimit limits unauthenticated chat traffic per client IP.
// Authenticated requests pass through unlimited.
type GuestRateLimit struct {
	limiter *redis.RateLimiter
}

func NewGuestRateLimit(limiter *redis.RateLimiter) *GuestRateLimit {
	return &GuestRateLimit{limiter: limiter}
}

func (m *GuestRateLimit) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserID(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}

		allowed, _, err := m.limiter.Allow(r.Context(), clientIP(r))
		if err != nil {
			// A broken limiter must not take the chat endpoint down.
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			Error(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP relies on chi's RealIP middleware having rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i != -1 {
		host = host[:i]
	}
	return host
}
