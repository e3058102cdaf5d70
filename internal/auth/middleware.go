package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const (
	userIDKey    ctxKey = "user_id"
	sessionIDKey ctxKey = "session_id"
)

func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}

// WithUserID returns ctx carrying userID as the authenticated caller.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Authenticator resolves the caller from a Bearer token: the JWT must verify
// and the session it names must still exist.
type Authenticator struct {
	JWT      *JWT
	Sessions *SessionStore
}

func (a *Authenticator) resolve(r *http.Request) (Claims, bool) {
	h := r.Header.Get("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return Claims{}, false
	}
	token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))

	claims, err := a.JWT.Verify(token)
	if err != nil {
		return Claims{}, false
	}

	sess, err := a.Sessions.Lookup(r.Context(), claims.SessionID)
	if err != nil || sess.UserID != claims.UserID {
		return Claims{}, false
	}
	return claims, true
}

func withClaims(r *http.Request, c Claims) *http.Request {
	ctx := WithUserID(r.Context(), c.UserID)
	ctx = context.WithValue(ctx, sessionIDKey, c.SessionID)
	return r.WithContext(ctx)
}

func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := a.resolve(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
			return
		}
		next.ServeHTTP(w, withClaims(r, c))
	})
}

// OptionalAuth attaches the caller when a valid token is present and lets
// anonymous requests through untouched.
func (a *Authenticator) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, ok := a.resolve(r); ok {
			r = withClaims(r, c)
		}
		next.ServeHTTP(w, r)
	})
}
