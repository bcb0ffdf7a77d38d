package middleware

import (
	"context"
	"net/http"
	"time"

	"ultrachat-backend/internal/models"
)

type contextKey string

const SessionKey contextKey = "session"

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "ultrachat_session"

type SessionResolver interface {
	Resolve(token string) (*models.Session, error)
}

type SessionAuth struct {
	resolver     SessionResolver
	secureCookie bool
}

func NewSessionAuth(resolver SessionResolver, secureCookie bool) *SessionAuth {
	return &SessionAuth{resolver: resolver, secureCookie: secureCookie}
}

// Middleware attaches the caller's session to the request context when the
// cookie holds a live token. Stale cookies are cleared; the request itself
// always proceeds.
func (a *SessionAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := SessionToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := a.resolver.Resolve(token)
		if err != nil {
			a.ClearCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), SessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSession redirects anonymous callers to the login page.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetSession(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSession extracts the session from request context, nil when anonymous.
func GetSession(ctx context.Context) *models.Session {
	sess, _ := ctx.Value(SessionKey).(*models.Session)
	return sess
}

func SessionToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (a *SessionAuth) SetCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *SessionAuth) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
