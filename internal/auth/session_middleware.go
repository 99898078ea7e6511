// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/classgo/classgo/internal/logging"
)

// sessionContextKey is the context key type for the authenticated session.
type sessionContextKey struct{}

// SessionContextKey is the context key for the authenticated *Session.
var SessionContextKey = sessionContextKey{}

// GetSession returns the authenticated session from the context, or nil.
func GetSession(ctx context.Context) *Session {
	s, _ := ctx.Value(SessionContextKey).(*Session)
	return s
}

// SessionMiddlewareConfig holds configuration for the session middleware.
type SessionMiddlewareConfig struct {
	// CookieName is the name of the session cookie.
	CookieName string

	// HeaderName is an optional header to read the session token from.
	// If set, the header takes priority over the cookie.
	HeaderName string

	// SessionTTL is the session time-to-live.
	SessionTTL time.Duration

	// SlidingSession enables session expiry extension on each request.
	SlidingSession bool

	// CookiePath is the path for the session cookie.
	CookiePath string

	// CookieSecure sets the Secure flag on the cookie.
	CookieSecure bool

	// CookieSameSite sets the SameSite attribute.
	CookieSameSite http.SameSite

	// LoginPath is where unauthenticated page requests are redirected.
	LoginPath string
}

// DefaultSessionMiddlewareConfig returns sensible defaults.
func DefaultSessionMiddlewareConfig() *SessionMiddlewareConfig {
	return &SessionMiddlewareConfig{
		CookieName:     "classgo_session",
		HeaderName:     "X-Session-Token",
		SessionTTL:     24 * time.Hour,
		SlidingSession: true,
		CookiePath:     "/",
		CookieSecure:   true,
		CookieSameSite: http.SameSiteLaxMode,
		LoginPath:      "/login",
	}
}

// SessionMiddleware provides session-based authentication middleware.
type SessionMiddleware struct {
	store  SessionStore
	config *SessionMiddlewareConfig
}

// NewSessionMiddleware creates a new session middleware.
func NewSessionMiddleware(store SessionStore, config *SessionMiddlewareConfig) *SessionMiddleware {
	if config == nil {
		config = DefaultSessionMiddlewareConfig()
	}
	return &SessionMiddleware{
		store:  store,
		config: config,
	}
}

// Authenticate extracts and validates the session from the request cookie or
// header. If valid, the session is set in the request context. If no session
// is found, the request continues unauthenticated (use RequireAuth for
// protected routes).
func (m *SessionMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := m.extractSessionID(r)
		if sessionID == "" {
			next.ServeHTTP(w, r)
			return
		}

		session, err := m.store.Get(r.Context(), sessionID)
		if err != nil {
			// Session not found or expired - continue without auth
			if !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) {
				logging.Error().Err(err).Msg("Session lookup error")
			}
			next.ServeHTTP(w, r)
			return
		}

		// Touch session to extend expiry (sliding sessions)
		if m.config.SlidingSession {
			newExpiry := time.Now().Add(m.config.SessionTTL)
			if touchErr := m.store.Touch(r.Context(), sessionID, newExpiry); touchErr != nil {
				logging.Error().Err(touchErr).Msg("Failed to touch session")
			}
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth requires a valid session.
// Returns 401 Unauthorized if no valid session is present.
func (m *SessionMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetSession(r.Context()) == nil {
			http.Error(w, "Unauthorized: authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePage gates HTML page routes. Unauthenticated requests are redirected
// to the login page with the original path carried in the redirect parameter.
func (m *SessionMiddleware) RequirePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetSession(r.Context()) == nil {
			target := m.config.LoginPath + "?redirect=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractSessionID extracts the session ID from the request.
// Priority: Header > Cookie
func (m *SessionMiddleware) extractSessionID(r *http.Request) string {
	if m.config.HeaderName != "" {
		if headerValue := r.Header.Get(m.config.HeaderName); headerValue != "" {
			return headerValue
		}
	}

	cookie, err := r.Cookie(m.config.CookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}

// SetSessionCookie sets the session cookie on the response.
func (m *SessionMiddleware) SetSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    sessionID,
		Path:     m.config.CookiePath,
		MaxAge:   int(m.config.SessionTTL.Seconds()),
		Secure:   m.config.CookieSecure,
		HttpOnly: true,
		SameSite: m.config.CookieSameSite,
	})
}

// ClearSessionCookie clears the session cookie.
func (m *SessionMiddleware) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    "",
		Path:     m.config.CookiePath,
		MaxAge:   -1,
		Secure:   m.config.CookieSecure,
		HttpOnly: true,
		SameSite: m.config.CookieSameSite,
	})
}

// CreateSession creates a new session for the user and sets the cookie.
// If oldSessionID is non-empty the old session is deleted first, so a fresh
// session ID is always issued after authentication (session fixation
// protection).
func (m *SessionMiddleware) CreateSession(ctx context.Context, w http.ResponseWriter, session *Session, oldSessionID string) error {
	if oldSessionID != "" {
		// Best effort deletion - ignore errors
		//nolint:errcheck // non-critical cleanup
		m.store.Delete(ctx, oldSessionID)
	}

	if err := m.store.Create(ctx, session); err != nil {
		return err
	}

	m.SetSessionCookie(w, session.ID)
	return nil
}

// DestroySession destroys the session and clears the cookie.
func (m *SessionMiddleware) DestroySession(ctx context.Context, w http.ResponseWriter, sessionID string) error {
	if err := m.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	m.ClearSessionCookie(w)
	return nil
}

// GetCookieName returns the configured session cookie name.
func (m *SessionMiddleware) GetCookieName() string {
	return m.config.CookieName
}

// SessionTTL returns the configured session time-to-live.
func (m *SessionMiddleware) SessionTTL() time.Duration {
	return m.config.SessionTTL
}
