// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/classgo/classgo/internal/auth"
	"github.com/classgo/classgo/internal/classroom"
	"github.com/classgo/classgo/internal/database"
	"github.com/classgo/classgo/internal/logging"
)

// stateCookieName holds the OAuth state nonce between the redirect to Google
// and the callback.
const stateCookieName = "classgo_oauth_state"

// UserInfo is the session user shape returned by the auth endpoints.
type UserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserStatusResponse reports whether the session user has a linked, usable
// Google account. hasValidConnection reflects a live probe, not just the
// stored expiry, so revoked tokens show up too.
type UserStatusResponse struct {
	HasGoogleAccount   bool     `json:"hasGoogleAccount"`
	HasValidConnection bool     `json:"hasValidConnection"`
	User               UserInfo `json:"user"`
}

// SignUp registers a new user and opens a session.
func (s *Server) SignUp(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req SignUpRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		rw.InternalError("Failed to process password")
		return
	}

	user := &database.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			rw.Conflict("An account with this email already exists")
			return
		}
		rw.DatabaseError(err)
		return
	}

	session := auth.NewSession(user.ID, user.Name, user.Email, s.sessions.SessionTTL())
	if err := s.sessions.CreateSession(r.Context(), w, session, ""); err != nil {
		rw.InternalError("Failed to create session")
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("user_id", user.ID.String()).
		Msg("User registered")

	rw.Created(UserInfo{ID: user.ID.String(), Name: user.Name, Email: user.Email})
}

// SignIn verifies credentials and rotates the session.
func (s *Server) SignIn(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req SignInRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, database.ErrNotFound) {
		rw.Unauthorized("Invalid email or password")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		rw.Unauthorized("Invalid email or password")
		return
	}

	// Rotate any pre-login session to prevent fixation.
	var oldID string
	if existing := auth.GetSession(r.Context()); existing != nil {
		oldID = existing.ID
	}

	session := auth.NewSession(user.ID, user.Name, user.Email, s.sessions.SessionTTL())
	if err := s.sessions.CreateSession(r.Context(), w, session, oldID); err != nil {
		rw.InternalError("Failed to create session")
		return
	}

	rw.Success(UserInfo{ID: user.ID.String(), Name: user.Name, Email: user.Email})
}

// SignOut destroys the session and clears the cookie.
func (s *Server) SignOut(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	session := auth.GetSession(r.Context())
	if session != nil {
		if err := s.sessions.DestroySession(r.Context(), w, session.ID); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to destroy session")
		}
	} else {
		s.sessions.ClearSessionCookie(w)
	}

	rw.Success(map[string]string{"message": "Signed out"})
}

// UserStatus returns the session user and the state of their Google link.
// The connection check is a cheap live probe (a one-course page of the
// student's course listing); any failure, including an expired or revoked
// token, reads as not connected.
func (s *Server) UserStatus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	session := sessionOrFail(w, r)
	if session == nil {
		return
	}

	status := UserStatusResponse{
		User: UserInfo{ID: session.UserID.String(), Name: session.Name, Email: session.Email},
	}

	account, err := s.store.GetLinkedAccount(r.Context(), session.UserID, googleProvider)
	if errors.Is(err, database.ErrNotFound) {
		rw.Success(status)
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	status.HasGoogleAccount = account.AccessToken != ""
	if status.HasGoogleAccount && (account.TokenExpiry.IsZero() || time.Now().Before(account.TokenExpiry)) {
		probe := classroom.ListCoursesOptions{StudentID: "me", PageSize: 1}
		if _, err := s.classroom.ListCourses(r.Context(), account.AccessToken, probe); err == nil {
			status.HasValidConnection = true
		}
	}

	rw.Success(status)
}

// GoogleStart begins the OAuth linking flow. It stores a state nonce in a
// short-lived cookie and redirects the browser to Google's consent screen.
func (s *Server) GoogleStart(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GenerateState()
	if err != nil {
		NewResponseWriter(w, r).InternalError("Failed to start Google authorization")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   s.cfg.Security.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, s.linker.AuthCodeURL(state), http.StatusFound)
}

// GoogleCallback completes the OAuth flow: it verifies the state nonce,
// exchanges the code, fetches the Google profile, and upserts the linked
// account for the session user.
func (s *Server) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	session := sessionOrFail(w, r)
	if session == nil {
		return
	}

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		rw.BadRequest("Google authorization was denied")
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		rw.BadRequest("Invalid OAuth state")
		return
	}
	// State is single use.
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		rw.BadRequest("Missing authorization code")
		return
	}

	token, err := s.linker.Exchange(r.Context(), code)
	if err != nil {
		rw.BadRequest("Failed to exchange authorization code")
		return
	}

	info, err := s.linker.UserInfo(r.Context(), token)
	if err != nil {
		rw.BadRequest("Failed to fetch Google profile")
		return
	}

	account := &database.LinkedAccount{
		UserID:         session.UserID,
		Provider:       googleProvider,
		ProviderUserID: info.Sub,
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		TokenExpiry:    token.Expiry,
	}
	if err := s.store.UpsertLinkedAccount(r.Context(), account); err != nil {
		rw.DatabaseError(err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("user_id", session.UserID.String()).
		Str("google_email", info.Email).
		Msg("Google account linked")

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

