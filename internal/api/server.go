// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/classgo/classgo/internal/auth"
	"github.com/classgo/classgo/internal/cache"
	"github.com/classgo/classgo/internal/classroom"
	"github.com/classgo/classgo/internal/config"
	"github.com/classgo/classgo/internal/database"
	"github.com/classgo/classgo/internal/mailer"
	"github.com/classgo/classgo/internal/models"
)

// googleProvider is the provider name under which Google credentials are
// stored in linked_accounts.
const googleProvider = "google"

// Store is the persistence surface the handlers depend on. Implemented by
// *database.Store; narrowed to an interface so handler tests can fake it.
type Store interface {
	CreateUser(ctx context.Context, u *database.User) error
	GetUserByEmail(ctx context.Context, email string) (*database.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*database.User, error)
	GetLinkedAccount(ctx context.Context, userID uuid.UUID, provider string) (*database.LinkedAccount, error)
	UpsertLinkedAccount(ctx context.Context, a *database.LinkedAccount) error
	UpsertGeneratedAssignment(ctx context.Context, g *database.GeneratedAssignment) error
	GetGeneratedAssignment(ctx context.Context, userID uuid.UUID, courseID, assignmentID string) (*database.GeneratedAssignment, error)
	CreateWaitlistSignup(ctx context.Context, w *database.WaitlistSignup) (bool, error)
	Ping(ctx context.Context) error
}

// Generator is the LLM surface the handlers depend on.
type Generator interface {
	GenerateAssignmentDraft(ctx context.Context, work *models.CourseWork) (string, error)
	DetoxPlan(ctx context.Context, input string) (string, error)
}

// GoogleLinker drives the OAuth account-linking flow.
type GoogleLinker interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	UserInfo(ctx context.Context, token *oauth2.Token) (*auth.GoogleUserInfo, error)
}

// Server holds the wired dependencies of the HTTP surface.
type Server struct {
	cfg        *config.Config
	store      Store
	sessions   *auth.SessionMiddleware
	linker     GoogleLinker
	classroom  classroom.ClientInterface
	lister     *classroom.Lister
	aggregator *classroom.Aggregator
	writer     *classroom.Writer
	cache      *cache.AssignmentCache
	generator  Generator
	mailer     mailer.Mailer
	cacheBack  cache.Backend
}

// Deps bundles the server's constructor dependencies.
type Deps struct {
	Store        Store
	Sessions     *auth.SessionMiddleware
	Linker       GoogleLinker
	Classroom    classroom.ClientInterface
	Cache        *cache.AssignmentCache
	CacheBackend cache.Backend
	Generator    Generator
	Mailer       mailer.Mailer
}

// NewServer wires the HTTP surface.
func NewServer(cfg *config.Config, deps Deps) *Server {
	return &Server{
		cfg:        cfg,
		store:      deps.Store,
		sessions:   deps.Sessions,
		linker:     deps.Linker,
		classroom:  deps.Classroom,
		lister:     classroom.NewLister(deps.Classroom),
		aggregator: classroom.NewAggregator(deps.Classroom),
		writer:     classroom.NewWriter(deps.Classroom),
		cache:      deps.Cache,
		cacheBack:  deps.CacheBackend,
		generator:  deps.Generator,
		mailer:     deps.Mailer,
	}
}

// sessionOrFail returns the request session, writing a 401 when absent.
func sessionOrFail(w http.ResponseWriter, r *http.Request) *auth.Session {
	session := auth.GetSession(r.Context())
	if session == nil {
		NewResponseWriter(w, r).Unauthorized("Authentication required")
		return nil
	}
	return session
}

// googleToken loads the session user's Google access token. On failure it
// writes the error response and returns ok=false, so no upstream call is
// ever attempted without valid credentials.
func (s *Server) googleToken(w http.ResponseWriter, r *http.Request) (token string, userID uuid.UUID, ok bool) {
	rw := NewResponseWriter(w, r)

	session := auth.GetSession(r.Context())
	if session == nil {
		rw.Unauthorized("Authentication required")
		return "", uuid.Nil, false
	}

	account, err := s.store.GetLinkedAccount(r.Context(), session.UserID, googleProvider)
	if errors.Is(err, database.ErrNotFound) {
		rw.AccountNotLinked()
		return "", uuid.Nil, false
	}
	if err != nil {
		rw.DatabaseError(err)
		return "", uuid.Nil, false
	}

	if !account.TokenExpiry.IsZero() && time.Now().After(account.TokenExpiry) {
		rw.TokenExpired()
		return "", uuid.Nil, false
	}

	return account.AccessToken, session.UserID, true
}

// upstreamError maps a classroom-layer error onto the response taxonomy.
// Classification is by the upstream status code carried in the error, never
// by matching message text.
func upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)

	switch {
	case classroom.IsTokenExpired(err):
		rw.TokenExpired()
	case classroom.IsPermissionDenied(err):
		rw.Forbidden("Insufficient permissions for this Classroom resource")
	case classroom.IsNotFound(err):
		rw.NotFound("Classroom resource not found")
	case errors.Is(err, classroom.ErrNoSubmission):
		rw.NotFound("No submission found for this assignment")
	case errors.Is(err, classroom.ErrAlreadyTurnedIn):
		rw.Conflict("This assignment has already been turned in")
	case errors.Is(err, classroom.ErrEmptySubmission):
		rw.ValidationError("A file or generated text is required", nil)
	case errors.Is(err, classroom.ErrNoDriveFileID):
		rw.InternalError("Drive upload did not return a file ID")
	default:
		rw.ErrorWithDetails(http.StatusBadGateway, ErrCodeUpstreamError, "Upstream request failed", err.Error())
	}
}
