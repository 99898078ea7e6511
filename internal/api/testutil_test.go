// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/classgo/classgo/internal/auth"
	"github.com/classgo/classgo/internal/cache"
	"github.com/classgo/classgo/internal/classroom"
	"github.com/classgo/classgo/internal/config"
	"github.com/classgo/classgo/internal/database"
	"github.com/classgo/classgo/internal/models"
)

// fakeStore is an in-memory Store implementation for handler tests.
type fakeStore struct {
	mu        sync.Mutex
	users     map[string]*database.User // keyed by email
	accounts  map[string]*database.LinkedAccount
	generated map[string]*database.GeneratedAssignment
	waitlist  map[string]bool
	pingErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[string]*database.User),
		accounts:  make(map[string]*database.LinkedAccount),
		generated: make(map[string]*database.GeneratedAssignment),
		waitlist:  make(map[string]bool),
	}
}

func accountKey(userID uuid.UUID, provider string) string {
	return userID.String() + "/" + provider
}

func generatedKey(userID uuid.UUID, courseID, assignmentID string) string {
	return userID.String() + "/" + courseID + "/" + assignmentID
}

func (f *fakeStore) CreateUser(_ context.Context, u *database.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[u.Email]; exists {
		return database.ErrDuplicate
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	f.users[u.Email] = &cp
	return nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*database.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id uuid.UUID) (*database.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeStore) GetLinkedAccount(_ context.Context, userID uuid.UUID, provider string) (*database.LinkedAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[accountKey(userID, provider)]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeStore) UpsertLinkedAccount(_ context.Context, a *database.LinkedAccount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.accounts[accountKey(a.UserID, a.Provider)] = &cp
	return nil
}

func (f *fakeStore) UpsertGeneratedAssignment(_ context.Context, g *database.GeneratedAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := generatedKey(g.UserID, g.CourseID, g.AssignmentID)
	if existing, ok := f.generated[key]; ok {
		g.ID = existing.ID
	} else if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	cp := *g
	f.generated[key] = &cp
	return nil
}

func (f *fakeStore) GetGeneratedAssignment(_ context.Context, userID uuid.UUID, courseID, assignmentID string) (*database.GeneratedAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.generated[generatedKey(userID, courseID, assignmentID)]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *fakeStore) CreateWaitlistSignup(_ context.Context, w *database.WaitlistSignup) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.waitlist[w.Email] {
		return false, nil
	}
	f.waitlist[w.Email] = true
	return true, nil
}

func (f *fakeStore) Ping(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

// stubClassroom implements classroom.ClientInterface with per-method stubs
// and call counters.
type stubClassroom struct {
	mu    sync.Mutex
	calls map[string]int

	listCoursesFn     func(opts classroom.ListCoursesOptions) ([]models.Course, error)
	listCourseWorkFn  func(courseID string) ([]models.CourseWork, error)
	getCourseWorkFn   func(courseID, courseWorkID string) (*models.CourseWork, error)
	listSubmissionsFn func(courseID, courseWorkID string, opts classroom.ListSubmissionsOptions) ([]models.StudentSubmission, error)
	getSubmissionFn   func(courseID, courseWorkID, submissionID string) (*models.StudentSubmission, error)
	getUserProfileFn  func(userID string) (*models.UserProfile, error)
	modifyFn          func(courseID, courseWorkID, submissionID string, atts []models.Attachment) (*models.StudentSubmission, error)
	turnInFn          func(courseID, courseWorkID, submissionID string) error
	uploadFileFn      func(filename string) (*models.DriveFileRef, error)
}

func newStubClassroom() *stubClassroom {
	return &stubClassroom{calls: make(map[string]int)}
}

func (s *stubClassroom) record(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
}

func (s *stubClassroom) callCount(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *stubClassroom) totalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *stubClassroom) ListCourses(_ context.Context, _ string, opts classroom.ListCoursesOptions) ([]models.Course, error) {
	s.record("listCourses")
	if s.listCoursesFn != nil {
		return s.listCoursesFn(opts)
	}
	return nil, nil
}

func (s *stubClassroom) ListCourseWork(_ context.Context, _, courseID string) ([]models.CourseWork, error) {
	s.record("listCourseWork")
	if s.listCourseWorkFn != nil {
		return s.listCourseWorkFn(courseID)
	}
	return nil, nil
}

func (s *stubClassroom) GetCourseWork(_ context.Context, _, courseID, courseWorkID string) (*models.CourseWork, error) {
	s.record("getCourseWork")
	if s.getCourseWorkFn != nil {
		return s.getCourseWorkFn(courseID, courseWorkID)
	}
	return &models.CourseWork{ID: courseWorkID, CourseID: courseID}, nil
}

func (s *stubClassroom) ListStudentSubmissions(_ context.Context, _, courseID, courseWorkID string, opts classroom.ListSubmissionsOptions) ([]models.StudentSubmission, error) {
	s.record("listSubmissions")
	if s.listSubmissionsFn != nil {
		return s.listSubmissionsFn(courseID, courseWorkID, opts)
	}
	return nil, nil
}

func (s *stubClassroom) GetStudentSubmission(_ context.Context, _, courseID, courseWorkID, submissionID string) (*models.StudentSubmission, error) {
	s.record("getSubmission")
	if s.getSubmissionFn != nil {
		return s.getSubmissionFn(courseID, courseWorkID, submissionID)
	}
	return &models.StudentSubmission{ID: submissionID}, nil
}

func (s *stubClassroom) GetUserProfile(_ context.Context, _, userID string) (*models.UserProfile, error) {
	s.record("getUserProfile")
	if s.getUserProfileFn != nil {
		return s.getUserProfileFn(userID)
	}
	return &models.UserProfile{ID: userID}, nil
}

func (s *stubClassroom) ModifyAttachments(_ context.Context, _, courseID, courseWorkID, submissionID string, atts []models.Attachment) (*models.StudentSubmission, error) {
	s.record("modifyAttachments")
	if s.modifyFn != nil {
		return s.modifyFn(courseID, courseWorkID, submissionID, atts)
	}
	return &models.StudentSubmission{ID: submissionID}, nil
}

func (s *stubClassroom) TurnIn(_ context.Context, _, courseID, courseWorkID, submissionID string) error {
	s.record("turnIn")
	if s.turnInFn != nil {
		return s.turnInFn(courseID, courseWorkID, submissionID)
	}
	return nil
}

func (s *stubClassroom) UploadFile(_ context.Context, _, filename, _ string, _ io.Reader) (*models.DriveFileRef, error) {
	s.record("uploadFile")
	if s.uploadFileFn != nil {
		return s.uploadFileFn(filename)
	}
	return &models.DriveFileRef{ID: "drive-1", Title: filename}, nil
}

// fakeGenerator returns canned LLM output.
type fakeGenerator struct {
	draft    string
	plan     string
	draftErr error
	planErr  error
}

func (f *fakeGenerator) GenerateAssignmentDraft(_ context.Context, _ *models.CourseWork) (string, error) {
	return f.draft, f.draftErr
}

func (f *fakeGenerator) DetoxPlan(_ context.Context, _ string) (string, error) {
	return f.plan, f.planErr
}

// fakeLinker returns canned OAuth results.
type fakeLinker struct {
	token *oauth2.Token
	info  *auth.GoogleUserInfo
	err   error
}

func (f *fakeLinker) AuthCodeURL(state string) string {
	return "https://accounts.google.test/auth?state=" + state
}

func (f *fakeLinker) Exchange(_ context.Context, _ string) (*oauth2.Token, error) {
	return f.token, f.err
}

func (f *fakeLinker) UserInfo(_ context.Context, _ *oauth2.Token) (*auth.GoogleUserInfo, error) {
	return f.info, f.err
}

// fakeMailer records sent confirmations.
type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeMailer) SendWaitlistConfirmation(_, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, email)
	return nil
}

func (f *fakeMailer) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// memBackend is an in-memory cache.Backend.
type memBackend struct {
	mu      sync.Mutex
	data    map[string][]byte
	pingErr error
}

func newMemBackend() *memBackend {
	return &memBackend{data: make(map[string][]byte)}
}

func (b *memBackend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.data[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

func (b *memBackend) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = value
	return nil
}

func (b *memBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
	return nil
}

func (b *memBackend) Ping(_ context.Context) error {
	return b.pingErr
}

// fixture bundles a wired test server and its fakes.
type fixture struct {
	server    *Server
	handler   http.Handler
	store     *fakeStore
	classroom *stubClassroom
	sessions  *auth.MemorySessionStore
	backend   *memBackend
	generator *fakeGenerator
	linker    *fakeLinker
	mailer    *fakeMailer
	cfg       *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{
		Cache: config.CacheConfig{
			Enabled:   true,
			KeyPrefix: "assignments:user:",
			TTL:       6 * time.Hour,
		},
		Security: config.SecurityConfig{
			SessionCookieName: "classgo_session",
			SessionTTL:        time.Hour,
			RateLimitReqs:     1000,
			RateLimitWindow:   time.Minute,
			CORSOrigins:       []string{"*"},
		},
	}

	sessionStore := auth.NewMemorySessionStore()
	smCfg := auth.DefaultSessionMiddlewareConfig()
	smCfg.CookieName = cfg.Security.SessionCookieName
	smCfg.SessionTTL = cfg.Security.SessionTTL
	sessions := auth.NewSessionMiddleware(sessionStore, smCfg)

	f := &fixture{
		store:     newFakeStore(),
		classroom: newStubClassroom(),
		sessions:  sessionStore,
		backend:   newMemBackend(),
		generator: &fakeGenerator{draft: "draft text", plan: "detox plan"},
		linker:    &fakeLinker{},
		mailer:    &fakeMailer{},
		cfg:       cfg,
	}

	f.server = NewServer(cfg, Deps{
		Store:        f.store,
		Sessions:     sessions,
		Linker:       f.linker,
		Classroom:    f.classroom,
		Cache:        cache.NewAssignmentCache(f.backend, cfg.Cache),
		CacheBackend: f.backend,
		Generator:    f.generator,
		Mailer:       f.mailer,
	})
	f.handler = f.server.Router()
	return f
}

// signIn creates a session directly in the store and returns its cookie.
func (f *fixture) signIn(t *testing.T, userID uuid.UUID) *http.Cookie {
	t.Helper()
	session := auth.NewSession(userID, "Test User", "test@example.com", time.Hour)
	if err := f.sessions.Create(context.Background(), session); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return &http.Cookie{Name: f.cfg.Security.SessionCookieName, Value: session.ID}
}

// linkGoogle stores a Google linked account for userID. A zero expiry means
// a non-expiring token.
func (f *fixture) linkGoogle(t *testing.T, userID uuid.UUID, expiry time.Time) {
	t.Helper()
	err := f.store.UpsertLinkedAccount(context.Background(), &database.LinkedAccount{
		UserID:         userID,
		Provider:       "google",
		ProviderUserID: "google-sub-1",
		AccessToken:    "ya29.test-token",
		TokenExpiry:    expiry,
	})
	if err != nil {
		t.Fatalf("link google: %v", err)
	}
}

// do runs a request through the full router and returns the recorder.
func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}
