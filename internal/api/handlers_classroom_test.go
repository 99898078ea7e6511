// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/classgo/classgo/internal/classroom"
	"github.com/classgo/classgo/internal/models"
)

// linkedFixture wires a fixture with a signed-in user holding a valid
// Google token.
func linkedFixture(t *testing.T) (*fixture, uuid.UUID, *http.Cookie) {
	t.Helper()
	f := newFixture(t)
	userID := uuid.New()
	cookie := f.signIn(t, userID)
	f.linkGoogle(t, userID, time.Time{})
	return f, userID, cookie
}

func TestListCourseWork(t *testing.T) {
	t.Parallel()
	f, _, cookie := linkedFixture(t)

	f.classroom.listCourseWorkFn = func(courseID string) ([]models.CourseWork, error) {
		if courseID != "c1" {
			t.Errorf("courseID = %q, want c1", courseID)
		}
		return []models.CourseWork{{ID: "a1", Title: "Problem set 3"}, {ID: "a2", Title: "Essay"}}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/classroom/c1/", nil)
	req.AddCookie(cookie)
	rec := f.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body: %s)", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	var data struct {
		CourseWork []models.CourseWork `json:"courseWork"`
		Total      int                 `json:"total"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Total != 2 || len(data.CourseWork) != 2 {
		t.Errorf("coursework = %+v", data)
	}
}

func TestAssignmentDetailUpstreamErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		upstream   int
		wantStatus int
		wantCode   string
	}{
		{"expired token", http.StatusUnauthorized, http.StatusUnauthorized, ErrCodeTokenExpired},
		{"forbidden", http.StatusForbidden, http.StatusForbidden, ErrCodeForbidden},
		{"missing coursework", http.StatusNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"upstream outage", http.StatusBadGateway, http.StatusBadGateway, ErrCodeUpstreamError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f, _, cookie := linkedFixture(t)

			f.classroom.getCourseWorkFn = func(_, _ string) (*models.CourseWork, error) {
				return nil, &classroom.UpstreamError{Op: "getCourseWork", StatusCode: tt.upstream}
			}

			req := httptest.NewRequest(http.MethodGet, "/api/classroom/c1/assignments/a1/", nil)
			req.AddCookie(cookie)
			rec := f.do(req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body: %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if env := decodeEnvelope(t, rec); env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
			}
		})
	}
}

func TestSubmitTextTurnsIn(t *testing.T) {
	t.Parallel()
	f, userID, cookie := linkedFixture(t)

	// Prime the assignment cache; it must survive the turn-in untouched.
	cacheKey := "assignments:user:" + userID.String()
	if err := f.backend.Set(context.Background(), cacheKey, []byte(`{"success":true}`), time.Hour); err != nil {
		t.Fatal(err)
	}

	f.classroom.listSubmissionsFn = func(_, _ string, opts classroom.ListSubmissionsOptions) ([]models.StudentSubmission, error) {
		if opts.UserID != "me" {
			t.Errorf("own-submission lookup used userId=%q, want me", opts.UserID)
		}
		return []models.StudentSubmission{{ID: "sub-1", State: "CREATED"}}, nil
	}

	req := jsonRequest(http.MethodPost, "/api/classroom/c1/assignments/a1/submit",
		`{"generatedText":"final answer"}`)
	req.AddCookie(cookie)
	rec := f.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body: %s)", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	var result models.SubmitResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatal(err)
	}
	if result.SubmissionID != "sub-1" || len(result.DriveFileIDs) != 1 {
		t.Errorf("result = %+v", result)
	}

	if got := f.classroom.callCount("turnIn"); got != 1 {
		t.Errorf("turnIn calls = %d, want 1", got)
	}
	if got := f.classroom.callCount("uploadFile"); got != 1 {
		t.Errorf("uploadFile calls = %d, want 1", got)
	}
	if _, err := f.backend.Get(context.Background(), cacheKey); err != nil {
		t.Error("assignment cache entry was removed; turn-in must leave it to expire on its TTL")
	}
}

func TestSubmitMultipartFile(t *testing.T) {
	t.Parallel()
	f, _, cookie := linkedFixture(t)

	f.classroom.listSubmissionsFn = func(_, _ string, _ classroom.ListSubmissionsOptions) ([]models.StudentSubmission, error) {
		return []models.StudentSubmission{{ID: "sub-1", State: "CREATED"}}, nil
	}
	var uploadedName string
	f.classroom.uploadFileFn = func(filename string) (*models.DriveFileRef, error) {
		uploadedName = filename
		return &models.DriveFileRef{ID: "drive-7", Title: filename}, nil
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "essay.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte("%PDF-1.4 content")); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/classroom/c1/assignments/a1/submit", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)
	rec := f.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body: %s)", rec.Code, rec.Body.String())
	}
	if uploadedName != "essay.pdf" {
		t.Errorf("uploaded filename = %q, want essay.pdf", uploadedName)
	}
}

func TestSubmitEmptyTextRejectedBeforeUpstream(t *testing.T) {
	t.Parallel()
	f, _, cookie := linkedFixture(t)

	req := jsonRequest(http.MethodPost, "/api/classroom/c1/assignments/a1/submit",
		`{"generatedText":""}`)
	req.AddCookie(cookie)
	rec := f.do(req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body: %s)", rec.Code, rec.Body.String())
	}
	if n := f.classroom.totalCalls(); n != 0 {
		t.Errorf("classroom was called %d times for an empty submission", n)
	}
}

func TestSubmitAlreadyTurnedIn(t *testing.T) {
	t.Parallel()
	f, _, cookie := linkedFixture(t)

	f.classroom.listSubmissionsFn = func(_, _ string, _ classroom.ListSubmissionsOptions) ([]models.StudentSubmission, error) {
		return []models.StudentSubmission{{ID: "sub-1", State: "TURNED_IN"}}, nil
	}

	req := jsonRequest(http.MethodPost, "/api/classroom/c1/assignments/a1/submit",
		`{"generatedText":"answer"}`)
	req.AddCookie(cookie)
	rec := f.do(req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 (body: %s)", rec.Code, rec.Body.String())
	}
	if got := f.classroom.callCount("turnIn"); got != 0 {
		t.Errorf("turnIn was called %d times on an already-submitted assignment", got)
	}
	if got := f.classroom.callCount("uploadFile"); got != 0 {
		t.Errorf("uploadFile was called %d times on an already-submitted assignment", got)
	}
}

func TestSubmitExplicitSubmissionID(t *testing.T) {
	t.Parallel()
	f, _, cookie := linkedFixture(t)

	f.classroom.getSubmissionFn = func(_, _, submissionID string) (*models.StudentSubmission, error) {
		return &models.StudentSubmission{ID: submissionID, State: "CREATED"}, nil
	}

	req := jsonRequest(http.MethodPost, "/api/classroom/c1/assignments/a1/sub-9",
		`{"generatedText":"answer"}`)
	req.AddCookie(cookie)
	rec := f.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body: %s)", rec.Code, rec.Body.String())
	}

	// Targeted submissions are fetched directly, not resolved via listing.
	if got := f.classroom.callCount("getSubmission"); got != 1 {
		t.Errorf("getSubmission calls = %d, want 1", got)
	}
	if got := f.classroom.callCount("listSubmissions"); got != 0 {
		t.Errorf("listSubmissions calls = %d, want 0", got)
	}

	env := decodeEnvelope(t, rec)
	var result models.SubmitResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatal(err)
	}
	if result.SubmissionID != "sub-9" {
		t.Errorf("submissionId = %q, want sub-9", result.SubmissionID)
	}
}

func TestGetSubmission(t *testing.T) {
	t.Parallel()
	f, _, cookie := linkedFixture(t)

	f.classroom.getSubmissionFn = func(_, _, submissionID string) (*models.StudentSubmission, error) {
		if submissionID != "sub-1" {
			return nil, &classroom.UpstreamError{Op: "classroom.studentSubmissions.get", StatusCode: 404}
		}
		return &models.StudentSubmission{ID: "sub-1", State: "RETURNED"}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/classroom/c1/assignments/a1/sub-1", nil)
	req.AddCookie(cookie)
	rec := f.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body: %s)", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	var sub models.StudentSubmission
	if err := json.Unmarshal(env.Data, &sub); err != nil {
		t.Fatal(err)
	}
	if sub.State != "RETURNED" {
		t.Errorf("state = %q, want RETURNED", sub.State)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/classroom/c1/assignments/a1/sub-2", nil)
	req.AddCookie(cookie)
	rec = f.do(req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing submission: status = %d, want 404", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Error == nil || env.Error.Code != ErrCodeNotFound {
		t.Errorf("error = %+v, want code %s", env.Error, ErrCodeNotFound)
	}
}
