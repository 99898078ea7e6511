// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

package classroom

import (
	"context"
	"io"
	"sync"

	"github.com/classgo/classgo/internal/models"
)

// mockClient implements ClientInterface with per-method stubs and call
// counters. Methods without a stub return zero values.
type mockClient struct {
	mu    sync.Mutex
	calls map[string]int

	listCoursesFn            func(ctx context.Context, token string, opts ListCoursesOptions) ([]models.Course, error)
	listCourseWorkFn         func(ctx context.Context, token, courseID string) ([]models.CourseWork, error)
	getCourseWorkFn          func(ctx context.Context, token, courseID, courseWorkID string) (*models.CourseWork, error)
	listStudentSubmissionsFn func(ctx context.Context, token, courseID, courseWorkID string, opts ListSubmissionsOptions) ([]models.StudentSubmission, error)
	getStudentSubmissionFn   func(ctx context.Context, token, courseID, courseWorkID, submissionID string) (*models.StudentSubmission, error)
	getUserProfileFn         func(ctx context.Context, token, userID string) (*models.UserProfile, error)
	modifyAttachmentsFn      func(ctx context.Context, token, courseID, courseWorkID, submissionID string, attachments []models.Attachment) (*models.StudentSubmission, error)
	turnInFn                 func(ctx context.Context, token, courseID, courseWorkID, submissionID string) error
	uploadFileFn             func(ctx context.Context, token, filename, contentType string, content io.Reader) (*models.DriveFileRef, error)
}

func newMockClient() *mockClient {
	return &mockClient{calls: make(map[string]int)}
}

func (m *mockClient) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[method]++
}

func (m *mockClient) callCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *mockClient) ListCourses(ctx context.Context, token string, opts ListCoursesOptions) ([]models.Course, error) {
	m.record("ListCourses")
	if m.listCoursesFn != nil {
		return m.listCoursesFn(ctx, token, opts)
	}
	return nil, nil
}

func (m *mockClient) ListCourseWork(ctx context.Context, token, courseID string) ([]models.CourseWork, error) {
	m.record("ListCourseWork")
	if m.listCourseWorkFn != nil {
		return m.listCourseWorkFn(ctx, token, courseID)
	}
	return nil, nil
}

func (m *mockClient) GetCourseWork(ctx context.Context, token, courseID, courseWorkID string) (*models.CourseWork, error) {
	m.record("GetCourseWork")
	if m.getCourseWorkFn != nil {
		return m.getCourseWorkFn(ctx, token, courseID, courseWorkID)
	}
	return &models.CourseWork{ID: courseWorkID, CourseID: courseID}, nil
}

func (m *mockClient) ListStudentSubmissions(ctx context.Context, token, courseID, courseWorkID string, opts ListSubmissionsOptions) ([]models.StudentSubmission, error) {
	m.record("ListStudentSubmissions")
	if m.listStudentSubmissionsFn != nil {
		return m.listStudentSubmissionsFn(ctx, token, courseID, courseWorkID, opts)
	}
	return nil, nil
}

func (m *mockClient) GetStudentSubmission(ctx context.Context, token, courseID, courseWorkID, submissionID string) (*models.StudentSubmission, error) {
	m.record("GetStudentSubmission")
	if m.getStudentSubmissionFn != nil {
		return m.getStudentSubmissionFn(ctx, token, courseID, courseWorkID, submissionID)
	}
	return &models.StudentSubmission{ID: submissionID}, nil
}

func (m *mockClient) GetUserProfile(ctx context.Context, token, userID string) (*models.UserProfile, error) {
	m.record("GetUserProfile")
	if m.getUserProfileFn != nil {
		return m.getUserProfileFn(ctx, token, userID)
	}
	return &models.UserProfile{ID: userID}, nil
}

func (m *mockClient) ModifyAttachments(ctx context.Context, token, courseID, courseWorkID, submissionID string, attachments []models.Attachment) (*models.StudentSubmission, error) {
	m.record("ModifyAttachments")
	if m.modifyAttachmentsFn != nil {
		return m.modifyAttachmentsFn(ctx, token, courseID, courseWorkID, submissionID, attachments)
	}
	return &models.StudentSubmission{ID: submissionID}, nil
}

func (m *mockClient) TurnIn(ctx context.Context, token, courseID, courseWorkID, submissionID string) error {
	m.record("TurnIn")
	if m.turnInFn != nil {
		return m.turnInFn(ctx, token, courseID, courseWorkID, submissionID)
	}
	return nil
}

func (m *mockClient) UploadFile(ctx context.Context, token, filename, contentType string, content io.Reader) (*models.DriveFileRef, error) {
	m.record("UploadFile")
	if m.uploadFileFn != nil {
		return m.uploadFileFn(ctx, token, filename, contentType, content)
	}
	return &models.DriveFileRef{ID: "drive-file-1", Title: filename}, nil
}
