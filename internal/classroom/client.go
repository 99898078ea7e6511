// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

// Package classroom provides the Google Classroom and Drive API client along
// with the aggregation and submission flows built on top of it.
//
// Client Features:
//   - Per-call bearer token (tokens belong to linked accounts, not the client)
//   - Circuit breaker protection around every upstream call
//   - nextPageToken pagination on all list endpoints
//   - Context support for cancellation and timeouts
//
// Thread Safety: all methods are safe for concurrent use.
package classroom

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/classgo/classgo/internal/config"
	"github.com/classgo/classgo/internal/metrics"
	"github.com/classgo/classgo/internal/models"
)

// maxErrorBodySize limits the maximum amount of response body read for error reporting
// This prevents unbounded memory allocation when reading large error responses
const maxErrorBodySize = 64 * 1024 // 64KB

// submissionListFields is the field projection requested when listing
// submissions. Trimming the payload keeps large rosters cheap to transfer.
const submissionListFields = "studentSubmissions(id,userId,state,late,creationTime,updateTime,draftGrade,assignedGrade,alternateLink,courseWorkType,assignmentSubmission),nextPageToken"

// readBodyForError reads the response body for error reporting (max 64KB)
// Returns the body content or a placeholder message if reading fails
// Uses io.LimitReader to prevent unbounded memory allocation
func readBodyForError(r io.Reader) []byte {
	limitedReader := io.LimitReader(r, maxErrorBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// ListCoursesOptions narrows a course listing.
type ListCoursesOptions struct {
	// StudentID restricts results to courses the student is enrolled in;
	// "me" means the token owner. Empty lists every visible course,
	// including ones the token owner teaches.
	StudentID string

	// PageSize caps the page size. When set, only the first page is
	// fetched; pagination is not followed. Used for the cheap connection
	// probe.
	PageSize int
}

// ListSubmissionsOptions narrows a submission listing call.
type ListSubmissionsOptions struct {
	// UserID restricts results to one student; "me" means the token owner.
	UserID string

	// Fields is a partial-response projection. Empty means the full payload.
	Fields string
}

// ClientInterface defines the Classroom and Drive operations ClassGo uses.
//
// It is implemented by Client for production use and by mocks in tests. All
// methods take the caller's OAuth access token; the client itself holds no
// credentials. Errors from non-2xx upstream responses are *UpstreamError
// values classified by status code.
type ClientInterface interface {
	ListCourses(ctx context.Context, token string, opts ListCoursesOptions) ([]models.Course, error)
	ListCourseWork(ctx context.Context, token, courseID string) ([]models.CourseWork, error)
	GetCourseWork(ctx context.Context, token, courseID, courseWorkID string) (*models.CourseWork, error)
	ListStudentSubmissions(ctx context.Context, token, courseID, courseWorkID string, opts ListSubmissionsOptions) ([]models.StudentSubmission, error)
	GetStudentSubmission(ctx context.Context, token, courseID, courseWorkID, submissionID string) (*models.StudentSubmission, error)
	GetUserProfile(ctx context.Context, token, userID string) (*models.UserProfile, error)
	ModifyAttachments(ctx context.Context, token, courseID, courseWorkID, submissionID string, attachments []models.Attachment) (*models.StudentSubmission, error)
	TurnIn(ctx context.Context, token, courseID, courseWorkID, submissionID string) error
	UploadFile(ctx context.Context, token, filename, contentType string, content io.Reader) (*models.DriveFileRef, error)
}

// Client talks to the Google Classroom v1 and Drive v3 APIs.
type Client struct {
	baseURL        string
	driveUploadURL string
	client         *http.Client
	breaker        *Breaker
}

// NewClient creates a Classroom client from the Google configuration.
// The base URLs come from config so tests can point at an httptest server.
func NewClient(cfg config.GoogleConfig) *Client {
	return &Client{
		baseURL:        cfg.ClassroomBaseURL,
		driveUploadURL: cfg.DriveUploadURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		breaker: NewBreaker("classroom"),
	}
}

// makeRequest performs one authenticated API call through the circuit
// breaker and decodes the JSON response into result when it is non-nil.
func (c *Client) makeRequest(ctx context.Context, op, method, reqURL, token string, payload, result interface{}) error {
	_, err := execute(ctx, c.breaker, func() (struct{}, error) {
		var body io.Reader = http.NoBody
		if payload != nil {
			encoded, err := json.Marshal(payload)
			if err != nil {
				return struct{}{}, fmt.Errorf("failed to encode %s request: %w", op, err)
			}
			body = bytes.NewReader(encoded)
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to create %s request: %w", op, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := c.client.Do(req)
		if err != nil {
			metrics.UpstreamRequestsTotal.WithLabelValues(op, "error").Inc()
			return struct{}{}, fmt.Errorf("%s request failed: %w", op, err)
		}
		defer resp.Body.Close()

		metrics.UpstreamRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		metrics.UpstreamRequestsTotal.WithLabelValues(op, http.StatusText(resp.StatusCode)).Inc()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return struct{}{}, &UpstreamError{
				Op:         op,
				StatusCode: resp.StatusCode,
				Body:       string(readBodyForError(resp.Body)),
			}
		}

		if result != nil {
			if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
				return struct{}{}, fmt.Errorf("failed to decode %s response: %w", op, err)
			}
		}
		return struct{}{}, nil
	})
	return err
}

// ListCourses returns the courses matching opts, following nextPageToken
// until exhausted unless opts caps the page size.
func (c *Client) ListCourses(ctx context.Context, token string, opts ListCoursesOptions) ([]models.Course, error) {
	var courses []models.Course
	pageToken := ""
	for {
		params := url.Values{}
		if opts.StudentID != "" {
			params.Set("studentId", opts.StudentID)
		}
		if opts.PageSize > 0 {
			params.Set("pageSize", strconv.Itoa(opts.PageSize))
		}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}
		reqURL := fmt.Sprintf("%s/courses", c.baseURL)
		if len(params) > 0 {
			reqURL += "?" + params.Encode()
		}

		var page models.CourseList
		if err := c.makeRequest(ctx, "classroom.courses.list", http.MethodGet, reqURL, token, nil, &page); err != nil {
			return nil, err
		}
		courses = append(courses, page.Courses...)

		if page.NextPageToken == "" || opts.PageSize > 0 {
			return courses, nil
		}
		pageToken = page.NextPageToken
	}
}

// ListCourseWork returns all coursework for a course, following pagination.
func (c *Client) ListCourseWork(ctx context.Context, token, courseID string) ([]models.CourseWork, error) {
	var work []models.CourseWork
	pageToken := ""
	for {
		params := url.Values{}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}
		reqURL := fmt.Sprintf("%s/courses/%s/courseWork", c.baseURL, url.PathEscape(courseID))
		if len(params) > 0 {
			reqURL += "?" + params.Encode()
		}

		var page models.CourseWorkList
		if err := c.makeRequest(ctx, "classroom.courseWork.list", http.MethodGet, reqURL, token, nil, &page); err != nil {
			return nil, err
		}
		work = append(work, page.CourseWork...)

		if page.NextPageToken == "" {
			return work, nil
		}
		pageToken = page.NextPageToken
	}
}

// GetCourseWork fetches a single coursework item.
func (c *Client) GetCourseWork(ctx context.Context, token, courseID, courseWorkID string) (*models.CourseWork, error) {
	reqURL := fmt.Sprintf("%s/courses/%s/courseWork/%s",
		c.baseURL, url.PathEscape(courseID), url.PathEscape(courseWorkID))

	var work models.CourseWork
	if err := c.makeRequest(ctx, "classroom.courseWork.get", http.MethodGet, reqURL, token, nil, &work); err != nil {
		return nil, err
	}
	return &work, nil
}

// ListStudentSubmissions returns submissions for one coursework item,
// following pagination. Options narrow by student and project fields.
func (c *Client) ListStudentSubmissions(ctx context.Context, token, courseID, courseWorkID string, opts ListSubmissionsOptions) ([]models.StudentSubmission, error) {
	var subs []models.StudentSubmission
	pageToken := ""
	for {
		params := url.Values{}
		if opts.UserID != "" {
			params.Set("userId", opts.UserID)
		}
		if opts.Fields != "" {
			params.Set("fields", opts.Fields)
		}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}
		reqURL := fmt.Sprintf("%s/courses/%s/courseWork/%s/studentSubmissions",
			c.baseURL, url.PathEscape(courseID), url.PathEscape(courseWorkID))
		if len(params) > 0 {
			reqURL += "?" + params.Encode()
		}

		var page models.StudentSubmissionList
		if err := c.makeRequest(ctx, "classroom.studentSubmissions.list", http.MethodGet, reqURL, token, nil, &page); err != nil {
			return nil, err
		}
		subs = append(subs, page.StudentSubmissions...)

		if page.NextPageToken == "" {
			return subs, nil
		}
		pageToken = page.NextPageToken
	}
}

// GetStudentSubmission fetches one submission by ID.
func (c *Client) GetStudentSubmission(ctx context.Context, token, courseID, courseWorkID, submissionID string) (*models.StudentSubmission, error) {
	reqURL := fmt.Sprintf("%s/courses/%s/courseWork/%s/studentSubmissions/%s",
		c.baseURL, url.PathEscape(courseID), url.PathEscape(courseWorkID), url.PathEscape(submissionID))

	var sub models.StudentSubmission
	if err := c.makeRequest(ctx, "classroom.studentSubmissions.get", http.MethodGet, reqURL, token, nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetUserProfile fetches a Classroom user profile by ID.
func (c *Client) GetUserProfile(ctx context.Context, token, userID string) (*models.UserProfile, error) {
	reqURL := fmt.Sprintf("%s/userProfiles/%s", c.baseURL, url.PathEscape(userID))

	var profile models.UserProfile
	if err := c.makeRequest(ctx, "classroom.userProfiles.get", http.MethodGet, reqURL, token, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// modifyAttachmentsRequest is the wire payload of the modifyAttachments call.
type modifyAttachmentsRequest struct {
	AddAttachments []models.Attachment `json:"addAttachments"`
}

// ModifyAttachments adds attachments to a submission and returns the updated
// submission record.
func (c *Client) ModifyAttachments(ctx context.Context, token, courseID, courseWorkID, submissionID string, attachments []models.Attachment) (*models.StudentSubmission, error) {
	reqURL := fmt.Sprintf("%s/courses/%s/courseWork/%s/studentSubmissions/%s:modifyAttachments",
		c.baseURL, url.PathEscape(courseID), url.PathEscape(courseWorkID), url.PathEscape(submissionID))

	payload := modifyAttachmentsRequest{AddAttachments: attachments}
	var sub models.StudentSubmission
	if err := c.makeRequest(ctx, "classroom.studentSubmissions.modifyAttachments", http.MethodPost, reqURL, token, payload, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// TurnIn transitions a submission to the TURNED_IN state.
func (c *Client) TurnIn(ctx context.Context, token, courseID, courseWorkID, submissionID string) error {
	reqURL := fmt.Sprintf("%s/courses/%s/courseWork/%s/studentSubmissions/%s:turnIn",
		c.baseURL, url.PathEscape(courseID), url.PathEscape(courseWorkID), url.PathEscape(submissionID))

	return c.makeRequest(ctx, "classroom.studentSubmissions.turnIn", http.MethodPost, reqURL, token, struct{}{}, nil)
}

// UploadFile uploads a file to Drive using the multipart upload protocol and
// returns a reference suitable for attaching to a submission.
func (c *Client) UploadFile(ctx context.Context, token, filename, contentType string, content io.Reader) (*models.DriveFileRef, error) {
	type driveMetadata struct {
		Name string `json:"name"`
	}
	meta, err := json.Marshal(driveMetadata{Name: filename})
	if err != nil {
		return nil, fmt.Errorf("failed to encode drive metadata: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata part: %w", err)
	}
	if _, err := metaPart.Write(meta); err != nil {
		return nil, fmt.Errorf("failed to write metadata part: %w", err)
	}

	fileHeader := textproto.MIMEHeader{}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	fileHeader.Set("Content-Type", contentType)
	filePart, err := writer.CreatePart(fileHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(filePart, content); err != nil {
		return nil, fmt.Errorf("failed to write file part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	reqURL := c.driveUploadURL + "?uploadType=multipart"

	ref, err := execute(ctx, c.breaker, func() (*models.DriveFileRef, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(buf.Bytes()))
		if err != nil {
			return nil, fmt.Errorf("failed to create drive upload request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())

		start := time.Now()
		resp, err := c.client.Do(req)
		if err != nil {
			metrics.UpstreamRequestsTotal.WithLabelValues("drive.files.create", "error").Inc()
			return nil, fmt.Errorf("drive upload request failed: %w", err)
		}
		defer resp.Body.Close()

		metrics.UpstreamRequestDuration.WithLabelValues("drive.files.create").Observe(time.Since(start).Seconds())
		metrics.UpstreamRequestsTotal.WithLabelValues("drive.files.create", http.StatusText(resp.StatusCode)).Inc()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &UpstreamError{
				Op:         "drive.files.create",
				StatusCode: resp.StatusCode,
				Body:       string(readBodyForError(resp.Body)),
			}
		}

		var created struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			return nil, fmt.Errorf("failed to decode drive upload response: %w", err)
		}
		return &models.DriveFileRef{ID: created.ID, Title: created.Name}, nil
	})
	if err != nil {
		return nil, err
	}
	return ref, nil
}
