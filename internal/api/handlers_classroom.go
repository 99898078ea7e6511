// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

package api

import (
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/classgo/classgo/internal/classroom"
	"github.com/classgo/classgo/internal/logging"
)

// maxUploadSize bounds multipart submission uploads (32 MiB).
const maxUploadSize = 32 << 20

// ListCourseWork returns all coursework for a course.
func (s *Server) ListCourseWork(w http.ResponseWriter, r *http.Request) {
	token, _, ok := s.googleToken(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	courseID := chi.URLParam(r, "courseId")

	work, err := s.classroom.ListCourseWork(r.Context(), token, courseID)
	if err != nil {
		upstreamError(w, r, err)
		return
	}

	rw.Success(map[string]interface{}{
		"courseId":   courseID,
		"courseWork": work,
		"total":      len(work),
	})
}

// AssignmentDetail returns one assignment with its submissions, joined
// student profiles, and aggregate statistics.
func (s *Server) AssignmentDetail(w http.ResponseWriter, r *http.Request) {
	token, _, ok := s.googleToken(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	courseID := chi.URLParam(r, "courseId")
	assignmentID := chi.URLParam(r, "assignmentId")

	detail, err := s.aggregator.AssignmentDetail(r.Context(), token, courseID, assignmentID)
	if err != nil {
		upstreamError(w, r, err)
		return
	}

	rw.Success(detail)
}

// GetSubmission returns one student submission by ID.
func (s *Server) GetSubmission(w http.ResponseWriter, r *http.Request) {
	token, _, ok := s.googleToken(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	sub, err := s.classroom.GetStudentSubmission(r.Context(), token,
		chi.URLParam(r, "courseId"),
		chi.URLParam(r, "assignmentId"),
		chi.URLParam(r, "submissionId"))
	if err != nil {
		upstreamError(w, r, err)
		return
	}

	rw.Success(sub)
}

// Submit attaches content to the user's submission and turns it in. The
// request is either multipart/form-data with a "file" part, or JSON with
// generatedText; the text form is synthesized into a plain-text file before
// upload. The cached assignment listing is NOT invalidated here; it ages out
// on its TTL, so the listing can report the old state for up to the cache
// window after a turn-in.
func (s *Server) Submit(w http.ResponseWriter, r *http.Request) {
	token, userID, ok := s.googleToken(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	req := classroom.SubmitRequest{
		CourseID:     chi.URLParam(r, "courseId"),
		CourseWorkID: chi.URLParam(r, "assignmentId"),
		SubmissionID: chi.URLParam(r, "submissionId"),
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			rw.BadRequest("Invalid multipart form")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			rw.ValidationError("A file or generated text is required", nil)
			return
		}
		defer file.Close()

		req.File = file
		req.Filename = header.Filename
		req.ContentType = header.Header.Get("Content-Type")
		req.GeneratedText = r.FormValue("generatedText")
	} else {
		var body SubmitTextRequest
		if !decodeAndValidate(w, r, &body) {
			return
		}
		req.GeneratedText = body.GeneratedText
	}

	result, err := s.writer.Submit(r.Context(), token, req)
	if err != nil {
		upstreamError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("user_id", userID.String()).
		Str("course_id", req.CourseID).
		Str("submission_id", result.SubmissionID).
		Msg("Assignment turned in")

	rw.Success(result)
}
