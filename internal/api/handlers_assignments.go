// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/classgo/classgo/internal/database"
	"github.com/classgo/classgo/internal/logging"
	"github.com/classgo/classgo/internal/models"
)

// ListAssignments returns every assignment across the user's active courses,
// served read-through from the cache. The response body is the raw listing
// shape, identical whether it came from cache or live, so clients cannot
// observe the cache; the X-Cache header carries HIT/MISS for debugging.
func (s *Server) ListAssignments(w http.ResponseWriter, r *http.Request) {
	token, userID, ok := s.googleToken(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	resp, hit, err := s.cache.GetOrFetch(r.Context(), userID.String(), func(ctx context.Context) (*models.AssignmentListResponse, error) {
		return s.lister.ListUserAssignments(ctx, token)
	})
	if err != nil {
		upstreamError(w, r, err)
		return
	}

	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	rw.writeJSON(http.StatusOK, resp)
}

// PrepareAssignment fetches an assignment's coursework detail and generates
// an AI draft response for it in one call. The draft is returned, not
// persisted; the client saves it explicitly via SaveAssignment.
func (s *Server) PrepareAssignment(w http.ResponseWriter, r *http.Request) {
	token, _, ok := s.googleToken(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	assignmentID := chi.URLParam(r, "assignmentId")

	var req PrepareRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	work, err := s.classroom.GetCourseWork(r.Context(), token, req.CourseID, assignmentID)
	if err != nil {
		upstreamError(w, r, err)
		return
	}

	draft, err := s.generator.GenerateAssignmentDraft(r.Context(), work)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).
			Str("course_id", req.CourseID).
			Str("assignment_id", assignmentID).
			Msg("Draft generation failed")
		rw.Error(http.StatusBadGateway, ErrCodeUpstreamError, "Failed to generate assignment draft")
		return
	}

	rw.Success(map[string]interface{}{
		"aiResponse":            draft,
		"assignmentTitle":       work.Title,
		"assignmentDescription": work.Description,
		"materialsCount":        len(work.Materials),
	})
}

// SaveAssignment upserts a generated assignment for the session user. Saving
// the same (courseId, assignmentId) pair again replaces the stored content
// rather than creating a second row.
func (s *Server) SaveAssignment(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	session := sessionOrFail(w, r)
	if session == nil {
		return
	}

	assignmentID := chi.URLParam(r, "assignmentId")

	var req SaveAssignmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	record := &database.GeneratedAssignment{
		UserID:                session.UserID,
		CourseID:              req.CourseID,
		AssignmentID:          assignmentID,
		AssignmentTitle:       req.AssignmentTitle,
		AssignmentDescription: req.AssignmentDescription,
		AIResponse:            req.AIResponse,
		StudentName:           req.StudentName,
		USN:                   req.USN,
		Subject:               req.Subject,
		Course:                req.Course,
		Stream:                req.Stream,
		MaterialsCount:        req.MaterialsCount,
	}
	if err := s.store.UpsertGeneratedAssignment(r.Context(), record); err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(map[string]string{
		"id":           record.ID.String(),
		"courseId":     record.CourseID,
		"assignmentId": record.AssignmentID,
	})
}

// GetSavedAssignment returns the stored generated assignment for the session
// user, or 404 when none was saved. The course comes from the courseId query
// parameter since the save routes are keyed by assignment.
func (s *Server) GetSavedAssignment(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	session := sessionOrFail(w, r)
	if session == nil {
		return
	}

	courseID := r.URL.Query().Get("courseId")
	if courseID == "" {
		rw.ValidationError("courseId query parameter is required", nil)
		return
	}
	assignmentID := chi.URLParam(r, "assignmentId")

	record, err := s.store.GetGeneratedAssignment(r.Context(), session.UserID, courseID, assignmentID)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("No saved assignment for this course and assignment")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(record)
}
