// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

package classroom

import (
	"context"

	"github.com/classgo/classgo/internal/logging"
	"github.com/classgo/classgo/internal/models"
)

// allCourseWork is the courseWorkId wildcard accepted by the submissions
// listing endpoint, returning the student's submissions across every
// coursework item of a course in one call.
const allCourseWork = "-"

// Lister builds the cross-course assignment listing for one student.
type Lister struct {
	client ClientInterface
}

// NewLister creates a lister on top of a Classroom client.
func NewLister(client ClientInterface) *Lister {
	return &Lister{client: client}
}

// ListUserAssignments returns every assignment across the student's courses,
// each annotated with the student's own submission state.
//
// A course whose coursework or submissions cannot be fetched is skipped with
// a warning, so one archived or permission-restricted course does not empty
// the whole listing. A missing submission state yields UNKNOWN.
func (l *Lister) ListUserAssignments(ctx context.Context, token string) (*models.AssignmentListResponse, error) {
	courses, err := l.client.ListCourses(ctx, token, ListCoursesOptions{StudentID: "me"})
	if err != nil {
		return nil, err
	}

	assignments := []models.AssignmentSummary{}
	for _, course := range courses {
		work, err := l.client.ListCourseWork(ctx, token, course.ID)
		if err != nil {
			logging.Warn().Err(err).Str("course_id", course.ID).Msg("Skipping course: coursework listing failed")
			continue
		}
		if len(work) == 0 {
			continue
		}

		// One wildcard call resolves the student's state for every
		// coursework item in the course.
		states := make(map[string]string)
		subs, err := l.client.ListStudentSubmissions(ctx, token, course.ID, allCourseWork, ListSubmissionsOptions{
			UserID: "me",
			Fields: "studentSubmissions(id,courseWorkId,state),nextPageToken",
		})
		if err != nil {
			logging.Warn().Err(err).Str("course_id", course.ID).Msg("Own-submission lookup failed, marking states unknown")
		} else {
			for _, sub := range subs {
				states[sub.CourseWorkID] = sub.State
			}
		}

		for _, w := range work {
			status := states[w.ID]
			if status == "" {
				status = models.AssignmentStatusUnknown
			}
			assignments = append(assignments, models.AssignmentSummary{
				ID:         w.ID,
				CourseID:   course.ID,
				Title:      w.Title,
				DueDate:    w.DueDate,
				CourseName: course.Name,
				Status:     status,
			})
		}
	}

	return &models.AssignmentListResponse{
		Success:          true,
		Assignments:      assignments,
		TotalAssignments: len(assignments),
	}, nil
}
