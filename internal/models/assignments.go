// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

package models

// AssignmentStatusUnknown marks an assignment whose own-submission state
// could not be fetched; the assignment is still listed.
const AssignmentStatusUnknown = "UNKNOWN"

// AssignmentSummary is one row of the cross-course assignment listing:
// coursework joined with the requesting student's own submission state.
type AssignmentSummary struct {
	ID         string   `json:"id"`
	CourseID   string   `json:"courseId"`
	Title      string   `json:"title"`
	DueDate    *DueDate `json:"dueDate,omitempty"`
	CourseName string   `json:"courseName"`
	Status     string   `json:"status"`
}

// AssignmentListResponse is the full payload of the assignment listing.
// This exact shape is what gets serialized into the cache, so the cached
// value round-trips byte-comparably with the live response.
type AssignmentListResponse struct {
	Success          bool                `json:"success"`
	Assignments      []AssignmentSummary `json:"assignments"`
	TotalAssignments int                 `json:"totalAssignments"`
}

// SubmissionStats are the derived statistics of an assignment's submissions.
type SubmissionStats struct {
	TotalSubmissions int `json:"totalSubmissions"`
	SubmittedCount   int `json:"submittedCount"`
	DraftCount       int `json:"draftCount"`
	LateSubmissions  int `json:"lateSubmissions"`
	GradedCount      int `json:"gradedCount"`
}

// AssignmentDetail is the consolidated view of one assignment: metadata,
// profile-enriched submissions and derived statistics.
type AssignmentDetail struct {
	CourseID         string              `json:"courseId"`
	AssignmentID     string              `json:"assignmentId"`
	Assignment       *CourseWork         `json:"assignment"`
	Submissions      []StudentSubmission `json:"submissions"`
	Statistics       SubmissionStats     `json:"statistics"`
	TotalSubmissions int                 `json:"totalSubmissions"`
}

// SubmitResult reports a completed submission turn-in.
type SubmitResult struct {
	SubmissionID string             `json:"submissionId"`
	DriveFileIDs []string           `json:"driveFileIds"`
	Submission   *StudentSubmission `json:"submission,omitempty"`
}
