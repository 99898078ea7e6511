// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

package classroom

import (
	"context"
	"errors"
	"testing"

	"github.com/classgo/classgo/internal/models"
)

func floatPtr(f float64) *float64 { return &f }

func TestAssignmentDetailJoinsProfilesAndStats(t *testing.T) {
	t.Parallel()

	mock := newMockClient()
	mock.getCourseWorkFn = func(ctx context.Context, token, courseID, courseWorkID string) (*models.CourseWork, error) {
		return &models.CourseWork{ID: courseWorkID, CourseID: courseID, Title: "Essay"}, nil
	}
	mock.listStudentSubmissionsFn = func(ctx context.Context, token, courseID, courseWorkID string, opts ListSubmissionsOptions) ([]models.StudentSubmission, error) {
		if opts.Fields != submissionListFields {
			t.Errorf("expected field projection, got %q", opts.Fields)
		}
		return []models.StudentSubmission{
			{ID: "s1", UserID: "u1", State: models.SubmissionStateTurnedIn},
			{ID: "s2", UserID: "u2", State: models.SubmissionStateCreated, Late: true},
			{ID: "s3", UserID: "u1", State: models.SubmissionStateReturned, AssignedGrade: floatPtr(0)},
		}, nil
	}
	mock.getUserProfileFn = func(ctx context.Context, token, userID string) (*models.UserProfile, error) {
		return &models.UserProfile{ID: userID, Name: models.UserName{FullName: "User " + userID}}, nil
	}

	agg := NewAggregator(mock)
	detail, err := agg.AssignmentDetail(context.Background(), "tok", "c1", "a1")
	if err != nil {
		t.Fatalf("AssignmentDetail returned error: %v", err)
	}

	// u1 submits twice but its profile is fetched once.
	if got := mock.callCount("GetUserProfile"); got != 2 {
		t.Errorf("GetUserProfile calls = %d, want 2 (distinct submitters)", got)
	}

	for _, sub := range detail.Submissions {
		if sub.UserProfile == nil {
			t.Errorf("submission %s missing joined profile", sub.ID)
		}
	}

	want := models.SubmissionStats{
		TotalSubmissions: 3,
		SubmittedCount:   2, // TURNED_IN + RETURNED
		DraftCount:       1,
		LateSubmissions:  1,
		GradedCount:      1, // grade of 0 still counts
	}
	if detail.Statistics != want {
		t.Errorf("Statistics = %+v, want %+v", detail.Statistics, want)
	}
	if detail.TotalSubmissions != 3 {
		t.Errorf("TotalSubmissions = %d, want 3", detail.TotalSubmissions)
	}
}

func TestAssignmentDetailProfileFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	mock := newMockClient()
	mock.listStudentSubmissionsFn = func(ctx context.Context, token, courseID, courseWorkID string, opts ListSubmissionsOptions) ([]models.StudentSubmission, error) {
		return []models.StudentSubmission{
			{ID: "s1", UserID: "u1", State: models.SubmissionStateCreated},
			{ID: "s2", UserID: "u2", State: models.SubmissionStateCreated},
		}, nil
	}
	mock.getUserProfileFn = func(ctx context.Context, token, userID string) (*models.UserProfile, error) {
		if userID == "u2" {
			return nil, &UpstreamError{Op: "classroom.userProfiles.get", StatusCode: 403}
		}
		return &models.UserProfile{ID: userID}, nil
	}

	agg := NewAggregator(mock)
	detail, err := agg.AssignmentDetail(context.Background(), "tok", "c1", "a1")
	if err != nil {
		t.Fatalf("AssignmentDetail returned error: %v", err)
	}

	var u1, u2 *models.StudentSubmission
	for i := range detail.Submissions {
		switch detail.Submissions[i].UserID {
		case "u1":
			u1 = &detail.Submissions[i]
		case "u2":
			u2 = &detail.Submissions[i]
		}
	}
	if u1 == nil || u1.UserProfile == nil {
		t.Error("expected u1 profile to be joined")
	}
	if u2 == nil || u2.UserProfile != nil {
		t.Error("expected u2 profile to be nil after fetch failure")
	}
}

func TestAssignmentDetailSubmissionListFailure(t *testing.T) {
	t.Parallel()

	mock := newMockClient()
	mock.listStudentSubmissionsFn = func(ctx context.Context, token, courseID, courseWorkID string, opts ListSubmissionsOptions) ([]models.StudentSubmission, error) {
		return nil, &UpstreamError{Op: "classroom.studentSubmissions.list", StatusCode: 403}
	}

	agg := NewAggregator(mock)
	_, err := agg.AssignmentDetail(context.Background(), "tok", "c1", "a1")
	if !IsPermissionDenied(err) {
		t.Errorf("expected permission-denied error, got %v", err)
	}
	if got := mock.callCount("GetUserProfile"); got != 0 {
		t.Errorf("GetUserProfile calls = %d, want 0 after list failure", got)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	t.Parallel()

	stats := ComputeStats(nil)
	if stats != (models.SubmissionStats{}) {
		t.Errorf("empty roster stats = %+v, want zero value", stats)
	}
}

func TestComputeStatsAllStates(t *testing.T) {
	t.Parallel()

	subs := []models.StudentSubmission{
		{State: models.SubmissionStateCreated},
		{State: models.SubmissionStateTurnedIn, Late: true},
		{State: models.SubmissionStateReturned, AssignedGrade: floatPtr(87.5)},
		{State: models.SubmissionStateReclaimedByStudent},
		{State: models.SubmissionStateTurnedIn, DraftGrade: floatPtr(50)}, // draft grade alone is not graded
	}

	got := ComputeStats(subs)
	want := models.SubmissionStats{
		TotalSubmissions: 5,
		SubmittedCount:   3,
		DraftCount:       1,
		LateSubmissions:  1,
		GradedCount:      1,
	}
	if got != want {
		t.Errorf("ComputeStats = %+v, want %+v", got, want)
	}
}

// Guard against errors.Is confusion between sentinel and upstream errors.
func TestSentinelErrorsDistinct(t *testing.T) {
	t.Parallel()

	if errors.Is(ErrNoSubmission, ErrAlreadyTurnedIn) {
		t.Error("sentinels must be distinct")
	}
	if IsTokenExpired(ErrNoSubmission) {
		t.Error("sentinel must not classify as upstream error")
	}
}
