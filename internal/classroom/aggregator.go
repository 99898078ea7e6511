// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

package classroom

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/classgo/classgo/internal/logging"
	"github.com/classgo/classgo/internal/models"
)

// maxProfileFetchConcurrency bounds the parallel userProfiles.get fan-out so
// a large roster does not burst-exhaust the Classroom API quota.
const maxProfileFetchConcurrency = 4

// Aggregator assembles the combined assignment-detail view from multiple
// Classroom API calls.
type Aggregator struct {
	client ClientInterface
}

// NewAggregator creates an aggregator on top of a Classroom client.
func NewAggregator(client ClientInterface) *Aggregator {
	return &Aggregator{client: client}
}

// AssignmentDetail returns one coursework item together with every student
// submission, submitter profiles, and roster-level statistics.
//
// Profile fetches run concurrently but bounded, one call per distinct
// submitter. A failed profile fetch leaves that submission's UserProfile nil
// rather than failing the whole view.
func (a *Aggregator) AssignmentDetail(ctx context.Context, token, courseID, courseWorkID string) (*models.AssignmentDetail, error) {
	work, err := a.client.GetCourseWork(ctx, token, courseID, courseWorkID)
	if err != nil {
		return nil, err
	}

	subs, err := a.client.ListStudentSubmissions(ctx, token, courseID, courseWorkID, ListSubmissionsOptions{
		Fields: submissionListFields,
	})
	if err != nil {
		return nil, err
	}

	profiles := a.fetchProfiles(ctx, token, subs)
	for i := range subs {
		subs[i].UserProfile = profiles[subs[i].UserID]
	}

	stats := ComputeStats(subs)

	return &models.AssignmentDetail{
		CourseID:         courseID,
		AssignmentID:     courseWorkID,
		Assignment:       work,
		Submissions:      subs,
		Statistics:       stats,
		TotalSubmissions: len(subs),
	}, nil
}

// fetchProfiles resolves the distinct submitter IDs to profiles. Failures
// are logged and yield a nil entry.
func (a *Aggregator) fetchProfiles(ctx context.Context, token string, subs []models.StudentSubmission) map[string]*models.UserProfile {
	distinct := make(map[string]struct{}, len(subs))
	for _, sub := range subs {
		if sub.UserID != "" {
			distinct[sub.UserID] = struct{}{}
		}
	}

	var mu sync.Mutex
	profiles := make(map[string]*models.UserProfile, len(distinct))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxProfileFetchConcurrency)

	for userID := range distinct {
		userID := userID
		g.Go(func() error {
			profile, err := a.client.GetUserProfile(gctx, token, userID)
			if err != nil {
				logging.Warn().Err(err).Str("user_id", userID).Msg("Failed to fetch submitter profile")
				return nil // best effort, never fails the view
			}
			mu.Lock()
			profiles[userID] = profile
			mu.Unlock()
			return nil
		})
	}
	//nolint:errcheck // workers never return errors
	g.Wait()

	return profiles
}

// ComputeStats derives roster-level statistics from a submission list.
//
// Counting rules:
//   - submitted: state TURNED_IN or RETURNED
//   - draft: state CREATED
//   - late: the upstream late flag, regardless of state
//   - graded: assignedGrade present (a grade of 0 still counts)
func ComputeStats(subs []models.StudentSubmission) models.SubmissionStats {
	stats := models.SubmissionStats{TotalSubmissions: len(subs)}
	for _, sub := range subs {
		switch sub.State {
		case models.SubmissionStateTurnedIn, models.SubmissionStateReturned:
			stats.SubmittedCount++
		case models.SubmissionStateCreated:
			stats.DraftCount++
		}
		if sub.Late {
			stats.LateSubmissions++
		}
		if sub.AssignedGrade != nil {
			stats.GradedCount++
		}
	}
	return stats
}
