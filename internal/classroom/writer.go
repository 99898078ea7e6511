// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

package classroom

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/classgo/classgo/internal/logging"
	"github.com/classgo/classgo/internal/models"
)

// SubmitRequest carries everything needed to turn in one assignment.
// Exactly one content source is required: an uploaded file or generated text.
type SubmitRequest struct {
	CourseID     string
	CourseWorkID string

	// SubmissionID targets an explicit submission. Empty means resolve the
	// token owner's submission first.
	SubmissionID string

	// File is the uploaded document, nil when submitting generated text.
	File        io.Reader
	Filename    string
	ContentType string

	// GeneratedText is the AI draft to submit when no file is uploaded.
	// It is synthesized into a plain-text Drive file.
	GeneratedText string
}

// Writer drives the submission flow: resolve the student's submission,
// upload content to Drive, attach it, and turn the submission in.
type Writer struct {
	client ClientInterface
}

// NewWriter creates a writer on top of a Classroom client.
func NewWriter(client ClientInterface) *Writer {
	return &Writer{client: client}
}

// Submit runs the full turn-in flow for the token owner.
//
// Steps:
//  1. Resolve the student's own submission ID for the coursework.
//  2. Refuse if it is already TURNED_IN (ErrAlreadyTurnedIn) - the flow is
//     not idempotent upstream, so retried requests must stop here.
//  3. Upload the file, or synthesize submission-<id>.txt from the text.
//  4. Attach the Drive file to the submission.
//  5. Turn the submission in.
func (w *Writer) Submit(ctx context.Context, token string, req SubmitRequest) (*models.SubmitResult, error) {
	if req.File == nil && strings.TrimSpace(req.GeneratedText) == "" {
		return nil, ErrEmptySubmission
	}

	var (
		sub *models.StudentSubmission
		err error
	)
	if req.SubmissionID != "" {
		sub, err = w.client.GetStudentSubmission(ctx, token, req.CourseID, req.CourseWorkID, req.SubmissionID)
	} else {
		sub, err = w.resolveOwnSubmission(ctx, token, req.CourseID, req.CourseWorkID)
	}
	if err != nil {
		return nil, err
	}

	if sub.State == models.SubmissionStateTurnedIn {
		return nil, ErrAlreadyTurnedIn
	}

	var (
		content     io.Reader
		filename    string
		contentType string
	)
	if req.File != nil {
		content = req.File
		filename = req.Filename
		contentType = req.ContentType
		if filename == "" {
			filename = fmt.Sprintf("submission-%s", sub.ID)
		}
	} else {
		content = strings.NewReader(req.GeneratedText)
		filename = fmt.Sprintf("submission-%s.txt", sub.ID)
		contentType = "text/plain"
	}

	ref, err := w.client.UploadFile(ctx, token, filename, contentType, content)
	if err != nil {
		return nil, err
	}
	if ref.ID == "" {
		// A 2xx Drive response without an ID would attach an empty
		// reference; stop before touching the submission.
		return nil, ErrNoDriveFileID
	}

	updated, err := w.client.ModifyAttachments(ctx, token, req.CourseID, req.CourseWorkID, sub.ID, []models.Attachment{
		{DriveFile: &models.DriveFileRef{ID: ref.ID}},
	})
	if err != nil {
		return nil, err
	}

	if err := w.client.TurnIn(ctx, token, req.CourseID, req.CourseWorkID, sub.ID); err != nil {
		// The attachment stuck but the turn-in failed; the student can
		// retry and the pre-check will still pass.
		return nil, err
	}

	logging.Info().
		Str("course_id", req.CourseID).
		Str("course_work_id", req.CourseWorkID).
		Str("submission_id", sub.ID).
		Msg("Assignment turned in")

	updated.State = models.SubmissionStateTurnedIn
	return &models.SubmitResult{
		SubmissionID: sub.ID,
		DriveFileIDs: []string{ref.ID},
		Submission:   updated,
	}, nil
}

// resolveOwnSubmission finds the token owner's submission for a coursework
// item. Classroom creates exactly one row per enrolled student; absence
// means the student is not enrolled or the item is not an assignment.
func (w *Writer) resolveOwnSubmission(ctx context.Context, token, courseID, courseWorkID string) (*models.StudentSubmission, error) {
	subs, err := w.client.ListStudentSubmissions(ctx, token, courseID, courseWorkID, ListSubmissionsOptions{
		UserID: "me",
	})
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, ErrNoSubmission
	}
	return &subs[0], nil
}
