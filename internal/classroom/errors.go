// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

package classroom

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for conditions callers branch on.
var (
	// ErrNoSubmission is returned when the authenticated student has no
	// submission row for the requested coursework.
	ErrNoSubmission = errors.New("no student submission found for this assignment")

	// ErrAlreadyTurnedIn is returned when a turn-in is attempted on a
	// submission that is already in the TURNED_IN state.
	ErrAlreadyTurnedIn = errors.New("submission has already been turned in")

	// ErrEmptySubmission is returned when a turn-in carries neither a file
	// nor generated text.
	ErrEmptySubmission = errors.New("submission requires a file or generated text")

	// ErrNoDriveFileID is returned when a Drive upload succeeds but the
	// response carries no file ID. The turn-in aborts before attaching.
	ErrNoDriveFileID = errors.New("drive upload returned no file id")
)

// UpstreamError describes a non-2xx response from the Classroom or Drive
// APIs. Classification is by HTTP status code, not by matching Google's
// error message strings, so localized or reworded messages do not change
// behavior.
type UpstreamError struct {
	// Op is the API operation that failed, e.g. "classroom.courses.list".
	Op string

	// StatusCode is the HTTP status returned by Google.
	StatusCode int

	// Body is the (truncated) response body, kept for diagnostics.
	Body string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
}

// IsTokenExpired reports whether the error is a Google 401, meaning the
// stored access token is no longer valid and the user must re-link.
func IsTokenExpired(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.StatusCode == http.StatusUnauthorized
}

// IsPermissionDenied reports whether Google rejected the call with 403.
func IsPermissionDenied(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.StatusCode == http.StatusForbidden
}

// IsNotFound reports whether the referenced course, coursework, or
// submission does not exist (Google 404).
func IsNotFound(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.StatusCode == http.StatusNotFound
}
