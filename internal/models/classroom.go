// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

// Package models defines the shared domain types for ClassGo.
//
// The Classroom-owned types in this file mirror the Google Classroom v1
// REST wire format: field names and JSON tags follow the upstream API so
// responses can be decoded directly. These records are externally owned;
// ClassGo only ever reads them, except for the single turn-in transition
// driven by the submission writer.
package models

// Submission states as reported by the Classroom API. ClassGo only ever
// drives the CREATED -> TURNED_IN transition; RETURNED and
// RECLAIMED_BY_STUDENT are observed, never written.
const (
	SubmissionStateCreated            = "CREATED"
	SubmissionStateTurnedIn           = "TURNED_IN"
	SubmissionStateReturned           = "RETURNED"
	SubmissionStateReclaimedByStudent = "RECLAIMED_BY_STUDENT"
)

// Course is a Classroom course. Read-only.
type Course struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CourseState string `json:"courseState,omitempty"`
}

// CourseList is the wire response of the course listing call.
type CourseList struct {
	Courses       []Course `json:"courses"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
}

// DueDate is Classroom's calendar date for an assignment deadline.
type DueDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// DueTime is Classroom's time-of-day for an assignment deadline (UTC).
type DueTime struct {
	Hours   int `json:"hours,omitempty"`
	Minutes int `json:"minutes,omitempty"`
}

// DriveFileRef references a file stored in Google Drive.
type DriveFileRef struct {
	ID            string `json:"id"`
	Title         string `json:"title,omitempty"`
	AlternateLink string `json:"alternateLink,omitempty"`
	ThumbnailURL  string `json:"thumbnailUrl,omitempty"`
}

// YouTubeVideoRef references a YouTube video attached to coursework.
type YouTubeVideoRef struct {
	ID            string `json:"id"`
	Title         string `json:"title,omitempty"`
	AlternateLink string `json:"alternateLink,omitempty"`
	ThumbnailURL  string `json:"thumbnailUrl,omitempty"`
}

// LinkRef references an arbitrary URL attached to coursework.
type LinkRef struct {
	URL          string `json:"url"`
	Title        string `json:"title,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// FormRef references a Google Form attached to coursework.
type FormRef struct {
	FormURL      string `json:"formUrl"`
	ResponseURL  string `json:"responseUrl,omitempty"`
	Title        string `json:"title,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// MaterialDriveFile wraps a Drive attachment with its coursework share mode.
type MaterialDriveFile struct {
	DriveFile DriveFileRef `json:"driveFile"`
	ShareMode string       `json:"shareMode,omitempty"`
}

// Material is one coursework attachment. Exactly one of the fields is set.
type Material struct {
	DriveFile    *MaterialDriveFile `json:"driveFile,omitempty"`
	YouTubeVideo *YouTubeVideoRef   `json:"youtubeVideo,omitempty"`
	Link         *LinkRef           `json:"link,omitempty"`
	Form         *FormRef           `json:"form,omitempty"`
}

// CourseWork is a Classroom assignment or question item. Read-only.
type CourseWork struct {
	ID          string     `json:"id"`
	CourseID    string     `json:"courseId,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	State       string     `json:"state,omitempty"`
	DueDate     *DueDate   `json:"dueDate,omitempty"`
	DueTime     *DueTime   `json:"dueTime,omitempty"`
	MaxPoints   float64    `json:"maxPoints,omitempty"`
	WorkType    string     `json:"workType,omitempty"`
	Materials   []Material `json:"materials,omitempty"`
}

// CourseWorkList is the wire response of the coursework listing call.
type CourseWorkList struct {
	CourseWork    []CourseWork `json:"courseWork"`
	NextPageToken string       `json:"nextPageToken,omitempty"`
}

// Attachment is one submission attachment. Exactly one of the fields is set.
type Attachment struct {
	DriveFile    *DriveFileRef    `json:"driveFile,omitempty"`
	YouTubeVideo *YouTubeVideoRef `json:"youTubeVideo,omitempty"`
	Link         *LinkRef         `json:"link,omitempty"`
	Form         *FormRef         `json:"form,omitempty"`
}

// AssignmentSubmission carries the attachments of a student submission.
type AssignmentSubmission struct {
	Attachments []Attachment `json:"attachments,omitempty"`
}

// StudentSubmission is a per-student submission record. ClassGo mutates it
// only indirectly, through the modifyAttachments and turnIn operations.
type StudentSubmission struct {
	ID                   string                `json:"id"`
	CourseID             string                `json:"courseId,omitempty"`
	CourseWorkID         string                `json:"courseWorkId,omitempty"`
	UserID               string                `json:"userId"`
	CreationTime         string                `json:"creationTime,omitempty"`
	UpdateTime           string                `json:"updateTime,omitempty"`
	State                string                `json:"state"`
	Late                 bool                  `json:"late,omitempty"`
	DraftGrade           *float64              `json:"draftGrade,omitempty"`
	AssignedGrade        *float64              `json:"assignedGrade,omitempty"`
	AlternateLink        string                `json:"alternateLink,omitempty"`
	CourseWorkType       string                `json:"courseWorkType,omitempty"`
	AssignmentSubmission *AssignmentSubmission `json:"assignmentSubmission,omitempty"`

	// UserProfile is joined in by the aggregator; nil when the individual
	// profile fetch failed. Not part of the upstream wire format.
	UserProfile *UserProfile `json:"userProfile"`
}

// StudentSubmissionList is the wire response of the submission listing call.
type StudentSubmissionList struct {
	StudentSubmissions []StudentSubmission `json:"studentSubmissions"`
	NextPageToken      string              `json:"nextPageToken,omitempty"`
}

// UserName is the structured name of a Classroom user profile.
type UserName struct {
	GivenName  string `json:"givenName,omitempty"`
	FamilyName string `json:"familyName,omitempty"`
	FullName   string `json:"fullName,omitempty"`
}

// UserProfile is a Classroom user profile, fetched per distinct submitter.
type UserProfile struct {
	ID           string   `json:"id"`
	Name         UserName `json:"name"`
	EmailAddress string   `json:"emailAddress,omitempty"`
	PhotoURL     string   `json:"photoUrl,omitempty"`
}
