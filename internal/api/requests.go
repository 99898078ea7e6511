// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// validate is the shared validator instance. validator.Validate is safe for
// concurrent use and caches struct metadata.
var validate = validator.New()

// SignUpRequest creates a local account.
type SignUpRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// SignInRequest authenticates a local account.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PrepareRequest asks for an AI draft of one assignment.
type PrepareRequest struct {
	CourseID string `json:"courseId" validate:"required"`
}

// SaveAssignmentRequest persists a generated draft.
type SaveAssignmentRequest struct {
	CourseID              string `json:"courseId" validate:"required"`
	AssignmentTitle       string `json:"assignmentTitle" validate:"required,max=500"`
	AssignmentDescription string `json:"assignmentDescription"`
	AIResponse            string `json:"aiResponse" validate:"required"`
	StudentName           string `json:"studentName" validate:"max=200"`
	USN                   string `json:"usn" validate:"max=50"`
	Subject               string `json:"subject" validate:"max=200"`
	Course                string `json:"course" validate:"max=200"`
	Stream                string `json:"stream" validate:"max=200"`
	MaterialsCount        int    `json:"materialsCount" validate:"min=0"`
}

// SubmitTextRequest turns in generated text (the JSON variant of submit;
// file uploads use multipart form data instead).
type SubmitTextRequest struct {
	GeneratedText string `json:"generatedText" validate:"required"`
}

// ChatRequest is one detox-chat message.
type ChatRequest struct {
	Input string `json:"input" validate:"required,max=4000"`
}

// WaitlistRequest joins the detox waitlist.
type WaitlistRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email"`
}

// decodeAndValidate decodes the JSON body into dst and validates it.
// On failure it writes the error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	rw := NewResponseWriter(w, r)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		rw.BadRequest("Invalid JSON body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var details []string
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				details = append(details, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
			}
		}
		rw.ValidationError("Request validation failed", details)
		return false
	}

	return true
}
