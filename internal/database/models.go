// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a ClassGo account holder. Authentication against Google happens
// through a LinkedAccount; the local password only gates the ClassGo session.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;column:id"`
	Name         string    `gorm:"type:text;not null;column:name"`
	Email        string    `gorm:"type:text;not null;uniqueIndex;column:email"`
	PasswordHash string    `gorm:"type:text;not null;column:password_hash"`

	CreatedAt time.Time      `gorm:"type:timestamptz;not null;default:now();column:created_at"`
	UpdatedAt time.Time      `gorm:"type:timestamptz;not null;default:now();column:updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"type:timestamptz;index;column:deleted_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// LinkedAccount holds the OAuth credentials for an external provider tied to
// a user. ClassGo currently links only "google"; the provider column keeps
// the table open for others.
type LinkedAccount struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;column:id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_linked_accounts_user_provider;column:user_id"`
	Provider string    `gorm:"type:text;not null;uniqueIndex:idx_linked_accounts_user_provider;column:provider"`

	ProviderUserID string    `gorm:"type:text;not null;column:provider_user_id"`
	AccessToken    string    `gorm:"type:text;not null;column:access_token"`
	RefreshToken   string    `gorm:"type:text;column:refresh_token"`
	TokenExpiry    time.Time `gorm:"type:timestamptz;column:token_expiry"`

	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();column:created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now();column:updated_at"`
}

func (LinkedAccount) TableName() string { return "linked_accounts" }

func (a *LinkedAccount) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// GeneratedAssignment is a persisted AI draft for one coursework item. The
// compound unique index makes one row per (user, course, assignment); a
// regenerated draft overwrites the previous one.
type GeneratedAssignment struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;column:id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_generated_assignments_key;column:user_id"`
	CourseID     string    `gorm:"type:text;not null;uniqueIndex:idx_generated_assignments_key;column:course_id"`
	AssignmentID string    `gorm:"type:text;not null;uniqueIndex:idx_generated_assignments_key;column:assignment_id"`

	AssignmentTitle       string `gorm:"type:text;not null;column:assignment_title"`
	AssignmentDescription string `gorm:"type:text;column:assignment_description"`
	AIResponse            string `gorm:"type:text;column:ai_response"`
	StudentName           string `gorm:"type:text;column:student_name"`
	USN                   string `gorm:"type:text;column:usn"`
	Subject               string `gorm:"type:text;column:subject"`
	Course                string `gorm:"type:text;column:course"`
	Stream                string `gorm:"type:text;column:stream"`
	MaterialsCount        int    `gorm:"type:int;not null;default:0;column:materials_count"`

	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();column:created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now();column:updated_at"`
}

func (GeneratedAssignment) TableName() string { return "generated_assignments" }

func (g *GeneratedAssignment) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// WaitlistSignup records interest in the detox program. Email is unique so
// repeat signups are idempotent.
type WaitlistSignup struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey;column:id"`
	Name  string    `gorm:"type:text;not null;column:name"`
	Email string    `gorm:"type:text;not null;uniqueIndex;column:email"`

	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();column:created_at"`
}

func (WaitlistSignup) TableName() string { return "waitlist_signups" }

func (w *WaitlistSignup) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
