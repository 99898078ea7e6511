// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

// Package database provides the PostgreSQL persistence layer for ClassGo.
//
// All access goes through Store, a thin wrapper around a GORM handle. The
// schema is managed with AutoMigrate at startup; the models carry explicit
// column tags so the generated DDL is stable across GORM versions.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/classgo/classgo/internal/config"
	"github.com/classgo/classgo/internal/logging"
)

var (
	// ErrNotFound is returned by lookup methods when no row matches.
	ErrNotFound = errors.New("database: record not found")

	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("database: duplicate record")
)

// Store wraps the GORM handle with ClassGo's query surface.
type Store struct {
	db *gorm.DB
}

// Open connects to PostgreSQL and migrates the schema.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	gormCfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(cfg.ConnString()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&User{},
		&LinkedAccount{},
		&GeneratedAssignment{},
		&WaitlistSignup{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	logging.Info().Str("database", cfg.Name).Msg("Database connected and migrated")
	return &Store{db: db}, nil
}

// NewStore wraps an existing GORM handle. Used by tests with an in-memory or
// transactional database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping verifies database connectivity for health checks.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// CreateUser inserts a new user. The caller is expected to have hashed the
// password already.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("user with email %s: %w", u.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail looks up a user by email, returning ErrNotFound when absent.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// GetUserByID looks up a user by primary key.
func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// GetLinkedAccount returns the linked account for a user and provider, or
// ErrNotFound when the user never linked one.
func (s *Store) GetLinkedAccount(ctx context.Context, userID uuid.UUID, provider string) (*LinkedAccount, error) {
	var a LinkedAccount
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query linked account: %w", err)
	}
	return &a, nil
}

// UpsertLinkedAccount creates or refreshes the credentials for a provider
// link. Re-linking overwrites the stored tokens in place.
func (s *Store) UpsertLinkedAccount(ctx context.Context, a *LinkedAccount) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"provider_user_id", "access_token", "refresh_token", "token_expiry", "updated_at",
		}),
	}).Create(a).Error
	if err != nil {
		return fmt.Errorf("failed to upsert linked account: %w", err)
	}
	return nil
}

// UpsertGeneratedAssignment saves an AI draft, replacing any existing draft
// for the same (user, course, assignment) triple.
func (s *Store) UpsertGeneratedAssignment(ctx context.Context, g *GeneratedAssignment) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "course_id"}, {Name: "assignment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"assignment_title", "assignment_description", "ai_response",
			"student_name", "usn", "subject", "course", "stream",
			"materials_count", "updated_at",
		}),
	}).Create(g).Error
	if err != nil {
		return fmt.Errorf("failed to upsert generated assignment: %w", err)
	}
	return nil
}

// GetGeneratedAssignment fetches the saved draft for one coursework item.
func (s *Store) GetGeneratedAssignment(ctx context.Context, userID uuid.UUID, courseID, assignmentID string) (*GeneratedAssignment, error) {
	var g GeneratedAssignment
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND assignment_id = ?", userID, courseID, assignmentID).
		First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query generated assignment: %w", err)
	}
	return &g, nil
}

// CreateWaitlistSignup records a waitlist entry. A repeat signup for the same
// email is a no-op rather than an error.
func (s *Store) CreateWaitlistSignup(ctx context.Context, w *WaitlistSignup) (created bool, err error) {
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(w)
	if res.Error != nil {
		return false, fmt.Errorf("failed to create waitlist signup: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
