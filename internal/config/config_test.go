// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
	if cfg.Cache.TTL != 6*time.Hour {
		t.Errorf("default cache TTL = %s, want 6h", cfg.Cache.TTL)
	}
	if cfg.Cache.KeyPrefix != "assignments:user:" {
		t.Errorf("default cache key prefix = %q, want %q", cfg.Cache.KeyPrefix, "assignments:user:")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "zero cache TTL",
			mutate:  func(c *Config) { c.Cache.TTL = 0 },
			wantErr: "cache.ttl",
		},
		{
			name:    "empty cache key prefix",
			mutate:  func(c *Config) { c.Cache.KeyPrefix = "" },
			wantErr: "cache.key_prefix",
		},
		{
			name:    "negative session TTL",
			mutate:  func(c *Config) { c.Security.SessionTTL = -time.Hour },
			wantErr: "security.session_ttl",
		},
		{
			name:    "unknown environment",
			mutate:  func(c *Config) { c.Server.Environment = "staging" },
			wantErr: "server.environment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env  string
		want string
	}{
		{"GOOGLE_CLIENT_ID", "google.client_id"},
		{"CACHE_TTL", "cache.ttl"},
		{"CACHE_KEY_PREFIX", "cache.key_prefix"},
		{"REDIS_ADDR", "redis.addr"},
		{"DATABASE_URL", "database.dsn"},
		{"SENDGRID_API_KEY", "mail.sendgrid_api_key"},
		{"LLM_API_KEY", "llm.api_key"},
		{"HTTP_PORT", "server.port"},
		{"PATH", ""},     // unmapped vars are dropped
		{"HOME", ""},     // unmapped vars are dropped
		{"RANDOM_X", ""}, // unmapped vars are dropped
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestDatabaseConnString(t *testing.T) {
	t.Parallel()

	t.Run("explicit DSN wins", func(t *testing.T) {
		t.Parallel()
		c := DatabaseConfig{DSN: "postgres://u:p@host/db", Host: "ignored"}
		if got := c.ConnString(); got != "postgres://u:p@host/db" {
			t.Errorf("ConnString() = %q, want explicit DSN", got)
		}
	})

	t.Run("assembled from fields", func(t *testing.T) {
		t.Parallel()
		c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "classgo", SSLMode: "disable"}
		got := c.ConnString()
		for _, part := range []string{"host=db", "port=5432", "user=u", "dbname=classgo", "sslmode=disable"} {
			if !strings.Contains(got, part) {
				t.Errorf("ConnString() = %q, missing %q", got, part)
			}
		}
	})
}
