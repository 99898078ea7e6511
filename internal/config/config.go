// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

// Package config provides layered configuration loading for ClassGo.
// Precedence: environment variables > YAML config file > built-in defaults.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config is the root configuration for the ClassGo server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Cache    CacheConfig    `koanf:"cache"`
	Google   GoogleConfig   `koanf:"google"`
	LLM      LLMConfig      `koanf:"llm"`
	Mail     MailConfig     `koanf:"mail"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	BaseURL     string        `koanf:"base_url"`
	Environment string        `koanf:"environment"`
}

// DatabaseConfig holds the Postgres connection settings.
type DatabaseConfig struct {
	// DSN is the full Postgres connection string. Takes precedence over
	// the individual fields when set.
	DSN      string `koanf:"dsn"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"ssl_mode"`

	MaxOpenConns int `koanf:"max_open_conns"`
	MaxIdleConns int `koanf:"max_idle_conns"`
}

// ConnString returns the effective Postgres DSN.
func (c DatabaseConfig) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// RedisConfig holds the cache backend connection settings.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// CacheConfig tunes the assignment read-through cache.
// The key scheme and TTL are configuration values, not literals, so
// deployments can shorten the staleness window without a rebuild.
type CacheConfig struct {
	Enabled   bool          `koanf:"enabled"`
	KeyPrefix string        `koanf:"key_prefix"`
	TTL       time.Duration `koanf:"ttl"`
}

// GoogleConfig holds the OAuth client used for Classroom account linking.
type GoogleConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	RedirectURL  string `koanf:"redirect_url"`

	// ClassroomBaseURL and DriveUploadURL exist so tests can point the
	// client at an httptest server. Production leaves the defaults.
	ClassroomBaseURL string `koanf:"classroom_base_url"`
	DriveUploadURL   string `koanf:"drive_upload_url"`
}

// LLMConfig holds settings for the assignment-draft and detox-plan models.
type LLMConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	// DraftModel generates assignment responses.
	DraftModel string `koanf:"draft_model"`
	// ChatModel answers the detox-plan chat.
	ChatModel string `koanf:"chat_model"`
}

// MailConfig holds outbound email settings.
type MailConfig struct {
	SendGridAPIKey string `koanf:"sendgrid_api_key"`
	From           string `koanf:"from"`
	FromName       string `koanf:"from_name"`
}

// SecurityConfig holds session and rate limiting settings.
type SecurityConfig struct {
	SessionCookieName string        `koanf:"session_cookie_name"`
	SessionTTL        time.Duration `koanf:"session_ttl"`
	CookieSecure      bool          `koanf:"cookie_secure"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for values that would prevent startup.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Cache.KeyPrefix == "" {
		return fmt.Errorf("cache.key_prefix must not be empty")
	}
	if c.Security.SessionTTL <= 0 {
		return fmt.Errorf("security.session_ttl must be positive, got %s", c.Security.SessionTTL)
	}
	if c.Google.ClassroomBaseURL != "" {
		if _, err := url.Parse(c.Google.ClassroomBaseURL); err != nil {
			return fmt.Errorf("google.classroom_base_url is not a valid URL: %w", err)
		}
	}
	if env := c.Server.Environment; env != "" {
		switch strings.ToLower(env) {
		case "development", "production", "test":
		default:
			return fmt.Errorf("server.environment must be development, production or test, got %q", env)
		}
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}
