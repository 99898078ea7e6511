// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/classgo/config.yaml",
	"/etc/classgo/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// Defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        3000,
			Timeout:     30 * time.Second,
			BaseURL:     "http://localhost:3000",
			Environment: "development",
		},
		Database: DatabaseConfig{
			Host:    "127.0.0.1",
			Port:    5432,
			User:    "classgo",
			Name:    "classgo",
			SSLMode: "disable",

			MaxOpenConns: 25,
			MaxIdleConns: 5,
		},
		Redis: RedisConfig{
			Addr: "127.0.0.1:6379",
			DB:   0,
		},
		Cache: CacheConfig{
			Enabled:   true,
			KeyPrefix: "assignments:user:",
			TTL:       6 * time.Hour, // 21600s, matches the documented staleness window
		},
		Google: GoogleConfig{
			ClassroomBaseURL: "https://classroom.googleapis.com/v1",
			DriveUploadURL:   "https://www.googleapis.com/upload/drive/v3/files",
		},
		LLM: LLMConfig{
			DraftModel: "gpt-4.1",
			ChatModel:  "gpt-4.1",
		},
		Mail: MailConfig{
			FromName: "ClassGo",
		},
		Security: SecurityConfig{
			SessionCookieName: "classgo_session",
			SessionTTL:        24 * time.Hour,
			CookieSecure:      true,
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in values
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: override any setting
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Env vars come in as strings; split known slice fields on commas.
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from the YAML file)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped variables are skipped so random environment variables do not
// pollute the configuration.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server
		"http_host":    "server.host",
		"http_port":    "server.port",
		"http_timeout": "server.timeout",
		"base_url":     "server.base_url",
		"environment":  "server.environment",

		// Database
		"database_url":      "database.dsn",
		"postgres_host":     "database.host",
		"postgres_port":     "database.port",
		"postgres_user":     "database.user",
		"postgres_password": "database.password",
		"postgres_db":       "database.name",
		"postgres_ssl_mode": "database.ssl_mode",

		// Redis / cache
		"redis_addr":       "redis.addr",
		"redis_password":   "redis.password",
		"redis_db":         "redis.db",
		"cache_enabled":    "cache.enabled",
		"cache_key_prefix": "cache.key_prefix",
		"cache_ttl":        "cache.ttl",

		// Google OAuth + API endpoints
		"google_client_id":     "google.client_id",
		"google_client_secret": "google.client_secret",
		"google_redirect_url":  "google.redirect_url",
		"classroom_base_url":   "google.classroom_base_url",
		"drive_upload_url":     "google.drive_upload_url",

		// LLM
		"llm_api_key":     "llm.api_key",
		"llm_base_url":    "llm.base_url",
		"llm_draft_model": "llm.draft_model",
		"llm_chat_model":  "llm.chat_model",

		// Mail
		"sendgrid_api_key": "mail.sendgrid_api_key",
		"email_from":       "mail.from",
		"email_from_name":  "mail.from_name",

		// Security
		"session_cookie_name": "security.session_cookie_name",
		"session_ttl":         "security.session_ttl",
		"cookie_secure":       "security.cookie_secure",
		"rate_limit_requests": "security.rate_limit_reqs",
		"rate_limit_window":   "security.rate_limit_window",
		"cors_origins":        "security.cors_origins",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
