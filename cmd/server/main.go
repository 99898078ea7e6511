// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

// Package main is the entry point for the ClassGo server.
//
// ClassGo is a Google Classroom assignment assistant. It links a user's
// Google account, lists their courses and assignments through a Redis
// read-through cache, generates AI draft responses for assignments, and
// submits finished work back to Classroom (Drive upload, attach, turn in).
//
// The server initializes components in the following order:
//
//  1. Configuration: layered env vars, config file, defaults (Koanf v2)
//  2. Logging: zerolog global logger
//  3. Database: PostgreSQL via GORM, schema migrated at startup
//  4. Cache: Redis backend for the assignment listing cache
//  5. Sessions: in-memory session store with background expiry sweeps
//  6. Upstreams: Classroom/Drive client (circuit breaker), OpenAI, SendGrid
//  7. HTTP server: Chi router with graceful shutdown on SIGINT/SIGTERM
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/classgo/classgo/internal/api"
	"github.com/classgo/classgo/internal/auth"
	"github.com/classgo/classgo/internal/cache"
	"github.com/classgo/classgo/internal/classroom"
	"github.com/classgo/classgo/internal/config"
	"github.com/classgo/classgo/internal/database"
	"github.com/classgo/classgo/internal/genai"
	"github.com/classgo/classgo/internal/logging"
	"github.com/classgo/classgo/internal/mailer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Default logger; config not yet available.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Bool("cache_enabled", cfg.Cache.Enabled).
		Msg("Starting ClassGo")

	store, err := database.Open(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	var backend cache.Backend
	if cfg.Cache.Enabled {
		redisBackend := cache.NewRedisBackend(cfg.Redis)
		if err := redisBackend.Ping(context.Background()); err != nil {
			logging.Warn().Err(err).Msg("Redis unreachable at startup; listings will fall through to Classroom")
		}
		defer func() {
			if err := redisBackend.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing Redis connection")
			}
		}()
		backend = redisBackend
	} else {
		logging.Info().Msg("Assignment cache disabled")
	}
	assignmentCache := cache.NewAssignmentCache(backend, cfg.Cache)

	sessionStore := auth.NewMemorySessionStore()
	sessionCfg := auth.DefaultSessionMiddlewareConfig()
	sessionCfg.CookieName = cfg.Security.SessionCookieName
	sessionCfg.SessionTTL = cfg.Security.SessionTTL
	sessionCfg.CookieSecure = cfg.Security.CookieSecure
	sessions := auth.NewSessionMiddleware(sessionStore, sessionCfg)

	stopCleanup := sessionStore.StartCleanupRoutine(10 * time.Minute)
	defer close(stopCleanup)

	var mail mailer.Mailer = mailer.NopMailer{}
	if cfg.Mail.SendGridAPIKey != "" {
		mail = mailer.NewSendGridMailer(cfg.Mail)
	} else {
		logging.Warn().Msg("SendGrid API key not configured; waitlist emails disabled")
	}

	server := api.NewServer(cfg, api.Deps{
		Store:        store,
		Sessions:     sessions,
		Linker:       auth.NewGoogleLinker(cfg.Google),
		Classroom:    classroom.NewClient(cfg.Google),
		Cache:        assignmentCache,
		CacheBackend: backend,
		Generator:    genai.NewGenerator(cfg.LLM),
		Mailer:       mail,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}

	logging.Info().Msg("Application stopped gracefully")
}
