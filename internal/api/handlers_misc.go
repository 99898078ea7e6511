// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

package api

import (
	"net/http"
	"time"

	"github.com/classgo/classgo/internal/database"
	"github.com/classgo/classgo/internal/logging"
)

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Chat generates a detox plan from free-form user input. Public: the detox
// waitlist page offers the chat before signup.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req ChatRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	plan, err := s.generator.DetoxPlan(r.Context(), req.Input)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Detox plan generation failed")
		rw.Error(http.StatusBadGateway, ErrCodeUpstreamError, "Failed to generate response")
		return
	}

	rw.Success(map[string]string{"response": plan})
}

// Waitlist records a signup and sends a confirmation email. The email is
// best effort; a mail failure never fails the signup. Duplicate emails are
// absorbed so the endpoint stays idempotent for re-submits.
func (s *Server) Waitlist(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req WaitlistRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := s.store.CreateWaitlistSignup(r.Context(), &database.WaitlistSignup{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	if created && s.mailer != nil {
		if err := s.mailer.SendWaitlistConfirmation(req.Name, req.Email); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).
				Str("email", req.Email).
				Msg("Failed to send waitlist confirmation")
		}
	}

	rw.Success(map[string]interface{}{
		"message":       "You're on the list",
		"alreadyJoined": !created,
	})
}

// Health reports liveness of the process and its dependencies. The endpoint
// stays 200 with degraded checks rather than flapping the load balancer on a
// cache outage; only a database failure marks the whole service unhealthy.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    map[string]string{},
	}

	if err := s.store.Ping(r.Context()); err != nil {
		status.Status = "unhealthy"
		status.Checks["database"] = "down: " + err.Error()
	} else {
		status.Checks["database"] = "ok"
	}

	if s.cacheBack != nil {
		if err := s.cacheBack.Ping(r.Context()); err != nil {
			if status.Status == "healthy" {
				status.Status = "degraded"
			}
			status.Checks["cache"] = "down: " + err.Error()
		} else {
			status.Checks["cache"] = "ok"
		}
	} else {
		status.Checks["cache"] = "disabled"
	}

	code := http.StatusOK
	if status.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	rw.writeJSON(code, status)
}
