// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router builds the full HTTP surface.
//
// Middleware order matters: request ID first so every later log line carries
// it, then access logging and metrics, then session authentication so route
// groups only need RequireAuth.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Session-Token"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Cache"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(s.sessions.Authenticate)

	r.Get("/health", s.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Credential endpoints get a tighter rate limit than the rest of
		// the API to slow down brute forcing.
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(s.cfg.Security.RateLimitReqs, s.cfg.Security.RateLimitWindow))
			r.Post("/auth/sign-up", s.SignUp)
			r.Post("/auth/sign-in", s.SignIn)
		})

		r.Post("/auth/sign-out", s.SignOut)

		// Public surface for the detox landing page.
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(30, time.Minute))
			r.Post("/chat", s.Chat)
			r.Post("/waitlist", s.Waitlist)
		})

		// Everything below requires a session.
		r.Group(func(r chi.Router) {
			r.Use(s.sessions.RequireAuth)

			r.Get("/auth/google/start", s.GoogleStart)
			r.Get("/auth/google/callback", s.GoogleCallback)
			r.Get("/user/status", s.UserStatus)

			r.Get("/assignments", s.ListAssignments)
			r.Route("/assignments/{assignmentId}", func(r chi.Router) {
				r.Post("/prepare", s.PrepareAssignment)
				r.Get("/save", s.GetSavedAssignment)
				r.Post("/save", s.SaveAssignment)
			})

			r.Route("/classroom/{courseId}", func(r chi.Router) {
				r.Get("/", s.ListCourseWork)
				r.Route("/assignments/{assignmentId}", func(r chi.Router) {
					r.Get("/", s.AssignmentDetail)
					r.Post("/submit", s.Submit)
					r.Get("/{submissionId}", s.GetSubmission)
					r.Post("/{submissionId}", s.Submit)
				})
			})
		})
	})

	return r
}
