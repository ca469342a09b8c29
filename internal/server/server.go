// Package server exposes the advisor over HTTP.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Mayconxzdev/automation-advisor/internal/advisor"
	"github.com/Mayconxzdev/automation-advisor/internal/analytics"
	"github.com/Mayconxzdev/automation-advisor/internal/auth"
	"github.com/Mayconxzdev/automation-advisor/internal/config"
	"github.com/Mayconxzdev/automation-advisor/internal/store"
)

// Server bundles the HTTP handlers and their dependencies.
type Server struct {
	store     store.Store
	advisor   *advisor.Advisor
	auth      *auth.Service
	analytics *analytics.Service
	cfg       *config.Config
}

// New creates a Server.
func New(cfg *config.Config, st store.Store, adv *advisor.Advisor, authSvc *auth.Service, an *analytics.Service) *Server {
	return &Server{
		store:     st,
		advisor:   adv,
		auth:      authSvc,
		analytics: an,
		cfg:       cfg,
	}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(logRequests)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		// Everything below requires a session.
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/status", s.handleStatus)
			r.Get("/me", s.handleMe)

			r.Post("/generate-recommendations", s.handleGenerate)
			r.Get("/user/recommendations", s.handleListRecommendations)
			r.Get("/user/recommendations/{id}", s.handleGetRecommendation)
			r.Delete("/recommendations/{id}", s.handleDeleteRecommendation)
			r.Delete("/recommendations/clear-all", s.handleClearRecommendations)

			r.Get("/projects", s.handleListProjects)
			r.Post("/projects", s.handleCreateProject)
			r.Get("/projects/{id}", s.handleGetProject)
			r.Put("/projects/{id}", s.handleUpdateProject)
			r.Delete("/projects/{id}", s.handleDeleteProject)
			r.Get("/projects/{id}/comments", s.handleListComments)
			r.Post("/projects/{id}/comments", s.handleAddComment)

			r.Get("/tags", s.handleListTags)

			r.Get("/flows", s.handleListFlows)
			r.Post("/flows", s.handleCreateFlow)
			r.Get("/flows/{id}", s.handleGetFlow)
			r.Put("/flows/{id}", s.handleUpdateFlow)
			r.Delete("/flows/{id}", s.handleDeleteFlow)

			r.Get("/analytics", s.handleAnalytics)
			r.Get("/analytics/roi", s.handleROIAnalytics)
			r.Get("/export/projects.xlsx", s.handleExportProjects)
			r.Get("/export/roi.xlsx", s.handleExportROI)
		})
	})

	return r
}
