package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds the database ping behind /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	if s.metricsHandler != nil {
		path := s.metricsPath
		if path == "" {
			path = "/metrics/prometheus"
		}
		r.Handle(path, s.metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// No auth: monitoring.
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/map", s.handleMap)

			r.Route("/people", func(r chi.Router) {
				r.Get("/", s.handleListPeople)
				r.Post("/", s.handleCreatePerson)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetPerson)
					r.Put("/", s.handleUpdatePerson)
					r.Delete("/", s.handleDeletePerson)
				})
			})

			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// handleHealth reports the server version, database reachability and the
// state of each optional subsystem. Only a failed database ping yields 503,
// since the people store is unusable without it. A failing subsystem marks
// the status degraded but keeps 200.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status, code := "ok", http.StatusOK

	dbStatus := "not_configured"
	if s.db != nil {
		dbStatus = s.checkSubsystem(ctx, "database", s.db)
		if dbStatus != "ok" {
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}

	body := map[string]any{
		"status":   status,
		"version":  s.version,
		"database": dbStatus,
	}

	if len(s.subsystems) > 0 {
		subs := make(map[string]string, len(s.subsystems))
		for name, checker := range s.subsystems {
			subs[name] = s.checkSubsystem(ctx, name, checker)
			if subs[name] != "ok" {
				status = "degraded"
			}
		}
		body["status"] = status
		body["subsystems"] = subs
	}

	writeJSON(w, code, body)
}

// checkSubsystem runs one health check and returns "ok" or "unavailable".
func (s *Server) checkSubsystem(ctx context.Context, name string, c HealthChecker) string {
	if err := c.HealthCheck(ctx); err != nil {
		s.logger.Warn("health check failed", "subsystem", name, "error", err)
		return "unavailable"
	}
	return "ok"
}
