// Package api provides the HTTP server for Diabetree. It exposes the
// reading log, the progression engine, the shop, and the notification
// feed as a small REST API.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/diabetree-app/diabetree/internal/app/engine"
	"github.com/diabetree-app/diabetree/internal/app/notify"
	"github.com/diabetree-app/diabetree/internal/app/progression"
	"github.com/diabetree-app/diabetree/internal/health"
	"github.com/diabetree-app/diabetree/internal/infra/sqlite"
)

// Server is the Diabetree HTTP API server.
type Server struct {
	owner          string
	engine         *engine.Engine
	db             *sqlite.DB
	notifications  *notify.Service
	achievements   *progression.AchievementEvaluator
	missions       *progression.MissionRotator
	health         *health.Checker
	version        string
	metricsEnabled bool
}

// NewServer creates a new API server bound to one owner profile.
func NewServer(
	owner string,
	eng *engine.Engine,
	db *sqlite.DB,
	notifications *notify.Service,
	achievements *progression.AchievementEvaluator,
	missions *progression.MissionRotator,
	checker *health.Checker,
	version string,
) *Server {
	return &Server{
		owner:         owner,
		engine:        eng,
		db:            db,
		notifications: notifications,
		achievements:  achievements,
		missions:      missions,
		health:        checker,
		version:       version,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
		})

		r.Route("/readings", func(r chi.Router) {
			r.Post("/", s.handleAddReading)
			r.Get("/", s.handleListReadings)
			r.Delete("/", s.handleDeleteAllReadings)
			r.Delete("/{id}", s.handleDeleteReading)
		})

		r.Get("/progress", s.handleProgress)
		r.Get("/achievements", s.handleAchievements)
		r.Get("/mission", s.handleMission)

		r.Get("/shop", s.handleShop)
		r.Post("/shop/purchase", s.handlePurchase)
		r.Post("/collection/equip", s.handleEquip)

		r.Get("/notifications", s.handleNotifications)
		r.Post("/notifications/{id}/shown", s.handleNotificationShown)

		r.Post("/reset", s.handleReset)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	if s.health != nil && !s.health.IsHealthy() {
		status = http.StatusServiceUnavailable
	}
	body := map[string]interface{}{"status": "ok"}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	if s.health != nil {
		body["checks"] = s.health.Statuses()
	}
	writeJSON(w, status, body)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for the mobile client in development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
