package handler

import (
	"net/http"

	"github.com/IANDYI/maternal-dashboard-service/internal/adapters/middleware"
)

// Routes groups everything the HTTP router dispatches to
type Routes struct {
	Dashboard *DashboardHandler
	Health    *HealthHandler
	WebSocket *WebSocketHandler
	Auth      *middleware.AuthMiddleware
	Limiter   *middleware.RateLimiter
}

// NewRouter wires the dashboard API, probes and the alert feed onto a ServeMux
func NewRouter(rt Routes) http.Handler {
	mux := http.NewServeMux()

	// Health endpoints (OpenShift compatible, no auth required)
	mux.HandleFunc("GET /metrics", Metrics)
	mux.HandleFunc("GET /health", rt.Health.Health)
	mux.HandleFunc("GET /health/ready", rt.Health.Ready)
	mux.HandleFunc("GET /health/live", rt.Health.Live)

	// Dashboard API - staff roles only, rate limited per user
	staff := func(h http.HandlerFunc) http.HandlerFunc {
		return rt.Auth.RequireStaff(rt.Limiter.Limit(h))
	}
	mux.HandleFunc("GET /patients/{patient_id}/timeline", staff(rt.Dashboard.Timeline))
	mux.HandleFunc("GET /patients/{patient_id}/pregnancy-progress", staff(rt.Dashboard.PregnancyProgress))
	mux.HandleFunc("GET /follow-ups/calendar", staff(rt.Dashboard.Calendar))

	// Live alert feed - authenticates during the handshake
	if rt.WebSocket != nil {
		mux.HandleFunc("GET /ws/alerts", rt.WebSocket.HandleWebSocket)
	}

	return middleware.Recovery(middleware.RequestLogger(middleware.MetricsMiddleware(mux)))
}
