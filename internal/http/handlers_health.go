package http

import (
	"context"
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks the store and reports request counters
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{}

	if err := s.service.Ping(ctx); err != nil {
		checks["storage"] = "failed: " + err.Error()
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}

	traceMetrics := s.tracer.GetMetrics()
	securityMetrics := s.detector.GetMetrics()
	checks["http"] = map[string]any{
		"requests":            traceMetrics.TotalRequests,
		"server_errors":       traceMetrics.ServerErrors,
		"rate_limited":        s.rateLimiter.Rejected(),
		"active_clients":      s.rateLimiter.ActiveClients(),
		"suspicious_requests": securityMetrics.SuspiciousRequests,
	}

	NewResponse().Status(code).JSON(map[string]any{
		"status": status,
		"checks": checks,
	}).Write(w)
}
