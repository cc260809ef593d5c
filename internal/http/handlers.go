package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"zaman/internal/log"
)

// appMetrics counts domain operations for /metrics.
type appMetrics struct {
	uptime          time.Time
	chatRequests    atomic.Int64
	upstreamErrors  atomic.Int64
	goalsPlanned    atomic.Int64
	importsTotal    atomic.Int64
	importFailures  atomic.Int64
	eventsTracked   atomic.Int64
	simulationsRun  atomic.Int64
	salaryPlansSeen atomic.Int64
}

func newAppMetrics() *appMetrics {
	return &appMetrics{uptime: time.Now()}
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	OK(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	}).Write(w)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.deps.Ready != nil {
		if err := s.deps.Ready.Ping(ctx); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			checks["storage"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["storage"] = "ok"
		}
	} else {
		checks["storage"] = "ok"
	}

	if s.deps.Catalog != nil {
		if products, err := s.deps.Catalog.Products(ctx); err != nil {
			checks["catalog"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["catalog"] = map[string]any{"status": "ok", "products": len(products)}
		}
	}

	if s.deps.Assistant != nil {
		checks["assistant"] = "ok"
	} else {
		checks["assistant"] = "not_configured"
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	NewJSONResponse().
		Status(httpStatus).
		Body(map[string]any{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"checks":    checks,
		}).
		Write(w)
}

// handleMetrics writes application and security metrics in Prometheus text
// format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()
	m := s.appMetrics

	w.WriteHeader(http.StatusOK)

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
		fmt.Fprintf(w, "%s %v\n\n", name, value)
	}

	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "counter", "HTTP responses with a 5xx status", traceMetrics.ServerErrors)
	metric("http_request_duration_avg_microseconds", "gauge", "Average request duration", traceMetrics.AverageResponseTime)
	metric("chat_requests_total", "counter", "Chat requests answered", m.chatRequests.Load())
	metric("llm_upstream_errors_total", "counter", "Chat requests that failed upstream", m.upstreamErrors.Load())
	metric("goals_planned_total", "counter", "Goal plans computed", m.goalsPlanned.Load())
	metric("salary_plans_total", "counter", "Salary plans calculated or saved", m.salaryPlansSeen.Load())
	metric("investment_simulations_total", "counter", "Investment simulations run", m.simulationsRun.Load())
	metric("statement_imports_total", "counter", "Statement files imported", m.importsTotal.Load())
	metric("statement_import_failures_total", "counter", "Statement files rejected", m.importFailures.Load())
	metric("telemetry_events_total", "counter", "Telemetry events recorded through the API", m.eventsTracked.Load())
	metric("rate_limit_hits_total", "counter", "Total rate limit hits", rateLimitMetrics.TotalHits)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	metric("suspicious_requests_total", "counter", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)
	metric("invalid_client_ip_total", "counter", "Requests with an unparsable client address", securityMetrics.InvalidIPAttempts)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", fmt.Sprintf("%.0f", time.Since(m.uptime).Seconds()))
}
