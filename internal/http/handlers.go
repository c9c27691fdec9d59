package http

import (
	"fmt"
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	})
}

// handleReady reports readiness. The wallet keeps working without the
// insight service, so an open breaker or missing key only marks it degraded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	checks := make(map[string]any)

	checks["sessions"] = map[string]any{
		"active": s.sessions.Len(),
		"status": "ok",
	}

	insightCheck := map[string]any{"configured": s.insightConfigured}
	switch {
	case !s.insightConfigured:
		insightCheck["status"] = "not_configured"
		status = "degraded"
	case s.insights == nil:
		insightCheck["status"] = "unknown"
	default:
		state := s.insights.State()
		insightCheck["breaker"] = state
		insightCheck["status"] = "ok"
		if state == "open" {
			insightCheck["status"] = "unavailable"
			status = "degraded"
		}
	}
	checks["insight"] = insightCheck

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()

	breakerOpen := 0
	if s.insights != nil && s.insights.State() == "open" {
		breakerOpen = 1
	}

	w.WriteHeader(http.StatusOK)

	metric := func(name, help, kind string, samples ...string) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
		for _, sample := range samples {
			fmt.Fprintln(w, sample)
		}
		fmt.Fprintln(w)
	}

	metric("http_requests_total", "Total number of HTTP requests", "counter",
		fmt.Sprintf("http_requests_total %d", traceMetrics.TotalRequests))
	metric("http_requests_in_flight", "HTTP requests currently being served", "gauge",
		fmt.Sprintf("http_requests_in_flight %d", traceMetrics.InFlightRequests))
	metric("http_server_errors_total", "Responses with a 5xx status", "counter",
		fmt.Sprintf("http_server_errors_total %d", traceMetrics.ServerErrors))
	metric("wallet_sessions", "Live wallet sessions", "gauge",
		fmt.Sprintf("wallet_sessions %d", s.sessions.Len()))
	metric("wallet_transactions_total", "Completed transactions", "counter",
		fmt.Sprintf("wallet_transactions_total{kind=\"deposit\"} %d", s.appMetrics.deposits.Load()),
		fmt.Sprintf("wallet_transactions_total{kind=\"withdraw\"} %d", s.appMetrics.withdrawals.Load()))
	metric("wallet_transactions_rejected_total", "Rejected deposits and withdrawals", "counter",
		fmt.Sprintf("wallet_transactions_rejected_total %d", s.appMetrics.rejectedTx.Load()))
	metric("wallet_login_failures_total", "Failed login attempts", "counter",
		fmt.Sprintf("wallet_login_failures_total %d", s.appMetrics.loginFailures.Load()))
	metric("insight_requests_total", "Insight requests accepted", "counter",
		fmt.Sprintf("insight_requests_total %d", s.appMetrics.insights.Load()))
	metric("insight_breaker_open", "1 when the insight circuit breaker is open", "gauge",
		fmt.Sprintf("insight_breaker_open %d", breakerOpen))
	metric("rate_limit_hits_total", "Total rate limit hits", "counter",
		fmt.Sprintf("rate_limit_hits_total %d", rateLimitMetrics.TotalHits))
	metric("active_rate_limit_clients", "Currently tracked rate limit clients", "gauge",
		fmt.Sprintf("active_rate_limit_clients %d", rateLimitMetrics.ClientCount))
	metric("suspicious_requests_total", "Total suspicious requests detected", "counter",
		fmt.Sprintf("suspicious_requests_total %d", securityMetrics.SuspiciousRequests))
	metric("uptime_seconds", "Application uptime in seconds", "gauge",
		fmt.Sprintf("uptime_seconds %.0f", time.Since(s.appMetrics.uptime).Seconds()))
}
