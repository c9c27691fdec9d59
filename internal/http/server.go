package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"demowallet/internal/cache"
	"demowallet/internal/log"
	"demowallet/internal/middleware/ratelimit"
	"demowallet/internal/middleware/security"
	"demowallet/internal/middleware/trace"
	"demowallet/internal/wallet"
)

// SessionCookie names the cookie holding the session ID.
const SessionCookie = "wallet_session"

// InsightStatus reports the state of the insight client's circuit breaker.
type InsightStatus interface {
	State() string
}

// Config holds server settings taken from the process configuration.
type Config struct {
	Addr               string
	TrustedProxies     []string
	RateLimitPerMinute int
	// InsightConfigured is false when no API key is set.
	InsightConfigured bool
}

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Wallet   *wallet.Service
	Sessions *wallet.Store
	Caches   *cache.Manager
	Insights InsightStatus
	Logger   *log.Logger
}

type Server struct {
	http.Server
	wallet   *wallet.Service
	sessions *wallet.Store
	caches   *cache.Manager
	insights InsightStatus
	logger   *log.Logger

	insightConfigured bool

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	uptime        time.Time
	deposits      atomic.Int64
	withdrawals   atomic.Int64
	rejectedTx    atomic.Int64
	loginFailures atomic.Int64
	insights      atomic.Int64
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(cfg Config, deps Deps) (*Server, error) {
	if deps.Wallet == nil || deps.Sessions == nil {
		return nil, fmt.Errorf("wallet service and session store are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}

	detector := security.NewDetector()
	for _, cidr := range cfg.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			return nil, fmt.Errorf("trusted proxy: %w", err)
		}
	}

	s := &Server{
		wallet:            deps.Wallet,
		sessions:          deps.Sessions,
		caches:            deps.Caches,
		insights:          deps.Insights,
		logger:            logger.WithComponent(log.ComponentHTTP),
		insightConfigured: cfg.InsightConfigured,
		rateLimiter:       ratelimit.NewLimiter(ratelimit.Config{RequestsPerWindow: cfg.RateLimitPerMinute, Window: time.Minute}),
		securityDetector:  detector,
		traceMiddleware:   trace.NewMiddleware(logger, detector.ExtractClientIP),
		appMetrics:        &appMetrics{uptime: time.Now()},
	}

	mux := http.NewServeMux()
	limited := s.rateLimiter.Middleware(detector.ExtractClientIP, s.handleRateLimited)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/accounts", s.handleAccounts)
	mux.Handle("POST /api/login", limited(http.HandlerFunc(s.handleLogin)))
	mux.Handle("POST /api/logout", limited(http.HandlerFunc(s.handleLogout)))
	mux.Handle("POST /api/home", limited(http.HandlerFunc(s.handleHome)))
	mux.Handle("POST /api/accounts/{id}/select", limited(http.HandlerFunc(s.handleSelectAccount)))
	mux.Handle("POST /api/navigate", limited(http.HandlerFunc(s.handleNavigate)))
	mux.Handle("POST /api/input", limited(http.HandlerFunc(s.handleInput)))
	mux.Handle("POST /api/deposit", limited(http.HandlerFunc(s.handleDeposit)))
	mux.Handle("POST /api/withdraw", limited(http.HandlerFunc(s.handleWithdraw)))
	mux.Handle("POST /api/insight", limited(http.HandlerFunc(s.handleInsight)))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var handler http.Handler = mux
	handler = detector.Middleware(false)(handler)
	handler = headers.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		if s.caches != nil {
			s.caches.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// session returns the caller's session, creating one and setting the cookie
// when the request carries no live session.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*wallet.Session, *http.Request) {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}

	sess, created := s.sessions.Lookup(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
	}

	logger := log.FromContext(r.Context()).With(log.FieldSessionID, sess.ID)
	return sess, r.WithContext(log.NewContext(r.Context(), logger))
}
