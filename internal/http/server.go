package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"spendscan/internal/log"
	"spendscan/internal/middleware/ratelimit"
	"spendscan/internal/middleware/security"
	"spendscan/internal/middleware/trace"
	"spendscan/internal/services"
)

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Addr               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	RateLimitPerMinute int
	BlockSuspicious    bool
}

// DefaultServerConfig returns sensible defaults
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:               ":8080",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       30 * time.Second,
		IdleTimeout:        60 * time.Second,
		RateLimitPerMinute: 60,
	}
}

type Server struct {
	http.Server
	service     *services.ExpenseService
	logger      *log.Logger
	structured  *log.StructuredLogger
	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg ServerConfig, svc *services.ExpenseService, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	httpLogger := logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		service:     svc,
		logger:      httpLogger,
		structured:  log.NewStructuredLogger(httpLogger),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		detector:    security.NewDetector(),
		started:     time.Now(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, httpLogger)

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited,
		http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete)(handler)
	handler = s.detector.Middleware(cfg.BlockSuspicious)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = log.RequestIDMiddleware(trace.RequestIDFromRequest)(handler)
	handler = s.tracer.Middleware(handler)
	handler = log.Middleware(httpLogger)(handler)

	s.Server = http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/receipts/parse", s.handleParseReceipt)
	mux.HandleFunc("POST /api/receipts/scan", s.handleScanReceipt)
	mux.HandleFunc("GET /api/drafts", s.handleListDrafts)
	mux.HandleFunc("POST /api/drafts/{id}/confirm", s.handleConfirmDraft)
	mux.HandleFunc("DELETE /api/drafts/{id}", s.handleDiscardDraft)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("PATCH /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /api/expenses.csv", s.handleExportCSV)

	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/budgets", s.handleBudgets)
	mux.HandleFunc("PUT /api/profile/income", s.handleSetIncome)
	mux.HandleFunc("PUT /api/profile/allocations/{category}", s.handleSetAllocation)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/reports", s.handleReport)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
}

// Shutdown gracefully shuts down the server and its background routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
