// Package http serves the JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finwise/internal/cache"
	"finwise/internal/report"
	"finwise/internal/services"
	"finwise/internal/storage"
)

type Server struct {
	http.Server

	repo       *storage.Repository
	txService  *services.TransactionService
	aggregator *report.Aggregator

	reportingCurrency string

	rateLimiter *rateLimiter

	// summaryCache memoizes the all-time dashboard summary per user. Any
	// transaction write for a user invalidates their entry.
	summaryCache *cache.LRU[int64, summaryResponse]

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, repo *storage.Repository, txService *services.TransactionService, rates report.RateSource, reportingCurrency string) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		repo:              repo,
		txService:         txService,
		aggregator:        report.NewAggregator(rates),
		reportingCurrency: reportingCurrency,
		rateLimiter:       newRateLimiter(),
		summaryCache:      cache.NewLRU[int64, summaryResponse](1000, 5*time.Minute),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/transactions", s.withMiddleware(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", s.withMiddleware(s.handleListTransactions))
	mux.HandleFunc("GET /api/transactions/recurring/upcoming", s.withMiddleware(s.handleUpcomingRecurring))
	mux.HandleFunc("GET /api/transactions/{id}", s.withMiddleware(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withMiddleware(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withMiddleware(s.handleDeleteTransaction))

	mux.HandleFunc("POST /api/goals", s.withMiddleware(s.handleCreateGoal))
	mux.HandleFunc("GET /api/goals", s.withMiddleware(s.handleListGoals))
	mux.HandleFunc("GET /api/goals/{id}", s.withMiddleware(s.handleGetGoal))
	mux.HandleFunc("PUT /api/goals/{id}", s.withMiddleware(s.handleUpdateGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", s.withMiddleware(s.handleDeleteGoal))

	mux.HandleFunc("POST /api/budgets", s.withMiddleware(s.handleCreateBudget))
	mux.HandleFunc("GET /api/budgets", s.withMiddleware(s.handleListBudgets))
	mux.HandleFunc("GET /api/budgets/{id}", s.withMiddleware(s.handleGetBudget))
	mux.HandleFunc("PUT /api/budgets/{id}", s.withMiddleware(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.withMiddleware(s.handleDeleteBudget))

	mux.HandleFunc("POST /api/payments", s.withMiddleware(s.handleCreatePayment))
	mux.HandleFunc("GET /api/payments", s.withMiddleware(s.handleListPayments))
	mux.HandleFunc("GET /api/payments/{id}", s.withMiddleware(s.handleGetPayment))
	mux.HandleFunc("PUT /api/payments/{id}", s.withMiddleware(s.handleUpdatePayment))
	mux.HandleFunc("DELETE /api/payments/{id}", s.withMiddleware(s.handleDeletePayment))

	mux.HandleFunc("GET /api/notifications", s.withMiddleware(s.handleListNotifications))

	mux.HandleFunc("GET /api/reporting/spending-trend-converted", s.withMiddleware(s.handleSpendingTrend))
	mux.HandleFunc("GET /api/reporting/spending-trend-converted/export", s.withMiddleware(s.handleTrendExport))
	mux.HandleFunc("GET /api/reporting/dashboard-summary-converted", s.withMiddleware(s.handleDashboardSummary))

	return s
}

// withMiddleware stamps a request ID, logs the request, applies rate
// limiting to mutating methods and sets security headers.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP,
				"method", r.Method,
				"url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type requestIDKey struct{}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Ready once the database answers.
	if _, err := s.repo.ListExpenseUserIDs(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database not ready", err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the rate limiter's cleanup goroutine along with the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
