// Package http serves a read-only JSON API over the local store: wallets,
// transactions, and monthly reports.
package http

import (
	"context"
	"net/http"
	"time"

	"inari/internal/core"
	"inari/internal/log"
	"inari/internal/middleware/trace"
	"inari/internal/services"
)

// Store is the read side of the store the API serves from.
type Store interface {
	services.ReportSource
	ListWallets(ctx context.Context, includeArchived bool) ([]core.Wallet, error)
}

type Server struct {
	http.Server
	store   Store
	reports *services.ReportBuilder
	clock   core.Clock
	tracer  *trace.Middleware
	logger  *log.Logger
}

// NewServer wires the routes. clock decides the default report period.
func NewServer(addr string, store Store, reports *services.ReportBuilder, clock core.Clock, logger *log.Logger) *Server {
	mux := http.NewServeMux()
	tracer := trace.NewMiddleware()
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           tracer.Middleware(withLogger(logger, withHeaders(mux))),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		store:   store,
		reports: reports,
		clock:   clock,
		tracer:  tracer,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /api/wallets", s.handleListWallets)
	mux.HandleFunc("GET /api/wallets/{id}", s.handleGetWallet)
	mux.HandleFunc("GET /api/wallets/{id}/categories", s.handleListCategories)
	mux.HandleFunc("GET /api/wallets/{id}/transactions", s.handleListTransactions)
	mux.HandleFunc("GET /api/wallets/{id}/report", s.handleReport)

	return s
}

// withLogger stores a logger tagged with the request ID in the request context.
func withLogger(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logger.With(log.FieldRequestID, trace.GetRequestID(r.Context()))
		next.ServeHTTP(w, r.WithContext(log.NewContext(r.Context(), reqLogger)))
	})
}

// withHeaders sets the headers every JSON response carries.
func withHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// Run serves until ctx is done, then shuts down within timeout.
func (s *Server) Run(ctx context.Context, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "HTTP server listening", "addr", s.Addr)
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	err := s.Shutdown(shutdownCtx)
	total, failed := s.tracer.Counts()
	s.logger.Info("HTTP server stopped", "requests", total, "server_errors", failed)
	return err
}
