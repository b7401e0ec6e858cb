// Package server provides the HTTP API over the detection, execution, and
// comparison services.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"crossarb/internal/server/handler"
	"crossarb/internal/server/middleware"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health    *handler.HealthHandler
	Prices    *handler.PriceHandler
	Arbitrage *handler.ArbitrageHandler
	Exchanges *handler.ExchangeHandler
	Compare   *handler.CompareHandler
}

// Server is the headless HTTP API server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux
// and the logging and CORS middleware applied.
func NewServer(cfg Config, handlers Handlers, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	mux.HandleFunc("GET /api/prices/live", handlers.Prices.Live)
	mux.HandleFunc("GET /api/prices/latest", handlers.Prices.Latest)
	mux.HandleFunc("POST /api/prices/update", handlers.Prices.Update)

	mux.HandleFunc("POST /api/arbitrage/detect", handlers.Arbitrage.Detect)
	mux.HandleFunc("GET /api/arbitrage/opportunities", handlers.Arbitrage.ListOpportunities)
	mux.HandleFunc("GET /api/arbitrage/opportunities/{id}", handlers.Arbitrage.GetOpportunity)
	mux.HandleFunc("POST /api/arbitrage/opportunities/{id}/execute", handlers.Arbitrage.Execute)
	mux.HandleFunc("GET /api/arbitrage/opportunities/{id}/trades", handlers.Arbitrage.ListTrades)

	mux.HandleFunc("GET /api/exchanges", handlers.Exchanges.List)
	mux.HandleFunc("GET /api/exchanges/health", handlers.Exchanges.Health)
	mux.HandleFunc("GET /api/exchanges/{exchange}/health", handlers.Exchanges.HealthOne)

	mux.HandleFunc("GET /api/compare", handlers.Compare.Compare)

	var h http.Handler = mux
	h = middleware.Logging(logger)(h)
	h = corsMiddleware(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// corsMiddleware returns middleware that sets CORS headers for the allowed
// origins. If no origins are specified, it defaults to allowing all origins.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin != "" {
				allowed := len(allowedOrigins) == 0 // allow all if none specified
				for _, o := range allowedOrigins {
					if strings.EqualFold(o, "*") || strings.EqualFold(o, origin) {
						allowed = true
						break
					}
				}

				if allowed {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
					w.Header().Set("Access-Control-Max-Age", "86400")
				}
			}

			// Handle preflight requests.
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
