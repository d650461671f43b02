package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Vodeneev/nbaprops/internal/pkg/health/handlers"
)

// NewRouter wires the status endpoints.
func NewRouter(h *handlers.Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/ping", h.HandlePing)
	r.Get("/health", h.HandleHealth)
	r.Get("/metrics", h.HandleMetrics)
	r.Get("/runs/last", h.HandleLastRun)
	r.Post("/parse", h.HandleParse)
	return r
}

// Run serves the status endpoints on addr until ctx is done. It returns once the listener
// is started; listen errors are logged.
func Run(ctx context.Context, addr string, h *handlers.Handlers, readHeaderTimeout time.Duration, logger *slog.Logger) error {
	if readHeaderTimeout <= 0 {
		return errors.New("read_header_timeout must be specified in config")
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(h),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		logger.Info("Health server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Health server error", "error", err)
		}
	}()
	return nil
}

// AddrFor returns the listen address for port.
func AddrFor(port int) (string, error) {
	if port <= 0 {
		return "", fmt.Errorf("port must be greater than 0, got %d", port)
	}
	return fmt.Sprintf(":%d", port), nil
}
