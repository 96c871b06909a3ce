package internal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// RunOption configures the server runtime.
type RunOption func(*runtimeConfig)

// runtimeConfig holds configuration for running the HTTP server.
type runtimeConfig struct {
	logger          *slog.Logger
	shutdownTimeout time.Duration
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	baseCtx         context.Context
}

// RunLogger sets the logger used by the server runtime.
func RunLogger(log *slog.Logger) RunOption {
	return func(cfg *runtimeConfig) {
		cfg.logger = log
	}
}

// ShutdownTimeout sets the graceful shutdown deadline.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(cfg *runtimeConfig) {
		if d > 0 {
			cfg.shutdownTimeout = d
		}
	}
}

// WithStartupHook registers a function to run before the server accepts
// requests. A failing hook aborts startup.
func WithStartupHook(fn func(context.Context) error) RunOption {
	return func(cfg *runtimeConfig) {
		cfg.startupHooks = append(cfg.startupHooks, fn)
	}
}

// WithShutdownHook registers a cleanup function to run during graceful
// shutdown (close pools, stop janitors).
func WithShutdownHook(fn func(context.Context) error) RunOption {
	return func(cfg *runtimeConfig) {
		cfg.shutdownHooks = append(cfg.shutdownHooks, fn)
	}
}

// WithBaseContext sets the root context for the server lifecycle.
func WithBaseContext(ctx context.Context) RunOption {
	return func(cfg *runtimeConfig) {
		cfg.baseCtx = ctx
	}
}

// Run starts the HTTP server for the app and blocks until shutdown.
// The server handles SIGINT/SIGTERM for graceful shutdown.
//
// Example:
//
//	err := app.Run(":8080", gate.RunLogger(log))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := &runtimeConfig{shutdownTimeout: defaultShutdownTimeout}
	for _, opt := range opts {
		opt(cfg)
	}

	log := cfg.logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           a,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
	}

	baseCtx := cfg.baseCtx
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(baseCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	for _, hook := range cfg.startupHooks {
		if err := hook(ctx); err != nil {
			return err
		}
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer shutdownCancel()

	var errs []error
	if err := server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	for _, hook := range cfg.shutdownHooks {
		if err := hook(shutdownCtx); err != nil {
			errs = append(errs, err)
			log.Error("shutdown hook failed", slog.Any("error", err))
		}
	}

	if len(errs) > 0 {
		log.Error("shutdown completed with errors")
		return errors.Join(errs...)
	}

	log.Info("shutdown completed")
	return nil
}
