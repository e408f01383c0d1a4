package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/groovi/internal/bootstrap"
	"github.com/ewilliams-labs/groovi/internal/config"
	"github.com/ewilliams-labs/groovi/internal/logger"
	"github.com/ewilliams-labs/groovi/internal/tracer"
)

// healthChecker is the slice of the backend client used at startup.
type healthChecker interface {
	Health(ctx context.Context) error
	BaseURL() string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "groovi: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Configuration
	cfg := config.Load()

	log := logger.New(logger.Options{
		FilePath:   cfg.App.LogFilePath,
		Production: cfg.App.IsProduction(),
	})
	defer func() { _ = log.Sync() }()
	if !cfg.EnvFile {
		log.Debug("config: .env file not found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer := tracer.Init(ctx, cfg.Tracing.Enabled, cfg.Tracing.Endpoint, log)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			log.Warn("tracer: shutdown failed", zap.Error(err))
		}
	}()

	// 2. Wiring
	app, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn("shutdown: failed to close app", zap.Error(err))
		}
	}()

	// 3. Backend reachability is advisory; requests surface their own errors.
	if err := waitForBackend(ctx, app.Backend, cfg.Backend.StartupWait, 500*time.Millisecond); err != nil {
		log.Warn("startup: backend not reachable, continuing anyway", zap.Error(err))
	} else {
		log.Info("startup: backend health check passed", zap.String("url", app.Backend.BaseURL()))
	}

	// 4. Playback device
	if app.PlaybackEnabled {
		app.Device.Init(ctx)
	}

	// 5. Serve
	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           app.Handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("startup: groovi is running", zap.String("addr", "http://localhost:"+cfg.App.Port))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		log.Info("shutdown: stopping server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown: server shutdown error", zap.Error(err))
		}
		if app.PlaybackEnabled && !awaitClosed(app.Device.Done(), 5*time.Second) {
			log.Warn("shutdown: player connection did not close in time")
		}
	}
	return nil
}

// awaitClosed reports whether done closed within timeout.
func awaitClosed(done <-chan struct{}, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

// waitForBackend polls the backend health endpoint until it responds, the
// timeout passes, or ctx is done.
func waitForBackend(ctx context.Context, backend healthChecker, timeout, interval time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		if lastErr = backend.Health(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("backend %s not available after %v: %w", backend.BaseURL(), timeout, lastErr)
		case <-ticker.C:
		}
	}
}
