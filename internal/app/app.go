// Package app wires configuration, storage, authentication and the HTTP
// server together.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/drinks-api/internal/auth"
	"github.com/xenking/drinks-api/pkg/health"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("issuer", cfg.Auth.Issuer),
	)

	store, err := OpenStore(ctx, cfg.Storage)
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer store.Close()

	healthSvc := health.New()
	healthSvc.Add(health.Readiness, cfg.Storage.Driver, health.PingCheck(store), health.CheckOptions{
		Timeout: 5 * time.Second,
	})
	healthSvc.Add(health.Liveness, "goroutines", health.GoroutineCountCheck(10000), health.CheckOptions{})
	healthSvc.Start(ctx, 10*time.Second)
	defer healthSvc.Stop()

	// The key set lives as long as the server; keys are fetched on first use.
	authenticator := auth.New(ctx, cfg.Auth.Authenticator())

	h, err := NewHTTPHandler(cfg, Deps{
		Logger:     lg,
		Telemetry:  m,
		Drinks:     store.Drinks,
		Authorizer: authenticator,
		Health:     healthSvc,
	})
	if err != nil {
		return errors.Wrap(err, "create http handler")
	}
	server := newServer(cfg.Addr, h)
	healthSvc.SetReady(true)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		healthSvc.SetReady(false)
		if ctx.Err() != nil {
			lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
			time.Sleep(cfg.Graceful.ReadinessDelay)
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})
	return g.Wait()
}
