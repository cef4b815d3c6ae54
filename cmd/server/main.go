package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/api"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/config"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/db"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/llm"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/logging"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/panel"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/session"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	store, err := db.Open(cfg.History.Driver, cfg.History.DSN)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}

	sessions := session.NewManager(store, cfg.Session.IdleTimeout, logger)
	panels := panel.NewSet(store, logger)

	opts := llm.Options{TextModel: cfg.Gemini.TextModel, ImageModel: cfg.Gemini.ImageModel}
	newClient := func(ctx context.Context, apiKey string) (session.Generator, error) {
		return llm.New(ctx, apiKey, opts, logger)
	}

	handler, err := api.NewHandler(sessions, panels, newClient, cfg.Session.CookieName, logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	handler.Register(mux)
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.Instrument(mux, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return sessions.Run(gctx, cfg.Session.SweepInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return multierr.Combine(
			srv.Shutdown(shutdownCtx),
			sessions.Shutdown(shutdownCtx),
			store.Close(),
			shutdownTracing(shutdownCtx),
		)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
