package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/waterbody-recon/internal/adapter/attains"
	"github.com/couchcryptid/waterbody-recon/internal/adapter/flow"
	httpadapter "github.com/couchcryptid/waterbody-recon/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/waterbody-recon/internal/adapter/kafka"
	"github.com/couchcryptid/waterbody-recon/internal/adapter/registry"
	"github.com/couchcryptid/waterbody-recon/internal/config"
	"github.com/couchcryptid/waterbody-recon/internal/observability"
	"github.com/couchcryptid/waterbody-recon/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	entries, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		logger.Error("failed to load registry", "error", err, "path", cfg.RegistryPath)
		os.Exit(1)
	}
	logger.Info("registry loaded", "waterbodies", len(entries))

	// Optional flow/EJ enrichment (feature-flagged via FLOW_ENABLED / FLOW_SCORES_PATH).
	enrichment := flow.Data{}
	if cfg.FlowEnabled {
		enrichment, err = flow.Load(cfg.FlowScoresPath, logger)
		if err != nil {
			logger.Error("failed to load enrichment data", "error", err, "path", cfg.FlowScoresPath)
			os.Exit(1)
		}
		metrics.FlowBlendEnabled.Set(1)
		logger.Info("flow enrichment enabled", "states", len(enrichment.FlowByState))
	} else {
		logger.Info("flow enrichment disabled")
	}

	client := attains.NewClient(cfg.AttainsBaseURL, cfg.AttainsTimeout, logger)
	source := attains.NewRetainingClient(client, logger)

	var publisher pipeline.SnapshotPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	p := pipeline.New(
		source, entries, enrichment.FlowByState, enrichment.EJByState, publisher,
		logger, metrics, cfg.PollInterval, cfg.PollMaxBackoff,
	)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start poll loop.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("poller error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
