package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	httpadapter "github.com/couchcryptid/housing-affordability-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/housing-affordability-etl/internal/adapter/kafka"
	"github.com/couchcryptid/housing-affordability-etl/internal/adapter/source"
	"github.com/couchcryptid/housing-affordability-etl/internal/config"
	"github.com/couchcryptid/housing-affordability-etl/internal/observability"
	"github.com/couchcryptid/housing-affordability-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	loader := source.NewLoader(
		source.NewRouter(cfg.SourceTimeout, logger),
		cfg.PriceSource,
		cfg.SalarySource,
		source.OptionsFromConfig(cfg),
		logger,
	)
	transformer := pipeline.NewTransformer(logger)

	// Kafka sink is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var sink pipeline.BatchLoader
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		sink = writer
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka sink disabled")
	}

	p := pipeline.New(loader, transformer, sink, logger, metrics, cfg.RefreshInterval)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start refresh loop. With REFRESH_INTERVAL=0 it returns after the first
	// load and the service keeps serving that dataset.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
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
