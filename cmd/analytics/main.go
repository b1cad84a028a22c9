// Command analytics starts the search analytics aggregation service.
//
// It consumes the search and selection events published by the searcher,
// aggregates them in memory (top queries, zero-result queries, most opened
// definitions, latency percentiles, cache hit rate) and exposes them at
// GET /api/v1/analytics.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/httpserver"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/middleware"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting analytics service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aggregator := analytics.NewAggregator()
	events := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, cfg.Kafka.ConsumerGroup+"-analytics", analytics.HandleEvent(aggregator))
	defer events.Close()

	var consumerStopped atomic.Bool
	go func() {
		if err := events.Start(ctx); err != nil {
			slog.Error("analytics consumer error", "error", err)
		}
		consumerStopped.Store(true)
	}()
	slog.Info("analytics consumer started", "topic", cfg.Kafka.Topics.AnalyticsEvents)

	checker := health.NewChecker()
	checker.Register("kafka", func(ctx context.Context) health.ComponentHealth {
		if consumerStopped.Load() {
			return health.ComponentHealth{Status: health.StatusDown, Message: "consumer stopped"}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: "consumer active"}
	})

	analyticsHandler := analytics.NewHandler(aggregator)
	m := metrics.New(nil)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analytics", analyticsHandler.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	chain := middleware.Metrics(m)(mux)
	chain = middleware.RequestID(chain)

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, "analytics")
		defer shutdownMetrics(context.Background())
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := httpserver.Run(ctx, server, cfg.Server.ShutdownTimeout); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("analytics service stopped")
}
