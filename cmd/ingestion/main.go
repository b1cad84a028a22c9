// Command ingestion starts the catalog document upload service.
//
// Documents arrive via POST /api/v1/documents, are validated by parsing them
// into a snapshot, stored in PostgreSQL and announced on the document-uploaded
// topic so that search replicas reload. Stored documents are listed by id at
// GET /api/v1/documents/{id}.
//
// Usage:
//
//	go run ./cmd/ingestion [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/catalog/store"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/ingestion/handler"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/ingestion/publisher"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/httpserver"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/postgres"
)

// main connects to PostgreSQL, ensures the documents table, creates the
// Kafka producer and serves the upload API until SIGINT/SIGTERM.
func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting ingestion service", "port", cfg.Server.Port, "max_document_bytes", cfg.Ingestion.MaxDocumentBytes)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	docs := store.New(db)
	if err := docs.EnsureSchema(ctx); err != nil {
		slog.Error("failed to prepare documents table", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to postgres")

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.DocumentUploaded)
	defer producer.Close()
	slog.Info("kafka producer initialized", "topic", cfg.Kafka.Topics.DocumentUploaded)

	m := metrics.New(nil)
	pub := publisher.New(docs, producer)
	h := handler.New(pub, docs, cfg.Ingestion.MaxDocumentBytes, m)

	checker := health.NewChecker()
	checker.Register("postgres", health.PingCheck(db.Ping))

	mux := http.NewServeMux()
	uploadLimit := middleware.RateLimit(middleware.NewRateLimiter(cfg.Ingestion.UploadsPerMinute, cfg.Ingestion.UploadBurst))
	mux.Handle("POST /api/v1/documents", uploadLimit(http.HandlerFunc(h.Upload)))
	mux.HandleFunc("GET /api/v1/documents/{id}", h.Get)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	chain := middleware.Metrics(m)(mux)
	chain = middleware.RequestID(chain)

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, "ingestion")
		defer shutdownMetrics(context.Background())
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	slog.Info("ingestion service listening", "addr", server.Addr)
	if err := httpserver.Run(ctx, server, cfg.Server.ShutdownTimeout); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("ingestion service stopped")
}
