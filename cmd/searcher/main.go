// Command searcher serves the user definition search API.
//
// The served snapshot comes from a document file (catalog.documentPath) or
// from the documents stored by the ingestion service. When Kafka is enabled
// the service reloads on every upload event and publishes search analytics.
//
// Usage:
//
//	go run ./cmd/searcher [-config configs/development.yaml]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/catalog/store"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/httpserver"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/redis"
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
	slog.Info("starting search service",
		"port", cfg.Server.Port,
		"category_limit", cfg.Search.CategoryLimit,
		"definition_limit", cfg.Search.DefinitionLimit,
		"content_limit", cfg.Search.ContentLimit,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(nil)
	checker := health.NewChecker()

	var docs *store.Store
	if cfg.Postgres.Enabled {
		db, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		docs = store.New(db)
		checker.Register("postgres", health.PingCheck(db.Ping))
		slog.Info("connected to postgres", "host", cfg.Postgres.Host)
	}

	initial, err := loadInitialSnapshot(ctx, cfg.Catalog, docs)
	if err != nil {
		slog.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}
	lib := catalog.NewLibrary(initial)
	cats, defs, content := initial.Len()
	slog.Info("catalog loaded",
		"fingerprint", initial.Fingerprint(),
		"categories", cats,
		"definitions", defs,
		"content", content,
	)
	checker.Register("catalog", func(ctx context.Context) health.ComponentHealth {
		c, d, _ := lib.Current().Len()
		if c+d == 0 {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "catalog is empty"}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d categories, %d definitions", c, d)}
	})

	eng := engine.New(cfg.Search,
		engine.WithBuilder(indexer.NewBuilder(indexer.WithRecorder(m))),
		engine.WithRecorder(m),
	)
	searcher := handler.NewSearcher(lib, eng)

	var queryCache *cache.QueryCache
	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, cfg.Search, cache.WithRecorder(m))
			checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
				if err := redisClient.Ping(ctx); err != nil {
					return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
				}
				return health.ComponentHealth{Status: health.StatusUp}
			})
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	var tracker handler.EventTracker
	if cfg.Kafka.Enabled {
		analyticsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		defer analyticsProducer.Close()
		collector := analytics.NewCollector(analyticsProducer, 10000)
		collector.Start(ctx)
		defer collector.Close()
		tracker = collector
		slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.AnalyticsEvents)

		if cfg.Catalog.ReloadOnUpload && docs != nil && cfg.Catalog.DocumentPath == "" {
			// Every replica must see every upload, so each one joins its own group.
			hostname, _ := os.Hostname()
			group := fmt.Sprintf("%s-searcher-%s", cfg.Kafka.ConsumerGroup, hostname)
			reload := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.DocumentUploaded, group, consumer.HandleMessage(lib, docs))
			defer reload.Close()
			go func() {
				if err := reload.Start(ctx); err != nil {
					slog.Error("reload consumer error", "error", err)
				}
			}()
			slog.Info("reload consumer started", "topic", cfg.Kafka.Topics.DocumentUploaded, "group", group)
		}
	}

	h := handler.New(searcher, queryCache, tracker, m)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/select", h.Select)
	mux.HandleFunc("GET /api/v1/tree", h.Tree)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	chain := middleware.Metrics(m)(mux)
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)
	chain = middleware.CORS(middleware.NewCORSConfig(cfg.Server.CORSOrigins))(chain)

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, "searcher")
		defer shutdownMetrics(context.Background())
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	slog.Info("search service listening", "addr", server.Addr)
	if err := httpserver.Run(ctx, server, cfg.Server.ShutdownTimeout); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}

// loadInitialSnapshot prefers the configured file, then the stored document.
// A store without documents yet starts the service on an empty catalog.
func loadInitialSnapshot(ctx context.Context, cfg config.CatalogConfig, docs *store.Store) (*catalog.Snapshot, error) {
	if cfg.DocumentPath != "" {
		return catalog.ParseFile(cfg.DocumentPath)
	}
	if docs == nil {
		slog.Warn("no catalog source configured, serving an empty catalog")
		return catalog.Empty(), nil
	}
	snap, err := docs.LoadSnapshot(ctx, cfg.DocumentID)
	if errors.Is(err, apperrors.ErrDocumentNotFound) && cfg.DocumentID == "" {
		slog.Warn("no documents uploaded yet, serving an empty catalog")
		return catalog.Empty(), nil
	}
	return snap, err
}
