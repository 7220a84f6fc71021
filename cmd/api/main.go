package main

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/homequote/homequote/internal/api/router"
	"github.com/homequote/homequote/internal/catalog"
	"github.com/homequote/homequote/internal/chat"
	appconfig "github.com/homequote/homequote/internal/config"
	"github.com/homequote/homequote/internal/leads"
	"github.com/homequote/homequote/internal/observability/metrics"
	"github.com/homequote/homequote/internal/session"
	"github.com/homequote/homequote/pkg/logging"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting homequote API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	c, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		logger.Error("failed to load service catalog", "error", err, "path", cfg.CatalogPath)
		os.Exit(1)
	}
	logger.Info("service catalog loaded", "services", c.Len())

	reg := prometheus.NewRegistry()
	estimatorMetrics := metrics.NewEstimatorMetrics(reg)
	metricsHandler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	sessions := buildSessionStore(cfg, logger)
	leadRepo := buildLeadRepository(context.Background(), cfg, logger)

	chatService := chat.NewService(c, sessions, leadRepo, estimatorMetrics, logger, chat.Config{
		ProcessingDelay:    cfg.ProcessingDelay,
		VisualizationDelay: cfg.VisualizationDelay,
	})

	r := router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        chat.NewChatHandler(chatService, logger),
		LeadsHandler:       leads.NewHandler(leadRepo, logger),
		MetricsHandler:     metricsHandler,
		MetricsSummary:     metrics.SummaryHandler(reg),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ChatRatePerSecond:  5,
		ChatRateBurst:      20,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// loadCatalog reads an external catalog file when configured, otherwise
// the embedded one.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

// buildSessionStore picks Redis when configured and an in-memory store
// otherwise. Without Redis, sessions do not survive a restart.
func buildSessionStore(cfg *appconfig.Config, logger *logging.Logger) session.Store {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, using in-memory session store")
		return session.NewInMemoryStore()
	}

	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	logger.Info("using redis session store", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL)
	return session.NewRedisStore(client, nil, cfg.SessionTTL)
}

// buildLeadRepository picks Postgres when configured and an in-memory
// repository otherwise.
func buildLeadRepository(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) leads.Repository {
	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool == nil {
		logger.Warn("DATABASE_URL not set, using in-memory lead repository")
		return leads.NewInMemoryRepository()
	}
	return leads.NewPostgresRepository(pool)
}

func connectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if databaseURL == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		os.Exit(1)
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to ping postgres", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to postgres")
	return pool
}
