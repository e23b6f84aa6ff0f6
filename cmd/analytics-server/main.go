// cmd/analytics-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"recruitment-analytics/internal/aggregate"
	"recruitment-analytics/internal/common/config"
	"recruitment-analytics/internal/common/database"
	"recruitment-analytics/internal/common/logger"
	"recruitment-analytics/internal/common/observability"
	"recruitment-analytics/internal/dashboard"
	"recruitment-analytics/internal/dataset"
	"recruitment-analytics/internal/httpapi"
	"recruitment-analytics/internal/store"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting analytics server...",
		zap.String("dataset", cfg.Dataset.Path),
		zap.String("address", cfg.Server.Address),
	)

	obs := observability.New("analytics-server")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Redis (snapshot cache, optional) ---
	var redisClient *database.RedisClient
	if cfg.Database.Redis.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			// The cache is an optimization; run without it.
			zapLog.Warn("redis unavailable, snapshot cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			zapLog.Info("Redis connected successfully")
		}
	}

	// --- Init PostgreSQL (audit log, optional) ---
	var audit dashboard.AuditRecorder
	if cfg.Audit.Enabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")

		auditStore := store.NewAuditStore(pg.GetDB(), log)
		if err := auditStore.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("audit schema init failed", zap.Error(err))
		}
		audit = auditStore
	}

	// --- Build the pipeline ---
	schema := dataset.DefaultSchema()
	if cfg.Dataset.MappingPath != "" {
		schema, err = dataset.SchemaFromMappingFile(cfg.Dataset.MappingPath)
		if err != nil {
			zapLog.Fatal("column mapping load failed", zap.Error(err))
		}
	}

	loader := dataset.NewLoader(schema, cfg.Dataset.Sheet, log)

	svc := dashboard.NewService(
		loader,
		cfg.Dataset.Path,
		clientOrNil(redisClient),
		audit,
		obs,
		dashboard.Options{
			ClosedStatuses: cfg.Dataset.ClosedStatuses,
			TrendBucket:    aggregate.ParseGranularity(cfg.Dataset.TrendBucket),
			CacheTTL:       config.GetDuration(cfg.Dataset.CacheTTL),
		},
		log,
	)

	// Initial load is fatal: without a dataset there is nothing to serve.
	ds, err := svc.Load(ctx)
	if err != nil {
		zapLog.Fatal("initial dataset load failed", zap.Error(err))
	}
	zapLog.Info("Dataset loaded",
		zap.String("version", ds.Version),
		zap.Int("rows", ds.Len()),
		zap.Int("skipped", ds.Skipped),
	)

	// --- HTTP server ---
	api := httpapi.NewServer(svc, log)
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.Handler(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("shutdown error", zap.Error(err))
	}
	zapLog.Info("Stopped")
}

// clientOrNil unwraps the optional Redis wrapper for the service, which
// treats a nil client as cache-disabled.
func clientOrNil(c *database.RedisClient) *redis.Client {
	if c == nil {
		return nil
	}
	return c.GetClient()
}
