package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	pgRepo "homefeed/internal/infra/adapter/persistence/postgres"
	"homefeed/internal/infra/db"
	"homefeed/internal/infra/scraper"
	workerPkg "homefeed/internal/infra/worker"
	appMetrics "homefeed/internal/observability/metrics"
	"homefeed/internal/observability/tracing"
	"homefeed/internal/repository"
	ingestUC "homefeed/internal/usecase/ingest"
)

func waitForMigrations(logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM feeds LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing := tracing.InitTracer()
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to shut down tracer", slog.Any("error", err))
		}
	}()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig, err := workerPkg.LoadConfig(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("ingest_parallelism", workerConfig.IngestParallelism),
		slog.Duration("ingest_timeout", workerConfig.IngestTimeout),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.Int("metrics_port", workerConfig.MetricsPort))

	startMetricsServer(ctx, logger, workerConfig.MetricsPort)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	startDBStatsCollector(ctx, database)

	svc, entryRepo := setupIngestService(database, workerConfig)

	startCronWorker(logger, svc, entryRepo, workerConfig, workerMetrics, healthServer)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and waits for migrations to complete.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	waitForMigrations(logger, database)
	return database
}

// setupIngestService creates and configures the ingest service with all dependencies.
// The entry repository is returned separately so the job loop can refresh
// inventory gauges after each run.
func setupIngestService(database *sql.DB, cfg *workerPkg.WorkerConfig) (*ingestUC.Service, repository.EntryRepository) {
	feedRepo := pgRepo.NewFeedRepo(database)
	entryRepo := pgRepo.NewEntryRepo(database)
	feedFetcher := scraper.NewFeedFetcher(createHTTPClient())

	svc := ingestUC.NewService(feedRepo, entryRepo, feedFetcher)
	svc.Parallelism = cfg.IngestParallelism
	return svc, entryRepo
}

// startDBStatsCollector samples connection pool stats into Prometheus gauges
// until the context is cancelled.
func startDBStatsCollector(ctx context.Context, database *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s := database.Stats()
				appMetrics.UpdateDBConnectionStats(s.InUse, s.Idle)
			}
		}
	}()
}

// createHTTPClient creates an HTTP client with timeouts and connection pooling.
// TLS 1.2+ is enforced.
func createHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// startCronWorker starts the cron scheduler and runs the ingest job periodically.
func startCronWorker(logger *slog.Logger, svc *ingestUC.Service, entryRepo repository.EntryRepository, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runIngestJob(logger, svc, entryRepo, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	// Mark as ready after cron is set up
	healthServer.SetReady(true)
	logger.Info("worker marked as ready")

	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))
	select {}
}

// runIngestJob executes a single ingest-all job with timeout and error handling.
func runIngestJob(logger *slog.Logger, svc *ingestUC.Service, entryRepo repository.EntryRepository, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	startTime := time.Now()
	logger.Info("ingest run started")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.IngestTimeout)
	defer cancel()

	stats, err := svc.IngestAll(ctx)
	if err != nil {
		logger.Error("ingest run failed", slog.Any("error", err))
		metrics.RecordJobRun("failure")
		metrics.RecordJobDuration(time.Since(startTime).Seconds())
		return
	}

	metrics.RecordJobRun("success")
	metrics.RecordJobDuration(time.Since(startTime).Seconds())
	metrics.RecordFeedsProcessed(stats.Feeds)
	metrics.RecordLastSuccess()

	appMetrics.UpdateFeedsTotal(stats.Feeds)
	if total, err := entryRepo.CountAll(ctx); err != nil {
		logger.Warn("failed to refresh entries gauge", slog.Any("error", err))
	} else {
		appMetrics.UpdateEntriesTotal(total)
	}

	logger.Info("ingest run finished",
		slog.String("run_id", stats.RunID),
		slog.Int("feeds", stats.Feeds),
		slog.Int("failed", stats.Failed),
		slog.Int64("fetched", stats.Fetched),
		slog.Int64("stored", stats.Stored),
		slog.Duration("duration", stats.Duration),
	)
}
