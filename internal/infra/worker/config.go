// Package worker holds the operational scaffolding for the ingestion
// worker: configuration loading, health endpoints and job metrics.
package worker

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"homefeed/internal/pkg/config"
)

// WorkerConfig holds the configuration for the ingestion worker.
//
// Values are resolved in three layers: compiled-in defaults, an optional
// YAML file named by WORKER_CONFIG_FILE, then environment variable
// overrides. Loading is fail-open: an invalid value falls back to the
// previous layer with a warning, and the worker always starts with a valid
// configuration.
type WorkerConfig struct {
	// CronSchedule is the cron expression for the ingest-all job.
	// Format: "minute hour day month weekday". Default: "*/30 * * * *".
	CronSchedule string `yaml:"cron_schedule"`

	// Timezone is the IANA timezone name for cron scheduling.
	// Default: "UTC".
	Timezone string `yaml:"timezone"`

	// IngestParallelism bounds how many feeds are ingested concurrently.
	// Range: 1-50. Default: 4.
	IngestParallelism int `yaml:"ingest_parallelism"`

	// IngestTimeout is the maximum duration for one ingest-all run.
	// Range: 1m-4h. Default: 15 minutes.
	IngestTimeout time.Duration `yaml:"ingest_timeout"`

	// HealthPort is the port for the health check HTTP server.
	// Range: 1024-65535. Default: 9091.
	HealthPort int `yaml:"health_port"`

	// MetricsPort is the port for the Prometheus metrics HTTP server.
	// Range: 1024-65535. Default: 9090.
	MetricsPort int `yaml:"metrics_port"`
}

// DefaultConfig returns a WorkerConfig with sensible default values.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:      "*/30 * * * *",
		Timezone:          "UTC",
		IngestParallelism: 4,
		IngestTimeout:     15 * time.Minute,
		HealthPort:        9091,
		MetricsPort:       9090,
	}
}

// Validate checks the configuration values and aggregates all failures.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateIntRange(c.IngestParallelism, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("ingest parallelism: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.IngestTimeout); err != nil {
		errs = append(errs, fmt.Errorf("ingest timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}

	return nil
}

// LoadConfig loads worker configuration with validation and automatic
// fallback to defaults on failure.
//
// Environment variables:
//   - WORKER_CONFIG_FILE: Optional path to a YAML config file
//   - CRON_SCHEDULE: Cron expression
//   - WORKER_TIMEZONE: IANA timezone name
//   - INGEST_PARALLELISM: Integer 1-50
//   - INGEST_TIMEOUT: Duration string, e.g. "15m"
//   - WORKER_HEALTH_PORT: Integer 1024-65535
//   - WORKER_METRICS_PORT: Integer 1024-65535
//
// The returned configuration is always valid; the error is always nil.
func LoadConfig(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	if path := os.Getenv("WORKER_CONFIG_FILE"); path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			fallbackApplied = true
			metrics.RecordValidationError("config_file")
			metrics.RecordFallback("config_file", "default")
			logger.Warn("Configuration fallback applied",
				slog.String("field", "ConfigFile"),
				slog.String("path", path),
				slog.Any("error", err))
			cfg = DefaultConfig()
		}
	}

	// A broken file may carry individually invalid fields; reset those to
	// defaults before env overrides.
	defaults := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		fallbackApplied = true
		metrics.RecordValidationError("config_file")
		metrics.RecordFallback("config_file", "default")
		logger.Warn("Configuration fallback applied",
			slog.String("field", "ConfigFile"),
			slog.Any("error", err))
		cfg = defaults
	}

	result := config.LoadEnvWithFallback("CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = result.Value.(string)
	fallbackApplied = logFallback(logger, metrics, "CronSchedule", "cron_schedule", result) || fallbackApplied

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	fallbackApplied = logFallback(logger, metrics, "Timezone", "timezone", result) || fallbackApplied

	result = config.LoadEnvInt("INGEST_PARALLELISM", cfg.IngestParallelism, func(v int) error {
		return config.ValidateIntRange(v, 1, 50)
	})
	cfg.IngestParallelism = result.Value.(int)
	fallbackApplied = logFallback(logger, metrics, "IngestParallelism", "ingest_parallelism", result) || fallbackApplied

	result = config.LoadEnvDuration("INGEST_TIMEOUT", cfg.IngestTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 1*time.Minute, 4*time.Hour)
	})
	cfg.IngestTimeout = result.Value.(time.Duration)
	fallbackApplied = logFallback(logger, metrics, "IngestTimeout", "ingest_timeout", result) || fallbackApplied

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	fallbackApplied = logFallback(logger, metrics, "HealthPort", "health_port", result) || fallbackApplied

	result = config.LoadEnvInt("WORKER_METRICS_PORT", cfg.MetricsPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.MetricsPort = result.Value.(int)
	fallbackApplied = logFallback(logger, metrics, "MetricsPort", "metrics_port", result) || fallbackApplied

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}

// loadConfigFile merges a YAML file into the configuration.
func loadConfigFile(path string, cfg *WorkerConfig) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator's environment
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// logFallback records metrics and warnings for one load result and reports
// whether a fallback happened.
func logFallback(logger *slog.Logger, metrics *WorkerMetrics, field, metricField string, result config.ConfigLoadResult) bool {
	if !result.FallbackApplied {
		return false
	}
	metrics.RecordValidationError(metricField)
	metrics.RecordFallback(metricField, "default")
	for _, warning := range result.Warnings {
		logger.Warn("Configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", warning))
	}
	return true
}
