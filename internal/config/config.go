// Package config defines all configuration structures for the ICP engine.
// No I/O or parsing logic lives here — only plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters.  Redis backs the
// per-workspace discovery lock only; the engine keeps no cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds the run-trigger consumer parameters for cmd/worker.
type KafkaConfig struct {
	Brokers         []string      `mapstructure:"brokers"`
	GroupID         string        `mapstructure:"group_id"`
	AutoOffsetReset string        `mapstructure:"auto_offset_reset"` // "earliest" | "latest"
	SessionTimeout  time.Duration `mapstructure:"session_timeout"`
	FetchMaxBytes   int           `mapstructure:"fetch_max_bytes"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"`
}

// MetricsConfig holds the Prometheus exposition parameters for cmd/worker.
type MetricsConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	Namespace  string `mapstructure:"namespace"`
}

// EngineConfig holds the tunables of the discovery and scoring pipelines.
// The penalty constants are deliberately configuration, not derived
// statistics: they mirror the heuristic values the scoring tables were
// calibrated with and operators may adjust them per deployment.
type EngineConfig struct {
	// DiscoveryLockTTL bounds how long a crashed discovery run can keep a
	// workspace locked before the lock expires.
	DiscoveryLockTTL time.Duration `mapstructure:"discovery_lock_ttl"`

	// FeatureFetchConcurrency bounds the parallelism of per-record feature
	// assembly.  Record extraction has no cross-record dependencies, so this
	// is purely a throughput knob.
	FeatureFetchConcurrency int `mapstructure:"feature_fetch_concurrency"`

	// InactivityPenaltyPerWeek is the points subtracted per elapsed week
	// since the last activity on an open deal.
	InactivityPenaltyPerWeek int `mapstructure:"inactivity_penalty_per_week"`

	// NoCallsLateStagePenalty is the flat penalty for a late-stage deal with
	// zero logged calls.
	NoCallsLateStagePenalty int `mapstructure:"no_calls_late_stage_penalty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the engine.  Every
// infrastructure component and pipeline reads its settings from the relevant
// sub-struct.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Engine   EngineConfig   `mapstructure:"engine"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start.
func (c *Config) Validate() error {
	// Database
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be >= 1, got %d", c.Database.MaxConns)
	}

	// Redis
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	// Kafka
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}
	if c.Kafka.GroupID == "" {
		return fmt.Errorf("config: kafka.group_id is required")
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Engine
	if c.Engine.DiscoveryLockTTL <= 0 {
		return fmt.Errorf("config: engine.discovery_lock_ttl must be positive")
	}
	if c.Engine.FeatureFetchConcurrency < 1 {
		return fmt.Errorf("config: engine.feature_fetch_concurrency must be >= 1, got %d", c.Engine.FeatureFetchConcurrency)
	}
	if c.Engine.InactivityPenaltyPerWeek < 0 {
		return fmt.Errorf("config: engine.inactivity_penalty_per_week is subtracted and must be expressed as a non-negative magnitude")
	}
	if c.Engine.NoCallsLateStagePenalty < 0 {
		return fmt.Errorf("config: engine.no_calls_late_stage_penalty is subtracted and must be expressed as a non-negative magnitude")
	}

	return nil
}

//Personal.AI order the ending
