package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "icpengine"
	DefaultDBMaxConns = 25

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "icp"

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "icp-engine"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsListenAddr = ":9102"
	DefaultMetricsNamespace  = "icp_engine"

	DefaultDiscoveryLockTTL        = 10 * time.Minute
	DefaultFeatureFetchConcurrency = 8

	// Heuristic penalty magnitudes used by the point-based scorer.
	DefaultInactivityPenaltyPerWeek = 2
	DefaultNoCallsLateStagePenalty  = 5
)

// ApplyDefaults fills every zero-value field in cfg with the engine default.
// Fields already set by the caller (non-zero values) are left unchanged so
// that explicit configuration always wins.  It must be called after
// unmarshalling raw config data and before Validate().
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 5 * time.Minute
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = "migrations"
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.AutoOffsetReset == "" {
		cfg.Kafka.AutoOffsetReset = "earliest"
	}
	if cfg.Kafka.SessionTimeout == 0 {
		cfg.Kafka.SessionTimeout = 30 * time.Second
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.ListenAddr == "" {
		cfg.Metrics.ListenAddr = DefaultMetricsListenAddr
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Engine ────────────────────────────────────────────────────────────────
	if cfg.Engine.DiscoveryLockTTL == 0 {
		cfg.Engine.DiscoveryLockTTL = DefaultDiscoveryLockTTL
	}
	if cfg.Engine.FeatureFetchConcurrency == 0 {
		cfg.Engine.FeatureFetchConcurrency = DefaultFeatureFetchConcurrency
	}
	if cfg.Engine.InactivityPenaltyPerWeek == 0 {
		cfg.Engine.InactivityPenaltyPerWeek = DefaultInactivityPenaltyPerWeek
	}
	if cfg.Engine.NoCallsLateStagePenalty == 0 {
		cfg.Engine.NoCallsLateStagePenalty = DefaultNoCallsLateStagePenalty
	}
}

//Personal.AI order the ending
