package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Database.User = "icp"
	ApplyDefaults(cfg)
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultDBHost, cfg.Database.Host)
	assert.Equal(t, DefaultDBPort, cfg.Database.Port)
	assert.Equal(t, DefaultDBMaxConns, cfg.Database.MaxConns)
	assert.Equal(t, "migrations", cfg.Database.MigrationPath)
	assert.Equal(t, DefaultRedisAddr, cfg.Redis.Addr)
	assert.Equal(t, DefaultRedisKeyPrefix, cfg.Redis.KeyPrefix)
	assert.Equal(t, []string{DefaultKafkaBroker}, cfg.Kafka.Brokers)
	assert.Equal(t, DefaultKafkaGroupID, cfg.Kafka.GroupID)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, DefaultDiscoveryLockTTL, cfg.Engine.DiscoveryLockTTL)
	assert.Equal(t, DefaultFeatureFetchConcurrency, cfg.Engine.FeatureFetchConcurrency)
	assert.Equal(t, DefaultInactivityPenaltyPerWeek, cfg.Engine.InactivityPenaltyPerWeek)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Host = "db.internal"
	cfg.Engine.DiscoveryLockTTL = time.Minute
	ApplyDefaults(cfg)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, time.Minute, cfg.Engine.DiscoveryLockTTL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{name: "valid defaults", mutate: func(cfg *Config) {}, wantErr: ""},
		{
			name:    "missing db host",
			mutate:  func(cfg *Config) { cfg.Database.Host = "" },
			wantErr: "database.host",
		},
		{
			name:    "port out of range",
			mutate:  func(cfg *Config) { cfg.Database.Port = 70000 },
			wantErr: "database.port",
		},
		{
			name:    "no kafka brokers",
			mutate:  func(cfg *Config) { cfg.Kafka.Brokers = nil },
			wantErr: "kafka.brokers",
		},
		{
			name:    "bad log level",
			mutate:  func(cfg *Config) { cfg.Log.Level = "verbose" },
			wantErr: "log.level",
		},
		{
			name:    "zero lock ttl",
			mutate:  func(cfg *Config) { cfg.Engine.DiscoveryLockTTL = 0 },
			wantErr: "discovery_lock_ttl",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  host: db.test
  port: 5433
  user: icp
  db_name: icp_test
redis:
  addr: cache.test:6379
kafka:
  brokers:
    - broker.test:9092
  group_id: icp-test
log:
  level: debug
  format: console
engine:
  discovery_lock_ttl: 2m
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "db.test", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "cache.test:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"broker.test:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2*time.Minute, cfg.Engine.DiscoveryLockTTL)
	// Unset fields still picked up defaults.
	assert.Equal(t, DefaultFeatureFetchConcurrency, cfg.Engine.FeatureFetchConcurrency)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  user: icp
log:
  level: shout
`), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}

//Personal.AI order the ending
