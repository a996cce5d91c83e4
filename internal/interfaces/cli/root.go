// Package cli implements the icpctl command tree: one-shot discovery and
// scoring runs, migration management, and profile inspection against a
// configured deployment.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dealsense/icp-engine/internal/config"
	"github.com/dealsense/icp-engine/internal/infrastructure/database/postgres"
	"github.com/dealsense/icp-engine/internal/infrastructure/database/postgres/repositories"
	"github.com/dealsense/icp-engine/internal/infrastructure/database/redis"
	"github.com/dealsense/icp-engine/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configPath string
	workspace  string
)

// runtime bundles everything a command needs after bootstrap.  Close releases
// the infrastructure in reverse construction order.
type runtime struct {
	cfg    *config.Config
	logger logging.Logger
	conn   *postgres.Connection
	redis  *redis.Client
	crm    *repositories.CRMReader
}

func (r *runtime) Close() {
	if r.redis != nil {
		if err := r.redis.Close(); err != nil {
			r.logger.Warn("failed to close redis client", logging.Err(err))
		}
	}
	if r.conn != nil {
		r.conn.Close()
	}
}

// loadConfig resolves configuration from --config when given, else from
// ICP_* environment variables.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.LoadFromEnv()
}

// bootstrap loads configuration and connects the infrastructure a run
// command needs.  withRedis is false for commands that never take the
// discovery lock.
func bootstrap(ctx context.Context, withRedis bool) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, err
	}

	conn, err := postgres.NewConnection(ctx, postgresConfig(cfg.Database), logger)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:    cfg,
		logger: logger,
		conn:   conn,
		crm:    repositories.NewCRMReader(conn.Pool(), logger),
	}

	if withRedis {
		client, err := redis.NewClient(redisConfig(cfg.Redis), logger)
		if err != nil {
			conn.Close()
			return nil, err
		}
		rt.redis = client
	}
	return rt, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "icpctl",
		Short:         "ICP discovery and lead-scoring engine control tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to config file (default: ICP_* environment variables)")

	root.AddCommand(newDiscoverCmd())
	root.AddCommand(newScoreCmd())
	root.AddCommand(newProfileCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the icpctl command tree.
func Execute() error {
	return newRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "icpctl %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}

// commandContext gives every one-shot run a generous but bounded deadline.
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 15*time.Minute)
}

const summaryDurationPrecision = 10 * time.Millisecond

//Personal.AI order the ending
