package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dealsense/icp-engine/internal/infrastructure/database/postgres"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}
	cmd.AddCommand(newMigrateUpCmd())
	cmd.AddCommand(newMigrateDownCmd())
	cmd.AddCommand(newMigrateVersionCmd())
	return cmd
}

func migrationSetup() (postgres.Config, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return postgres.Config{}, "", err
	}
	path := cfg.Database.MigrationPath
	if path == "" {
		path = "migrations"
	}
	return postgresConfig(cfg.Database), path, nil
}

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			pgCfg, path, err := migrationSetup()
			if err != nil {
				return err
			}
			if err := postgres.RunMigrations(pgCfg, path); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "migrations applied")
			return nil
		},
	}
}

func newMigrateDownCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			pgCfg, path, err := migrationSetup()
			if err != nil {
				return err
			}
			if err := postgres.RollbackMigrations(pgCfg, path, steps); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	return cmd
}

func newMigrateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			pgCfg, path, err := migrationSetup()
			if err != nil {
				return err
			}
			version, dirty, err := postgres.MigrationVersion(pgCfg, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "schema version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	}
}

//Personal.AI order the ending
