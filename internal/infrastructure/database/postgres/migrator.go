// Schema migration management using golang-migrate.  Migrations cover only
// the tables this engine owns (icp_profiles, lead_scores); they run on
// startup and are also exposed through the CLI for manual control.
package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // pgx driver
	_ "github.com/golang-migrate/migrate/v4/source/file"     // file source
)

// RunMigrations applies all pending migrations from migrationsPath
// ("file://migrations").  Returns nil when nothing is pending.
func RunMigrations(cfg Config, migrationsPath string) error {
	m, err := newMigrate(cfg, migrationsPath)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// RollbackMigrations steps the schema back by n migrations, used in
// development and tests.
func RollbackMigrations(cfg Config, migrationsPath string, n int) error {
	m, err := newMigrate(cfg, migrationsPath)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-n); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("rollback migrations: %w", err)
	}
	return nil
}

// MigrationVersion reports the current schema version and dirty flag.
func MigrationVersion(cfg Config, migrationsPath string) (uint, bool, error) {
	m, err := newMigrate(cfg, migrationsPath)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read migration version: %w", err)
	}
	return version, dirty, nil
}

func newMigrate(cfg Config, migrationsPath string) (*migrate.Migrate, error) {
	// golang-migrate selects its pgx/v5 driver by the pgx5 URL scheme.
	dsn := strings.Replace(BuildDSN(cfg), "postgres://", "pgx5://", 1)
	m, err := migrate.New(migrationsPath, dsn)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, nil
}

//Personal.AI order the ending
