//go:build integration

// Package integration spins up throwaway PostgreSQL containers and exercises
// the repositories against a real schema.  Run with:
//
//	go test -tags integration ./test/integration/...
package integration

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dealsense/icp-engine/internal/infrastructure/database/postgres"
	"github.com/dealsense/icp-engine/internal/infrastructure/monitoring/logging"
)

const (
	pgImage    = "postgres:16-alpine"
	pgUser     = "icp"
	pgPassword = "icp"
	pgDatabase = "icp_test"
)

// crmFixtureSchema holds the CRM tables the engine reads but does not own.
// Production deployments get these from the surrounding application; tests
// create a minimal copy.
const crmFixtureSchema = `
CREATE TABLE accounts (
    id             TEXT PRIMARY KEY,
    workspace_id   TEXT NOT NULL,
    industry       TEXT,
    employee_count INTEGER,
    annual_revenue NUMERIC,
    custom_fields  JSONB NOT NULL DEFAULT '{}'::jsonb
);

CREATE TABLE deals (
    id            TEXT PRIMARY KEY,
    workspace_id  TEXT NOT NULL,
    account_id    TEXT REFERENCES accounts (id),
    status        TEXT NOT NULL,
    amount        NUMERIC NOT NULL DEFAULT 0,
    owner_id      TEXT NOT NULL DEFAULT '',
    probability   INTEGER NOT NULL DEFAULT 0,
    stage         TEXT NOT NULL DEFAULT '',
    lead_source   TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    closed_at     TIMESTAMPTZ,
    close_date    TIMESTAMPTZ,
    custom_fields JSONB NOT NULL DEFAULT '{}'::jsonb
);

CREATE TABLE contacts (
    id         TEXT PRIMARY KEY,
    title      TEXT,
    seniority  TEXT,
    department TEXT
);

CREATE TABLE deal_contacts (
    workspace_id      TEXT NOT NULL,
    deal_id           TEXT NOT NULL REFERENCES deals (id),
    contact_id        TEXT NOT NULL REFERENCES contacts (id),
    buying_role       TEXT,
    emails_exchanged  INTEGER,
    meetings_attended INTEGER,
    last_contacted_at TIMESTAMPTZ,
    PRIMARY KEY (deal_id, contact_id)
);

CREATE TABLE activities (
    id            BIGSERIAL PRIMARY KEY,
    workspace_id  TEXT NOT NULL,
    deal_id       TEXT NOT NULL,
    activity_type TEXT NOT NULL,
    occurred_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE custom_field_discoveries (
    workspace_id TEXT NOT NULL,
    field_key    TEXT NOT NULL,
    entity_type  TEXT NOT NULL,
    relevance    INTEGER NOT NULL
);

CREATE TABLE department_keywords (
    workspace_id TEXT NOT NULL,
    keyword      TEXT NOT NULL,
    department   TEXT NOT NULL
);

CREATE TABLE account_enrichments (
    workspace_id TEXT NOT NULL,
    account_id   TEXT NOT NULL
);
`

// startPostgres launches a container, applies the engine migrations plus the
// CRM fixture schema, and returns a connected pool.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        pgImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       pgDatabase,
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := postgres.Config{
		Host:     host,
		Port:     port.Int(),
		Database: pgDatabase,
		Username: pgUser,
		Password: pgPassword,
		SSLMode:  "disable",
	}
	require.NoError(t, postgres.RunMigrations(cfg, migrationsDir(t)))

	pool, err := pgxpool.New(ctx, postgres.BuildDSN(cfg))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, crmFixtureSchema)
	require.NoError(t, err)
	return pool
}

func migrationsDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}

func testLogger() logging.Logger {
	return logging.NewNopLogger()
}

// seedClosedDeal inserts one closed deal with an account and a role-annotated
// contact, returning the deal id.
func seedClosedDeal(t *testing.T, pool *pgxpool.Pool, ws string, n int, status, seniority, department string) string {
	t.Helper()
	ctx := context.Background()

	accountID := fmt.Sprintf("acc-%d", n)
	dealID := fmt.Sprintf("deal-%d", n)
	contactID := fmt.Sprintf("contact-%d", n)

	_, err := pool.Exec(ctx, `
		INSERT INTO accounts (id, workspace_id, industry, employee_count, annual_revenue)
		VALUES ($1, $2, 'SaaS', 150, 12000000)`, accountID, ws)
	require.NoError(t, err)

	created := time.Now().Add(-60 * 24 * time.Hour)
	closed := time.Now().Add(-10 * 24 * time.Hour)
	_, err = pool.Exec(ctx, `
		INSERT INTO deals (id, workspace_id, account_id, status, amount, stage, lead_source, created_at, closed_at)
		VALUES ($1, $2, $3, $4, 50000, 'decision', 'inbound', $5, $6)`,
		dealID, ws, accountID, status, created, closed)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		INSERT INTO contacts (id, title, seniority, department)
		VALUES ($1, 'VP of Engineering', $2, $3)`, contactID, seniority, department)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		INSERT INTO deal_contacts (workspace_id, deal_id, contact_id, buying_role, emails_exchanged, meetings_attended)
		VALUES ($1, $2, $3, 'champion', 8, 2)`, ws, dealID, contactID)
	require.NoError(t, err)

	return dealID
}

//Personal.AI order the ending
