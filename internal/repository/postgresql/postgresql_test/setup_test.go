package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/salesops/kpi-backend-go/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup holds a connection to a scratch copy of the CRM replica schema
type TestDatabaseSetup struct {
	DB *database.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS dcr (
		owner_alias TEXT NOT NULL, division TEXT NOT NULL, territory_code TEXT NOT NULL,
		dcr_date DATE NOT NULL, activity1_name TEXT, activity2_name TEXT, day_duration DOUBLE PRECISION,
		doctors_planned INT, doctor_count INT, status TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS holiday_master (
		name TEXT NOT NULL, division TEXT NOT NULL, state_name TEXT NOT NULL,
		holiday_date DATE NOT NULL, year INT NOT NULL, company_code TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS target (
		user_alias TEXT NOT NULL, user_name TEXT NOT NULL, designation TEXT NOT NULL, abbott_designation TEXT,
		division TEXT NOT NULL, division_name TEXT, territory TEXT NOT NULL, hq TEXT,
		start_date DATE NOT NULL, is_active BOOLEAN NOT NULL, last_submitted_dcr_date DATE)`,
	`CREATE TABLE IF NOT EXISTS dcr_junction (
		owner_alias TEXT NOT NULL, division TEXT NOT NULL, territory_code TEXT NOT NULL, account TEXT NOT NULL,
		dcr_date DATE NOT NULL, dcr_status TEXT NOT NULL, brand1 TEXT)`,
	`CREATE TABLE IF NOT EXISTS leave_request (
		owner_alias TEXT NOT NULL, division TEXT NOT NULL, division_name TEXT, user_name TEXT,
		leave_type TEXT NOT NULL, status TEXT NOT NULL, from_date DATE NOT NULL, to_date DATE NOT NULL,
		total_days INT, user_is_active BOOLEAN NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS territory_states (
		user_alias TEXT NOT NULL, user_name TEXT, division TEXT, territory TEXT NOT NULL,
		parent_territory TEXT, state_name TEXT, zone TEXT, user_is_active BOOLEAN NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS assignment (
		owner_alias TEXT NOT NULL, division TEXT NOT NULL, territory_code TEXT, account TEXT NOT NULL,
		brand1 TEXT, frequency INT NOT NULL, status TEXT NOT NULL, customer_type TEXT NOT NULL,
		effective_date DATE NOT NULL, deactivation_date DATE)`,
	`CREATE TABLE IF NOT EXISTS activity_master (
		name TEXT NOT NULL, type TEXT, start_date DATE, expiration_date DATE,
		active BOOLEAN NOT NULL, sort_order INT)`,
}

var tables = []string{
	"dcr",
	"holiday_master",
	"target",
	"dcr_junction",
	"leave_request",
	"territory_states",
	"assignment",
	"activity_master",
}

// NewTestDatabase connects to TEST_DATABASE_URL and prepares empty source tables.
// The test is skipped when no database is configured.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 2})
	require.NoError(t, err, "failed to connect to test database")

	setup := &TestDatabaseSetup{DB: db}
	t.Cleanup(setup.Close)

	for _, stmt := range schema {
		_, err := db.Exec(ctx, stmt)
		require.NoError(t, err)
	}
	require.NoError(t, setup.TruncateAllTables(ctx))
	return setup
}

// TruncateAllTables empties every source table
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// Exec runs seed statements
func (t *TestDatabaseSetup) Exec(tb testing.TB, stmts ...string) {
	tb.Helper()
	for _, stmt := range stmts {
		_, err := t.DB.Exec(context.Background(), stmt)
		require.NoError(tb, err, stmt)
	}
}

func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
