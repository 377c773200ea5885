// Package testdb provides PostgreSQL pools for integration tests.
//
// Tests using it are skipped unless TEST_DATABASE_URL is set. Each caller
// names its own schema so packages tested in parallel do not share tables.
package testdb

import (
	"context"
	"net/url"
	"os"
	"testing"

	"finance-tracker/src/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

const envURL = "TEST_DATABASE_URL"

// Open connects to TEST_DATABASE_URL with search_path set to schema and
// applies the migrations there.
func Open(t *testing.T, schema string) *pgxpool.Pool {
	t.Helper()
	raw := os.Getenv(envURL)
	if raw == "" {
		t.Skipf("%s not set, skipping database test", envURL)
	}
	ctx := context.Background()

	admin, err := pgx.Connect(ctx, raw)
	require.NoError(t, err, "connect to test database")
	_, err = admin.Exec(ctx, `CREATE SCHEMA IF NOT EXISTS `+pgx.Identifier{schema}.Sanitize())
	require.NoError(t, err, "create test schema")
	require.NoError(t, admin.Close(ctx))

	u, err := url.Parse(raw)
	require.NoError(t, err, "parse %s", envURL)
	params := u.Query()
	params.Set("search_path", schema)
	u.RawQuery = params.Encode()

	pool, err := db.Connect(ctx, u.String(), 4)
	require.NoError(t, err, "open test pool")
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool), "migrate test schema")
	return pool
}

// Reset empties every table and restarts id sequences.
func Reset(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `TRUNCATE transactions, categories, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err, "truncate tables")
}
