// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"diario/internal/db"
)

func Open(t *testing.T) *sqlx.DB {
	t.Helper()
	log := zaptest.NewLogger(t)
	conn, err := db.Open("sqlite", ":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.RunMigrations(conn, log))
	return conn
}
