package cli

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/runnerr0/burnwatch/internal/state"
)

var t0 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// openTestStore opens an initialized in-memory store for command tests.
func openTestStore(t *testing.T) (*state.SQLiteStore, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, state.NewMigrationRunner(db).Run())

	store, err := state.NewSQLiteStore(db, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Initialize(context.Background()))
	return store, db
}
