package synclog

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE sync_log (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  sync_date INTEGER NOT NULL,
  status TEXT NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func TestLastSuccess_EmptyLog(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	last, err := r.LastSuccess(context.Background())
	require.NoError(t, err)
	assert.True(t, last.IsZero())
}

func TestLastSuccess_IgnoresFailures(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	early := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	late := early.Add(24 * time.Hour)

	require.NoError(t, r.Record(ctx, early, true))
	require.NoError(t, r.Record(ctx, late, false))

	last, err := r.LastSuccess(ctx)
	require.NoError(t, err)
	assert.True(t, last.Equal(early), "failed attempts must not advance the watermark")

	require.NoError(t, r.Record(ctx, late, true))
	last, err = r.LastSuccess(ctx)
	require.NoError(t, err)
	assert.True(t, last.Equal(late))
}
