package authorization

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tishanyq/shopsync/internal/client/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE device_auth (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  app_id TEXT NOT NULL DEFAULT '',
  shop_id TEXT NOT NULL DEFAULT '',
  device_slot INTEGER NOT NULL DEFAULT 0,
  activated_at INTEGER NOT NULL DEFAULT 0,
  expires_at INTEGER NOT NULL DEFAULT 0,
  activated INTEGER NOT NULL DEFAULT 0,
  product_key_masked TEXT NOT NULL DEFAULT ''
);
`)
	require.NoError(t, err)
	return db
}

func TestLoad_Unregistered(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	a, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnregistered, a.Status(time.Now()))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	activatedAt := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	expiresAt := activatedAt.Add(30 * 24 * time.Hour)

	a := &models.Authorization{
		AppID:            "app-1",
		ShopID:           "SHOP_abc",
		DeviceSlot:       2,
		ActivatedAt:      activatedAt,
		ExpiresAt:        expiresAt,
		Activated:        true,
		ProductKeyMasked: "****-****-****-5678",
	}
	require.NoError(t, r.Save(ctx, a))

	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, a, got)
	assert.Equal(t, models.StatusActive, got.Status(activatedAt.Add(time.Hour)))

	// Save is an upsert: a renewal overwrites the single row.
	a.ExpiresAt = expiresAt.Add(30 * 24 * time.Hour)
	require.NoError(t, r.Save(ctx, a))

	got, err = r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.ExpiresAt, got.ExpiresAt)
}

func TestClearActivation_KeepsIdentity(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	a := &models.Authorization{
		AppID:       "app-1",
		ShopID:      "SHOP_abc",
		DeviceSlot:  1,
		ActivatedAt: time.Now(),
		ExpiresAt:   time.Now().Add(24 * time.Hour),
		Activated:   true,
	}
	require.NoError(t, r.Save(ctx, a))
	require.NoError(t, r.ClearActivation(ctx))

	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.False(t, got.Activated)
	assert.True(t, got.ExpiresAt.IsZero())
	assert.Equal(t, "app-1", got.AppID)
	assert.Equal(t, "SHOP_abc", got.ShopID)
	assert.Equal(t, 1, got.DeviceSlot)
	assert.Equal(t, models.StatusPendingActivation, got.Status(time.Now()))
}
