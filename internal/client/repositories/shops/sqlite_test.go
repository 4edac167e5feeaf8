package shops

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tishanyq/shopsync/internal/client/models"
	"github.com/tishanyq/shopsync/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE shop (
  id TEXT NOT NULL DEFAULT '',
  name TEXT NOT NULL,
  owner_name TEXT NOT NULL DEFAULT '',
  owner_surname TEXT NOT NULL DEFAULT '',
  phone_number TEXT NOT NULL DEFAULT '',
  services TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  pin_hash TEXT NOT NULL DEFAULT '',
  synced INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)
	return db
}

func TestGet_NoShop(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	_, err := r.Get(context.Background())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSaveAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, &models.Shop{
		Name: "Kwik Mart", OwnerName: "Tariro", OwnerSurname: "Moyo",
		PhoneNumber: "+26377000000", PINHash: "$2a$10$hash",
	}))

	shop, err := r.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Kwik Mart", shop.Name)
	assert.Equal(t, "$2a$10$hash", shop.PINHash)
	assert.Empty(t, shop.ServerID)
	assert.False(t, shop.Synced)
}

func TestSetServerID_MarksSynced(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, &models.Shop{Name: "Kwik Mart"}))
	require.NoError(t, r.SetServerID(ctx, "SHOP_7"))

	shop, err := r.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "SHOP_7", shop.ServerID)
	assert.True(t, shop.Synced)
}

func TestUpdatePINHash(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	// No row yet.
	assert.ErrorIs(t, r.UpdatePINHash(ctx, "new"), common.ErrNotFound)

	require.NoError(t, r.Save(ctx, &models.Shop{Name: "Kwik Mart", PINHash: "old"}))
	require.NoError(t, r.SetServerID(ctx, "SHOP_7"))
	require.NoError(t, r.UpdatePINHash(ctx, "new"))

	shop, err := r.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", shop.PINHash)
	assert.False(t, shop.Synced, "pin change must flag the row for upload")
}

func TestMarkSynced(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, &models.Shop{Name: "Kwik Mart"}))
	require.NoError(t, r.MarkSynced(ctx, "SHOP_7"))

	shop, err := r.Get(ctx)
	require.NoError(t, err)
	assert.True(t, shop.Synced)
	assert.Equal(t, "SHOP_7", shop.ServerID)

	// An empty server id flips the flag without touching the stamped id.
	require.NoError(t, r.UpdatePINHash(ctx, "new"))
	require.NoError(t, r.MarkSynced(ctx, ""))

	shop, err = r.Get(ctx)
	require.NoError(t, err)
	assert.True(t, shop.Synced)
	assert.Equal(t, "SHOP_7", shop.ServerID)
}
