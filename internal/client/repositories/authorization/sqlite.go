package authorization

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tishanyq/shopsync/internal/client/models"
	"github.com/tishanyq/shopsync/internal/common"
	"github.com/tishanyq/shopsync/internal/dbx"
)

// SQLiteRepository implements Repository over the single-row device_auth table.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Load(ctx context.Context) (*models.Authorization, error) {
	query := `SELECT app_id, shop_id, device_slot, activated_at, expires_at, activated, product_key_masked
			FROM device_auth WHERE id = 1`
	row := r.db.QueryRowContext(ctx, query)

	a := &models.Authorization{}
	var activatedAt, expiresAt int64
	var activated int
	err := row.Scan(&a.AppID, &a.ShopID, &a.DeviceSlot, &activatedAt, &expiresAt, &activated, &a.ProductKeyMasked)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.Authorization{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load authorization: %w", err)
	}
	a.ActivatedAt = common.FromUnixMillis(activatedAt)
	a.ExpiresAt = common.FromUnixMillis(expiresAt)
	a.Activated = activated == 1
	return a, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, a *models.Authorization) error {
	query := `INSERT INTO device_auth (id, app_id, shop_id, device_slot, activated_at, expires_at, activated, product_key_masked)
			VALUES (1, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				app_id = excluded.app_id,
				shop_id = excluded.shop_id,
				device_slot = excluded.device_slot,
				activated_at = excluded.activated_at,
				expires_at = excluded.expires_at,
				activated = excluded.activated,
				product_key_masked = excluded.product_key_masked`
	activated := 0
	if a.Activated {
		activated = 1
	}
	_, err := r.db.ExecContext(ctx, query,
		a.AppID, a.ShopID, a.DeviceSlot,
		common.UnixMillis(a.ActivatedAt), common.UnixMillis(a.ExpiresAt),
		activated, a.ProductKeyMasked)
	if err != nil {
		return fmt.Errorf("failed to save authorization: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ClearActivation(ctx context.Context) error {
	query := `UPDATE device_auth SET activated = 0, activated_at = 0, expires_at = 0 WHERE id = 1`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to clear activation: %w", err)
	}
	return nil
}
