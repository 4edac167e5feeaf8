package shops

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tishanyq/shopsync/internal/client/models"
	"github.com/tishanyq/shopsync/internal/common"
	"github.com/tishanyq/shopsync/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, shop *models.Shop) error {
	query := `INSERT INTO shop (id, name, owner_name, owner_surname, phone_number, services, address, pin_hash, synced)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		shop.ServerID, shop.Name, shop.OwnerName, shop.OwnerSurname,
		shop.PhoneNumber, shop.Services, shop.Address, shop.PINHash, boolToInt(shop.Synced))
	if err != nil {
		return fmt.Errorf("failed to save shop: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context) (*models.Shop, error) {
	query := `SELECT id, name, owner_name, owner_surname, phone_number, services, address, pin_hash, synced
			FROM shop LIMIT 1`
	row := r.db.QueryRowContext(ctx, query)

	s := &models.Shop{}
	var synced int
	err := row.Scan(&s.ServerID, &s.Name, &s.OwnerName, &s.OwnerSurname,
		&s.PhoneNumber, &s.Services, &s.Address, &s.PINHash, &synced)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	s.Synced = synced == 1
	return s, nil
}

func (r *SQLiteRepository) UpdatePINHash(ctx context.Context, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE shop SET pin_hash = ?, synced = 0`, hash)
	if err != nil {
		return fmt.Errorf("failed to update pin: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) SetServerID(ctx context.Context, serverID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE shop SET id = ?, synced = 1`, serverID)
	if err != nil {
		return fmt.Errorf("failed to set shop server id: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, serverID string) error {
	query := `UPDATE shop SET synced = 1, id = CASE WHEN ? != '' THEN ? ELSE id END`
	if _, err := r.db.ExecContext(ctx, query, serverID, serverID); err != nil {
		return fmt.Errorf("failed to mark shop synced: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
