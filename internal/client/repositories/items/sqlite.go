package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tishanyq/shopsync/internal/client/models"
	"github.com/tishanyq/shopsync/internal/common"
	"github.com/tishanyq/shopsync/internal/dbx"
)

const itemColumns = `local_id, id, name, category, price_usd, price_zwg, quantity, synced, created_at`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, item *models.Item) error {
	query := `INSERT INTO items (` + itemColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		item.LocalID, item.ServerID, item.Name, item.Category,
		item.PriceUSD, item.PriceZWG, item.Quantity,
		boolToInt(item.Synced), common.UnixMillis(item.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, item *models.Item) error {
	query := `UPDATE items SET name = ?, category = ?, price_usd = ?, price_zwg = ?, quantity = ?, synced = ?
			WHERE local_id = ?`
	res, err := r.db.ExecContext(ctx, query,
		item.Name, item.Category, item.PriceUSD, item.PriceZWG, item.Quantity,
		boolToInt(item.Synced), item.LocalID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) SetQuantity(ctx context.Context, localID string, quantity int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE items SET quantity = ?, synced = 0 WHERE local_id = ?`, quantity, localID)
	if err != nil {
		return fmt.Errorf("failed to set item quantity: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) GetByLocalID(ctx context.Context, localID string) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE local_id = ?`
	item, err := scanItem(r.db.QueryRowContext(ctx, query, localID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (r *SQLiteRepository) ListByCategory(ctx context.Context, category string) ([]models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE category = ? ORDER BY name ASC`
	return r.list(ctx, query, category)
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]models.Item, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM items ORDER BY name ASC`)
}

func (r *SQLiteRepository) ListUnsynced(ctx context.Context) ([]models.Item, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM items WHERE synced = 0 ORDER BY created_at ASC`)
}

func (r *SQLiteRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT category FROM items ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to select categories: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, localID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE local_id = ?`, localID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, localID, serverID string) error {
	query := `UPDATE items SET synced = 1, id = CASE WHEN ? != '' THEN ? ELSE id END WHERE local_id = ?`
	_, err := r.db.ExecContext(ctx, query, serverID, serverID, localID)
	if err != nil {
		return fmt.Errorf("failed to mark item synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select items: %w", err)
	}
	defer rows.Close()

	var result []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	item := &models.Item{}
	var synced int
	var createdAt int64
	err := row.Scan(&item.LocalID, &item.ServerID, &item.Name, &item.Category,
		&item.PriceUSD, &item.PriceZWG, &item.Quantity, &synced, &createdAt)
	if err != nil {
		return nil, err
	}
	item.Synced = synced == 1
	item.CreatedAt = common.FromUnixMillis(createdAt)
	return item, nil
}

func requireOneRow(res sql.Result) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
