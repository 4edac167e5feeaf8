package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/tishanyq/shopsync/internal/client/models"
	"github.com/tishanyq/shopsync/internal/common"
	"github.com/tishanyq/shopsync/internal/dbx"
)

const saleColumns = `local_id, id, item_id, item_name, quantity, total_usd, total_zwg,
	payment_method, debt_used_usd, debt_used_zwg, debt_id, sale_date, synced`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, sale *models.Sale) error {
	query := `INSERT INTO sales (` + saleColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		sale.LocalID, sale.ServerID, sale.ItemID, sale.ItemName, sale.Quantity,
		sale.TotalUSD, sale.TotalZWG, string(sale.PaymentMethod),
		sale.DebtUsedUSD, sale.DebtUsedZWG, sale.DebtID,
		common.UnixMillis(sale.SaleDate), boolToInt(sale.Synced))
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE sale_date BETWEEN ? AND ? ORDER BY sale_date DESC`
	return r.list(ctx, query, common.UnixMillis(from), common.UnixMillis(to))
}

func (r *SQLiteRepository) CountByItem(ctx context.Context, itemID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM sales WHERE item_id = ?`, itemID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count sales by item: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) ListUnsynced(ctx context.Context) ([]models.Sale, error) {
	return r.list(ctx, `SELECT `+saleColumns+` FROM sales WHERE synced = 0 ORDER BY sale_date ASC`)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, localID, serverID string) error {
	query := `UPDATE sales SET synced = 1, id = CASE WHEN ? != '' THEN ? ELSE id END WHERE local_id = ?`
	if _, err := r.db.ExecContext(ctx, query, serverID, serverID, localID); err != nil {
		return fmt.Errorf("failed to mark sale synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.Sale, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select sales: %w", err)
	}
	defer rows.Close()

	var result []models.Sale
	for rows.Next() {
		var s models.Sale
		var method string
		var saleDate int64
		var synced int
		if err := rows.Scan(&s.LocalID, &s.ServerID, &s.ItemID, &s.ItemName, &s.Quantity,
			&s.TotalUSD, &s.TotalZWG, &method, &s.DebtUsedUSD, &s.DebtUsedZWG,
			&s.DebtID, &saleDate, &synced); err != nil {
			return nil, err
		}
		s.PaymentMethod = models.PaymentMethod(method)
		s.SaleDate = common.FromUnixMillis(saleDate)
		s.Synced = synced == 1
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
