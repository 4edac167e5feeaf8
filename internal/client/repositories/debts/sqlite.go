package debts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tishanyq/shopsync/internal/client/models"
	"github.com/tishanyq/shopsync/internal/common"
	"github.com/tishanyq/shopsync/internal/dbx"
)

const debtColumns = `local_id, id, customer_name, amount_usd, amount_zwg, type, notes,
	created_at, cleared, cleared_at, synced`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, debt *models.Debt) error {
	query := `INSERT INTO debts (` + debtColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		debt.LocalID, debt.ServerID, debt.CustomerName,
		debt.AmountUSD, debt.AmountZWG, string(debt.Type), debt.Notes,
		common.UnixMillis(debt.CreatedAt), boolToInt(debt.Cleared),
		common.UnixMillis(debt.ClearedAt), boolToInt(debt.Synced))
	if err != nil {
		return fmt.Errorf("failed to insert debt: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByLocalID(ctx context.Context, localID string) (*models.Debt, error) {
	query := `SELECT ` + debtColumns + ` FROM debts WHERE local_id = ?`
	debt, err := scanDebt(r.db.QueryRowContext(ctx, query, localID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get debt: %w", err)
	}
	return debt, nil
}

func (r *SQLiteRepository) GetActiveByCustomer(ctx context.Context, customerName string) (*models.Debt, error) {
	query := `SELECT ` + debtColumns + ` FROM debts
			WHERE customer_name = ? AND cleared = 0 ORDER BY created_at DESC LIMIT 1`
	debt, err := scanDebt(r.db.QueryRowContext(ctx, query, customerName))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get debt by customer: %w", err)
	}
	return debt, nil
}

func (r *SQLiteRepository) ListActive(ctx context.Context) ([]models.Debt, error) {
	return r.list(ctx, `SELECT `+debtColumns+` FROM debts WHERE cleared = 0 ORDER BY created_at DESC`)
}

func (r *SQLiteRepository) Search(ctx context.Context, f SearchFilter) ([]models.Debt, error) {
	var conds []string
	var args []any

	if f.CustomerName != "" {
		conds = append(conds, "customer_name LIKE ?")
		args = append(args, "%"+f.CustomerName+"%")
	}
	if !f.From.IsZero() && !f.To.IsZero() {
		conds = append(conds, "created_at BETWEEN ? AND ?")
		args = append(args, common.UnixMillis(f.From), common.UnixMillis(f.To))
	}
	if !f.IncludeCleared {
		conds = append(conds, "cleared = 0")
	}

	query := `SELECT ` + debtColumns + ` FROM debts`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	return r.list(ctx, query, args...)
}

func (r *SQLiteRepository) Clear(ctx context.Context, localID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE debts SET cleared = 1, cleared_at = ?, synced = 0 WHERE local_id = ? AND cleared = 0`,
		common.UnixMillis(at), localID)
	if err != nil {
		return fmt.Errorf("failed to clear debt: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		if _, err := r.GetByLocalID(ctx, localID); err != nil {
			return err
		}
		return common.ErrDebtCleared
	}
	return nil
}

func (r *SQLiteRepository) ListUnsynced(ctx context.Context) ([]models.Debt, error) {
	return r.list(ctx, `SELECT `+debtColumns+` FROM debts WHERE synced = 0 ORDER BY created_at ASC`)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, localID, serverID string) error {
	query := `UPDATE debts SET synced = 1, id = CASE WHEN ? != '' THEN ? ELSE id END WHERE local_id = ?`
	if _, err := r.db.ExecContext(ctx, query, serverID, serverID, localID); err != nil {
		return fmt.Errorf("failed to mark debt synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.Debt, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select debts: %w", err)
	}
	defer rows.Close()

	var result []models.Debt
	for rows.Next() {
		debt, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *debt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDebt(row rowScanner) (*models.Debt, error) {
	d := &models.Debt{}
	var typ string
	var createdAt, clearedAt int64
	var cleared, synced int
	err := row.Scan(&d.LocalID, &d.ServerID, &d.CustomerName,
		&d.AmountUSD, &d.AmountZWG, &typ, &d.Notes,
		&createdAt, &cleared, &clearedAt, &synced)
	if err != nil {
		return nil, err
	}
	d.Type = models.DebtType(typ)
	d.CreatedAt = common.FromUnixMillis(createdAt)
	d.Cleared = cleared == 1
	d.ClearedAt = common.FromUnixMillis(clearedAt)
	d.Synced = synced == 1
	return d, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
