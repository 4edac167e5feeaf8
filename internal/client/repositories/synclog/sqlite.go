package synclog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

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

func (r *SQLiteRepository) Record(ctx context.Context, at time.Time, success bool) error {
	status := StatusFailed
	if success {
		status = StatusSuccess
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sync_log (sync_date, status) VALUES (?, ?)`, common.UnixMillis(at), status)
	if err != nil {
		return fmt.Errorf("failed to record sync attempt: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) LastSuccess(ctx context.Context) (time.Time, error) {
	var ms sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(sync_date) FROM sync_log WHERE status = ?`, StatusSuccess).Scan(&ms)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last sync time: %w", err)
	}
	if !ms.Valid {
		return time.Time{}, nil
	}
	return common.FromUnixMillis(ms.Int64), nil
}
