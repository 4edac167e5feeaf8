package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/tishanyq/shopsync/internal/client/models"
	"github.com/tishanyq/shopsync/internal/common"
	"github.com/tishanyq/shopsync/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Append(ctx context.Context, table, recordID string, action models.JournalAction) error {
	query := `INSERT INTO journal (table_name, record_id, action, timestamp) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, table, recordID, string(action), common.UnixMillis(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to append journal entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.JournalEntry, error) {
	query := `SELECT id, table_name, record_id, action, timestamp FROM journal ORDER BY timestamp ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select journal entries: %w", err)
	}
	defer rows.Close()

	var result []models.JournalEntry
	for rows.Next() {
		var e models.JournalEntry
		var action string
		var ts int64
		if err := rows.Scan(&e.ID, &e.TableName, &e.RecordID, &action, &ts); err != nil {
			return nil, err
		}
		e.Action = models.JournalAction(action)
		e.Timestamp = common.FromUnixMillis(ts)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) CommitThrough(ctx context.Context, maxID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM journal WHERE id <= ?`, maxID)
	if err != nil {
		return fmt.Errorf("failed to commit journal batch: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count journal entries: %w", err)
	}
	return n, nil
}
