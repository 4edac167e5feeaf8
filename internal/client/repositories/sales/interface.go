// Package sales persists checkout records. Sale rows are written once and
// never updated; only the sync bookkeeping columns change afterwards.
package sales

import (
	"context"
	"time"

	"github.com/tishanyq/shopsync/internal/client/models"
)

type Repository interface {
	Insert(ctx context.Context, sale *models.Sale) error
	// ListByDateRange returns sales with sale_date in [from, to], newest first.
	ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Sale, error)
	// CountByItem returns how many sale rows reference the given item.
	CountByItem(ctx context.Context, itemID string) (int64, error)

	// Sync support.
	ListUnsynced(ctx context.Context) ([]models.Sale, error)
	MarkSynced(ctx context.Context, localID, serverID string) error
}
