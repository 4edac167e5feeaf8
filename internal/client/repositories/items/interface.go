// Package items persists inventory records.
package items

import (
	"context"

	"github.com/tishanyq/shopsync/internal/client/models"
)

// Repository is the inventory contract. Mutations are plain row operations;
// journaling and transaction scope belong to the store layer.
type Repository interface {
	Insert(ctx context.Context, item *models.Item) error
	Update(ctx context.Context, item *models.Item) error
	// SetQuantity overwrites the stock level. Callers enforce non-negativity
	// before the write; the schema rejects negatives as a last line.
	SetQuantity(ctx context.Context, localID string, quantity int64) error
	GetByLocalID(ctx context.Context, localID string) (*models.Item, error)
	ListByCategory(ctx context.Context, category string) ([]models.Item, error)
	ListAll(ctx context.Context) ([]models.Item, error)
	Categories(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, localID string) error

	// Sync support.
	ListUnsynced(ctx context.Context) ([]models.Item, error)
	MarkSynced(ctx context.Context, localID, serverID string) error
}
