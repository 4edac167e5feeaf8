// Package shops persists the singleton shop profile row.
package shops

import (
	"context"

	"github.com/tishanyq/shopsync/internal/client/models"
)

// Repository is the shop profile contract. Exactly one row exists per
// installation; Get returns common.ErrNotFound before registration.
type Repository interface {
	Save(ctx context.Context, shop *models.Shop) error
	Get(ctx context.Context) (*models.Shop, error)
	// UpdatePINHash replaces the PIN hash and flags the row for upload.
	UpdatePINHash(ctx context.Context, hash string) error
	// SetServerID stamps the backend-assigned id and marks the row synced.
	SetServerID(ctx context.Context, serverID string) error
	// MarkSynced flips the synced flag after an acknowledged upload,
	// stamping the server id when one is provided.
	MarkSynced(ctx context.Context, serverID string) error
}
