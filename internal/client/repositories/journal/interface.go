// Package journal persists the append-only change journal (outbox) consumed
// by the sync client.
package journal

import (
	"context"

	"github.com/tishanyq/shopsync/internal/client/models"
)

// Repository is the change journal contract.
//
// List and CommitThrough are split on purpose: a sync reads the full pending
// sequence without removing it, and removes it only after the backend
// acknowledged the batch. A failed sync leaves the journal intact for retry.
type Repository interface {
	// Append records one mutation. Called exactly once per mutating store
	// call, inside the same transaction as the row write.
	Append(ctx context.Context, table, recordID string, action models.JournalAction) error

	// List returns all pending entries ordered by timestamp, ties broken by
	// insertion order. The journal is not modified.
	List(ctx context.Context) ([]models.JournalEntry, error)

	// CommitThrough deletes entries with id <= maxID after a confirmed ack.
	CommitThrough(ctx context.Context, maxID int64) error

	// Count returns the number of pending entries.
	Count(ctx context.Context) (int64, error)
}
