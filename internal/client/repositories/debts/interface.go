// Package debts persists customer ledger entries (change owed / credit used).
package debts

import (
	"context"
	"time"

	"github.com/tishanyq/shopsync/internal/client/models"
)

// SearchFilter narrows a debt search. Zero values mean "no constraint".
type SearchFilter struct {
	CustomerName   string
	From, To       time.Time
	IncludeCleared bool
}

type Repository interface {
	Insert(ctx context.Context, debt *models.Debt) error
	GetByLocalID(ctx context.Context, localID string) (*models.Debt, error)
	// GetActiveByCustomer returns the most recent uncleared debt for a
	// customer, or common.ErrNotFound.
	GetActiveByCustomer(ctx context.Context, customerName string) (*models.Debt, error)
	ListActive(ctx context.Context) ([]models.Debt, error)
	Search(ctx context.Context, f SearchFilter) ([]models.Debt, error)
	// Clear marks a debt settled. Clearing is one-way; clearing an already
	// cleared debt returns common.ErrDebtCleared.
	Clear(ctx context.Context, localID string, at time.Time) error

	// Sync support.
	ListUnsynced(ctx context.Context) ([]models.Debt, error)
	MarkSynced(ctx context.Context, localID, serverID string) error
}
