// Package store is the Entity Store: durable, journaled storage for the
// shop profile, inventory, sales and debts.
//
// Every mutating call persists the row change and appends the matching
// change-journal entry inside one transaction; a failure rolls back both.
// Reads never mutate and never journal.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tishanyq/shopsync/internal/client/models"
	"github.com/tishanyq/shopsync/internal/client/repositories/authorization"
	"github.com/tishanyq/shopsync/internal/client/repositories/debts"
	"github.com/tishanyq/shopsync/internal/client/repositories/items"
	"github.com/tishanyq/shopsync/internal/client/repositories/journal"
	"github.com/tishanyq/shopsync/internal/client/repositories/sales"
	"github.com/tishanyq/shopsync/internal/client/repositories/shops"
	"github.com/tishanyq/shopsync/internal/client/repositories/synclog"
	"github.com/tishanyq/shopsync/internal/common"
	"github.com/tishanyq/shopsync/internal/dbx"
)

// Store owns the database handle and builds repositories bound either to the
// handle (reads) or to a transaction (mutations).
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// DB exposes the underlying handle for components that need their own
// repositories (the sync client, the license manager).
func (s *Store) DB() *sql.DB { return s.db }

// --- Shop ---

func (s *Store) SaveShop(ctx context.Context, shop *models.Shop) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := shops.NewSQLiteRepository(tx).Save(ctx, shop); err != nil {
			return err
		}
		return journal.NewSQLiteRepository(tx).Append(ctx, models.TableShop, models.TableShop, models.ActionInsert)
	})
}

func (s *Store) Shop(ctx context.Context) (*models.Shop, error) {
	return shops.NewSQLiteRepository(s.db).Get(ctx)
}

func (s *Store) UpdateShopPIN(ctx context.Context, pinHash string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := shops.NewSQLiteRepository(tx).UpdatePINHash(ctx, pinHash); err != nil {
			return err
		}
		return journal.NewSQLiteRepository(tx).Append(ctx, models.TableShop, models.TableShop, models.ActionUpdate)
	})
}

// SetShopServerID stamps the backend-assigned shop id. The id comes from the
// server, so the write is bookkeeping, not a journaled mutation.
func (s *Store) SetShopServerID(ctx context.Context, serverID string) error {
	return shops.NewSQLiteRepository(s.db).SetServerID(ctx, serverID)
}

// --- Items ---

func (s *Store) AddItem(ctx context.Context, item *models.Item) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := items.NewSQLiteRepository(tx).Insert(ctx, item); err != nil {
			return err
		}
		return journal.NewSQLiteRepository(tx).Append(ctx, models.TableItems, item.LocalID, models.ActionInsert)
	})
}

func (s *Store) UpdateItem(ctx context.Context, item *models.Item) error {
	item.Synced = false
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := items.NewSQLiteRepository(tx).Update(ctx, item); err != nil {
			return err
		}
		return journal.NewSQLiteRepository(tx).Append(ctx, models.TableItems, item.LocalID, models.ActionUpdate)
	})
}

// DeleteItem removes an inventory item. Items referenced by recorded sales
// are kept so past sales stay resolvable; the delete fails with
// common.ErrItemInUse.
func (s *Store) DeleteItem(ctx context.Context, localID string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := sales.NewSQLiteRepository(tx).CountByItem(ctx, localID)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %d sale(s)", common.ErrItemInUse, n)
		}
		if err := items.NewSQLiteRepository(tx).Delete(ctx, localID); err != nil {
			return err
		}
		return journal.NewSQLiteRepository(tx).Append(ctx, models.TableItems, localID, models.ActionDelete)
	})
}

func (s *Store) GetItemByLocalID(ctx context.Context, localID string) (*models.Item, error) {
	return items.NewSQLiteRepository(s.db).GetByLocalID(ctx, localID)
}

func (s *Store) ItemsByCategory(ctx context.Context, category string) ([]models.Item, error) {
	return items.NewSQLiteRepository(s.db).ListByCategory(ctx, category)
}

func (s *Store) Items(ctx context.Context) ([]models.Item, error) {
	return items.NewSQLiteRepository(s.db).ListAll(ctx)
}

func (s *Store) Categories(ctx context.Context) ([]string, error) {
	return items.NewSQLiteRepository(s.db).Categories(ctx)
}

// --- Checkout ---

// CheckoutRecord is everything one checkout persists: a sale row per cart
// line, an optional new change-owed debt, and an optional fully-covered debt
// to clear.
type CheckoutRecord struct {
	Sales       []*models.Sale
	ChangeDebt  *models.Debt
	ClearDebtID string
}

// RecordCheckout applies the whole checkout in a single transaction. Each
// sale decrements its item's stock; a requested quantity above current stock
// fails the entire checkout with common.ErrInsufficientStock.
func (s *Store) RecordCheckout(ctx context.Context, rec *CheckoutRecord) error {
	if len(rec.Sales) == 0 {
		return common.ErrEmptyCart
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		itemRepo := items.NewSQLiteRepository(tx)
		saleRepo := sales.NewSQLiteRepository(tx)
		debtRepo := debts.NewSQLiteRepository(tx)
		journalRepo := journal.NewSQLiteRepository(tx)

		for _, sale := range rec.Sales {
			item, err := itemRepo.GetByLocalID(ctx, sale.ItemID)
			if err != nil {
				return err
			}
			if sale.Quantity > item.Quantity {
				return fmt.Errorf("%w: %s has %d, requested %d",
					common.ErrInsufficientStock, item.Name, item.Quantity, sale.Quantity)
			}
			if err := itemRepo.SetQuantity(ctx, item.LocalID, item.Quantity-sale.Quantity); err != nil {
				return err
			}
			if err := journalRepo.Append(ctx, models.TableItems, item.LocalID, models.ActionUpdate); err != nil {
				return err
			}

			if err := saleRepo.Insert(ctx, sale); err != nil {
				return err
			}
			if err := journalRepo.Append(ctx, models.TableSales, sale.LocalID, models.ActionInsert); err != nil {
				return err
			}
		}

		if rec.ChangeDebt != nil {
			if err := debtRepo.Insert(ctx, rec.ChangeDebt); err != nil {
				return err
			}
			if err := journalRepo.Append(ctx, models.TableDebts, rec.ChangeDebt.LocalID, models.ActionInsert); err != nil {
				return err
			}
		}

		if rec.ClearDebtID != "" {
			if err := debtRepo.Clear(ctx, rec.ClearDebtID, s.now()); err != nil {
				return err
			}
			if err := journalRepo.Append(ctx, models.TableDebts, rec.ClearDebtID, models.ActionUpdate); err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *Store) SalesByDateRange(ctx context.Context, from, to time.Time) ([]models.Sale, error) {
	return sales.NewSQLiteRepository(s.db).ListByDateRange(ctx, from, to)
}

// --- Debts ---

func (s *Store) AddDebt(ctx context.Context, debt *models.Debt) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := debts.NewSQLiteRepository(tx).Insert(ctx, debt); err != nil {
			return err
		}
		return journal.NewSQLiteRepository(tx).Append(ctx, models.TableDebts, debt.LocalID, models.ActionInsert)
	})
}

func (s *Store) ClearDebt(ctx context.Context, localID string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := debts.NewSQLiteRepository(tx).Clear(ctx, localID, s.now()); err != nil {
			return err
		}
		return journal.NewSQLiteRepository(tx).Append(ctx, models.TableDebts, localID, models.ActionUpdate)
	})
}

func (s *Store) DebtByLocalID(ctx context.Context, localID string) (*models.Debt, error) {
	return debts.NewSQLiteRepository(s.db).GetByLocalID(ctx, localID)
}

func (s *Store) ActiveDebtByCustomer(ctx context.Context, customerName string) (*models.Debt, error) {
	return debts.NewSQLiteRepository(s.db).GetActiveByCustomer(ctx, customerName)
}

func (s *Store) ActiveDebts(ctx context.Context) ([]models.Debt, error) {
	return debts.NewSQLiteRepository(s.db).ListActive(ctx)
}

func (s *Store) SearchDebts(ctx context.Context, f debts.SearchFilter) ([]models.Debt, error) {
	return debts.NewSQLiteRepository(s.db).Search(ctx, f)
}

// --- Sync support ---

func (s *Store) JournalEntries(ctx context.Context) ([]models.JournalEntry, error) {
	return journal.NewSQLiteRepository(s.db).List(ctx)
}

func (s *Store) JournalCount(ctx context.Context) (int64, error) {
	return journal.NewSQLiteRepository(s.db).Count(ctx)
}

func (s *Store) UnsyncedItems(ctx context.Context) ([]models.Item, error) {
	return items.NewSQLiteRepository(s.db).ListUnsynced(ctx)
}

func (s *Store) UnsyncedSales(ctx context.Context) ([]models.Sale, error) {
	return sales.NewSQLiteRepository(s.db).ListUnsynced(ctx)
}

func (s *Store) UnsyncedDebts(ctx context.Context) ([]models.Debt, error) {
	return debts.NewSQLiteRepository(s.db).ListUnsynced(ctx)
}

// SyncAck is the locally applied result of an acknowledged sync batch:
// server-assigned ids per record, the journal watermark covered by the
// batch, and the attempt time.
type SyncAck struct {
	// ShopSynced marks the shop profile as uploaded; ShopServerID, when
	// present, stamps the backend-assigned shop id at the same time.
	ShopSynced   bool
	ShopServerID string

	ItemIDs map[string]string
	SaleIDs map[string]string
	DebtIDs map[string]string

	MaxJournalID int64
	At           time.Time
}

// ApplySyncAck stamps server ids, flips synced flags, commits the journal
// batch and records the successful attempt, all in one transaction. Failed
// attempts never reach this method, so the journal survives them untouched.
func (s *Store) ApplySyncAck(ctx context.Context, ack *SyncAck) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if ack.ShopSynced {
			if err := shops.NewSQLiteRepository(tx).MarkSynced(ctx, ack.ShopServerID); err != nil {
				return err
			}
		}
		itemRepo := items.NewSQLiteRepository(tx)
		for localID, serverID := range ack.ItemIDs {
			if err := itemRepo.MarkSynced(ctx, localID, serverID); err != nil {
				return err
			}
		}
		saleRepo := sales.NewSQLiteRepository(tx)
		for localID, serverID := range ack.SaleIDs {
			if err := saleRepo.MarkSynced(ctx, localID, serverID); err != nil {
				return err
			}
		}
		debtRepo := debts.NewSQLiteRepository(tx)
		for localID, serverID := range ack.DebtIDs {
			if err := debtRepo.MarkSynced(ctx, localID, serverID); err != nil {
				return err
			}
		}
		if ack.MaxJournalID > 0 {
			if err := journal.NewSQLiteRepository(tx).CommitThrough(ctx, ack.MaxJournalID); err != nil {
				return err
			}
		}
		return synclog.NewSQLiteRepository(tx).Record(ctx, ack.At, true)
	})
}

// RecordSyncAttempt logs a failed attempt (successes go through ApplySyncAck).
func (s *Store) RecordSyncAttempt(ctx context.Context, at time.Time, success bool) error {
	return synclog.NewSQLiteRepository(s.db).Record(ctx, at, success)
}

func (s *Store) LastSuccessfulSync(ctx context.Context) (time.Time, error) {
	return synclog.NewSQLiteRepository(s.db).LastSuccess(ctx)
}

// --- Authorization ---

func (s *Store) Authorization(ctx context.Context) (*models.Authorization, error) {
	return authorization.NewSQLiteRepository(s.db).Load(ctx)
}

func (s *Store) SaveAuthorization(ctx context.Context, a *models.Authorization) error {
	return authorization.NewSQLiteRepository(s.db).Save(ctx, a)
}

func (s *Store) ClearAuthorization(ctx context.Context) error {
	return authorization.NewSQLiteRepository(s.db).ClearActivation(ctx)
}

// --- Maintenance ---

// WipeBusinessData deletes entity tables and the journal. The device
// authorization record is deliberately left intact.
func (s *Store) WipeBusinessData(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, table := range []string{"sales", "debts", "items", "journal", "sync_log"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("failed to wipe %s: %w", table, err)
			}
		}
		return nil
	})
}
