package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tishanyq/shopsync/internal/client/models"
	"github.com/tishanyq/shopsync/internal/client/repositories/debts"
	"github.com/tishanyq/shopsync/internal/client/store"
)

// ReportService answers read-only questions about sales, debts and sync
// freshness. It never mutates and never journals.
type ReportService struct {
	store        *store.Store
	reminderDays int
	now          func() time.Time
}

func NewReportService(s *store.Store, reminderDays int) *ReportService {
	return &ReportService{store: s, reminderDays: reminderDays, now: time.Now}
}

// SalesSummary aggregates sales in [from, to].
type SalesSummary struct {
	Count    int
	TotalUSD decimal.Decimal
	TotalZWG decimal.Decimal

	// ByPayment counts sales per payment method.
	ByPayment map[models.PaymentMethod]int
}

func (r *ReportService) SalesSummary(ctx context.Context, from, to time.Time) (*SalesSummary, error) {
	rows, err := r.store.SalesByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	sum := &SalesSummary{ByPayment: make(map[models.PaymentMethod]int)}
	for i := range rows {
		sum.Count++
		sum.TotalUSD = sum.TotalUSD.Add(rows[i].TotalUSD)
		sum.TotalZWG = sum.TotalZWG.Add(rows[i].TotalZWG)
		sum.ByPayment[rows[i].PaymentMethod]++
	}
	return sum, nil
}

// TopItem is one row of the best-sellers report.
type TopItem struct {
	ItemID   string
	ItemName string
	Quantity int64
	TotalUSD decimal.Decimal
	TotalZWG decimal.Decimal
}

// TopItems returns up to limit items ranked by quantity sold in [from, to].
func (r *ReportService) TopItems(ctx context.Context, from, to time.Time, limit int) ([]TopItem, error) {
	rows, err := r.store.SalesByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	byItem := make(map[string]*TopItem)
	for i := range rows {
		t, ok := byItem[rows[i].ItemID]
		if !ok {
			t = &TopItem{ItemID: rows[i].ItemID, ItemName: rows[i].ItemName}
			byItem[rows[i].ItemID] = t
		}
		t.Quantity += rows[i].Quantity
		t.TotalUSD = t.TotalUSD.Add(rows[i].TotalUSD)
		t.TotalZWG = t.TotalZWG.Add(rows[i].TotalZWG)
	}

	out := make([]TopItem, 0, len(byItem))
	for _, t := range byItem {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].ItemName < out[j].ItemName
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DebtSummary aggregates outstanding customer debts.
type DebtSummary struct {
	Count    int
	TotalUSD decimal.Decimal
	TotalZWG decimal.Decimal
}

func (r *ReportService) DebtSummary(ctx context.Context) (*DebtSummary, error) {
	rows, err := r.store.ActiveDebts(ctx)
	if err != nil {
		return nil, err
	}
	sum := &DebtSummary{}
	for i := range rows {
		sum.Count++
		sum.TotalUSD = sum.TotalUSD.Add(rows[i].AmountUSD)
		sum.TotalZWG = sum.TotalZWG.Add(rows[i].AmountZWG)
	}
	return sum, nil
}

// SearchDebts passes a filter through to the store.
func (r *ReportService) SearchDebts(ctx context.Context, f debts.SearchFilter) ([]models.Debt, error) {
	return r.store.SearchDebts(ctx, f)
}

// SyncStatus is what the status screen shows about sync freshness.
type SyncStatus struct {
	LastSuccess   time.Time
	DaysSince     int
	PendingCount  int64
	NeedsReminder bool
}

// SyncStatus reports pending journal volume and how stale the last sync is.
// The reminder fires once the device has pending changes and has not synced
// for reminderDays or more, or has pending changes and has never synced.
func (r *ReportService) SyncStatus(ctx context.Context) (*SyncStatus, error) {
	last, err := r.store.LastSuccessfulSync(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := r.store.JournalCount(ctx)
	if err != nil {
		return nil, err
	}

	st := &SyncStatus{LastSuccess: last, PendingCount: pending}
	if last.IsZero() {
		st.NeedsReminder = pending > 0
		return st, nil
	}
	st.DaysSince = int(r.now().Sub(last) / (24 * time.Hour))
	st.NeedsReminder = pending > 0 && st.DaysSince >= r.reminderDays
	return st, nil
}
