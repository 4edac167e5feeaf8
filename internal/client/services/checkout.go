package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tishanyq/shopsync/internal/client/models"
	"github.com/tishanyq/shopsync/internal/client/store"
	"github.com/tishanyq/shopsync/internal/common"
	"github.com/tishanyq/shopsync/internal/logging"
)

// CheckoutService turns a cart into persisted sale rows, settling customer
// debts along the way.
type CheckoutService struct {
	store *store.Store
	log   logging.Logger
	now   func() time.Time
}

func NewCheckoutService(s *store.Store, log logging.Logger) *CheckoutService {
	return &CheckoutService{store: s, log: log.With("service", "checkout"), now: time.Now}
}

// CartLine is one item plus a quantity. Prices and the item name are
// snapshotted when the line is priced, so later edits to the item cannot
// change a recorded sale.
type CartLine struct {
	ItemID   string
	Quantity int64
}

// CheckoutInput describes one checkout.
type CheckoutInput struct {
	Lines         []CartLine
	PaymentMethod models.PaymentMethod

	// CustomerName is required when settling or creating a debt.
	CustomerName string

	// ApplyDebt applies the customer's active debt toward the total.
	ApplyDebt bool

	// ChangeOwedUSD/ZWG record change the shop could not hand back; a
	// CHANGE_OWED debt is created for the customer.
	ChangeOwedUSD decimal.Decimal
	ChangeOwedZWG decimal.Decimal
}

// CheckoutResult reports what was persisted.
type CheckoutResult struct {
	Sales []*models.Sale

	TotalUSD decimal.Decimal
	TotalZWG decimal.Decimal

	DebtAppliedUSD decimal.Decimal
	DebtAppliedZWG decimal.Decimal
	// ClearedDebtID is set when the applied debt was fully consumed.
	ClearedDebtID string

	// ChangeDebt is the CHANGE_OWED debt created, if any.
	ChangeDebt *models.Debt
}

// Checkout prices the cart against current stock, applies debt settlement and
// persists everything in one transaction. Stock is decremented per line; any
// line exceeding stock fails the whole checkout.
func (s *CheckoutService) Checkout(ctx context.Context, in *CheckoutInput) (*CheckoutResult, error) {
	if len(in.Lines) == 0 {
		return nil, common.ErrEmptyCart
	}

	now := s.now()
	res := &CheckoutResult{}
	rec := &store.CheckoutRecord{}

	for _, line := range in.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", common.ErrValidation)
		}
		item, err := s.store.GetItemByLocalID(ctx, line.ItemID)
		if err != nil {
			return nil, err
		}
		qty := decimal.NewFromInt(line.Quantity)
		sale := &models.Sale{
			LocalID:       uuid.NewString(),
			ItemID:        item.LocalID,
			ItemName:      item.Name,
			Quantity:      line.Quantity,
			TotalUSD:      item.PriceUSD.Mul(qty),
			TotalZWG:      item.PriceZWG.Mul(qty),
			PaymentMethod: in.PaymentMethod,
			SaleDate:      now,
		}
		rec.Sales = append(rec.Sales, sale)
		res.TotalUSD = res.TotalUSD.Add(sale.TotalUSD)
		res.TotalZWG = res.TotalZWG.Add(sale.TotalZWG)
	}

	if in.ApplyDebt {
		if in.CustomerName == "" {
			return nil, fmt.Errorf("%w: customer name required to apply a debt", common.ErrValidation)
		}
		debt, err := s.store.ActiveDebtByCustomer(ctx, in.CustomerName)
		if err != nil {
			return nil, err
		}

		res.DebtAppliedUSD = decimal.Min(debt.AmountUSD, res.TotalUSD)
		res.DebtAppliedZWG = decimal.Min(debt.AmountZWG, res.TotalZWG)

		// The balance is all-or-nothing: the debt clears only once the sale
		// consumes both currency amounts in full.
		if debt.AmountUSD.LessThanOrEqual(res.TotalUSD) && debt.AmountZWG.LessThanOrEqual(res.TotalZWG) {
			rec.ClearDebtID = debt.LocalID
			res.ClearedDebtID = debt.LocalID
		}

		// The applied amounts ride on the first sale row, matching how the
		// backend reconciles settlements.
		first := rec.Sales[0]
		first.DebtUsedUSD = res.DebtAppliedUSD
		first.DebtUsedZWG = res.DebtAppliedZWG
		first.DebtID = debt.LocalID
	}

	if in.ChangeOwedUSD.IsPositive() || in.ChangeOwedZWG.IsPositive() {
		if in.CustomerName == "" {
			return nil, fmt.Errorf("%w: customer name required to record change owed", common.ErrValidation)
		}
		rec.ChangeDebt = &models.Debt{
			LocalID:      uuid.NewString(),
			CustomerName: in.CustomerName,
			AmountUSD:    in.ChangeOwedUSD,
			AmountZWG:    in.ChangeOwedZWG,
			Type:         models.DebtChangeOwed,
			CreatedAt:    now,
		}
		res.ChangeDebt = rec.ChangeDebt
	}

	if err := s.store.RecordCheckout(ctx, rec); err != nil {
		return nil, err
	}

	res.Sales = rec.Sales
	s.log.Info(ctx, "checkout recorded",
		"lines", len(rec.Sales),
		"total_usd", res.TotalUSD.String(),
		"total_zwg", res.TotalZWG.String(),
		"cleared_debt", res.ClearedDebtID != "",
		"change_debt", res.ChangeDebt != nil)
	return res, nil
}

// RecordDebt creates a standalone customer debt outside a checkout, e.g.
// goods taken on credit.
func (s *CheckoutService) RecordDebt(ctx context.Context, customerName, notes string, amountUSD, amountZWG decimal.Decimal) (*models.Debt, error) {
	if customerName == "" {
		return nil, fmt.Errorf("%w: customer name required", common.ErrValidation)
	}
	if !amountUSD.IsPositive() && !amountZWG.IsPositive() {
		return nil, fmt.Errorf("%w: debt amount must be positive", common.ErrValidation)
	}
	debt := &models.Debt{
		LocalID:      uuid.NewString(),
		CustomerName: customerName,
		AmountUSD:    amountUSD,
		AmountZWG:    amountZWG,
		Type:         models.DebtCreditUsed,
		Notes:        notes,
		CreatedAt:    s.now(),
	}
	if err := s.store.AddDebt(ctx, debt); err != nil {
		return nil, err
	}
	return debt, nil
}
