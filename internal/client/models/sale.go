package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod classifies how a sale was settled.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "CASH"
	PaymentMobile PaymentMethod = "MOBILE"
	PaymentDebt   PaymentMethod = "DEBT"
)

// Sale is an immutable checkout record. ItemName and the totals are snapshots
// taken at sale time; later price or name edits must not alter them.
type Sale struct {
	LocalID  string
	ServerID string

	// ItemID references Item.LocalID.
	ItemID   string
	ItemName string
	Quantity int64

	// Totals are price-at-sale-time multiplied by quantity.
	TotalUSD decimal.Decimal
	TotalZWG decimal.Decimal

	PaymentMethod PaymentMethod

	// DebtUsed* record how much of an existing debt was applied as payment.
	DebtUsedUSD decimal.Decimal
	DebtUsedZWG decimal.Decimal
	// DebtID optionally references the applied Debt.LocalID.
	DebtID string

	SaleDate time.Time
	Synced   bool
}
