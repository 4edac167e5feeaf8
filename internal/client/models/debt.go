package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtType distinguishes money the shop owes a customer from credit the shop
// extended to one.
type DebtType string

const (
	DebtChangeOwed DebtType = "CHANGE_OWED"
	DebtCreditUsed DebtType = "CREDIT_USED"
)

// Debt is a customer ledger entry. Clearing is one-way: a cleared debt is
// never reopened. Balances are all-or-nothing; applying a debt to a sale
// clears it only when both currency amounts are fully consumed.
type Debt struct {
	LocalID  string
	ServerID string

	CustomerName string
	AmountUSD    decimal.Decimal
	AmountZWG    decimal.Decimal
	Type         DebtType
	Notes        string

	CreatedAt time.Time
	Cleared   bool
	ClearedAt time.Time
	Synced    bool
}

// Active reports whether the debt still has an outstanding balance.
func (d *Debt) Active() bool { return !d.Cleared }
