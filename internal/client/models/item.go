package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is an inventory record. LocalID is client-generated, stable and never
// reused; ServerID stays empty until the first successful sync.
type Item struct {
	LocalID  string
	ServerID string

	Name     string
	Category string

	// Prices are per unit, one per accepted currency.
	PriceUSD decimal.Decimal
	PriceZWG decimal.Decimal

	// Quantity is the stock on hand. Never negative: sale completion rejects
	// a decrement below zero instead of clamping.
	Quantity int64

	CreatedAt time.Time
	Synced    bool
}
