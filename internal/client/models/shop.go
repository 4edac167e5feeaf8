// Package models defines client-side data models used by the ShopSync POS
// client: the entities persisted in the local store, the change journal
// record, and the device authorization (license) state.
package models

// Shop is the singleton profile row for this installation. It is created at
// registration and never deleted in normal operation.
type Shop struct {
	// ServerID is assigned by the backend on registration; empty until then.
	ServerID string

	Name         string
	OwnerName    string
	OwnerSurname string
	PhoneNumber  string
	Services     string
	Address      string

	// PINHash is the bcrypt hash of the 4-digit access PIN. The clear PIN is
	// never persisted.
	PINHash string

	// Synced reports whether the profile has reached the backend.
	Synced bool
}

// Table names as they appear in journal entries and the sync payload.
const (
	TableShop  = "shop"
	TableItems = "items"
	TableSales = "sales"
	TableDebts = "debts"
)
