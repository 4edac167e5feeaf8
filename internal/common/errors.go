// Package common defines shared constants and sentinel errors used across
// the ShopSync client. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors are resolved at the boundary and never reach the network.
	ErrValidation        = errors.New("validation error")
	ErrInvalidProductKey = errors.New("invalid product key format")
	ErrInvalidPIN        = errors.New("invalid pin")

	// Sync / transport errors.
	ErrNetworkUnavailable = errors.New("network unavailable")
	ErrServer             = errors.New("server error")
	ErrParse              = errors.New("unexpected response shape")
	ErrSyncInProgress     = errors.New("sync already in progress")

	// License errors.
	ErrAuth           = errors.New("authorization error")
	ErrLicenseExpired = errors.New("license expired")
	ErrNotRegistered  = errors.New("device not registered")
	ErrNotActivated   = errors.New("license not activated")

	// Checkout / inventory errors.
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrDebtCleared       = errors.New("debt already cleared")
	ErrItemInUse         = errors.New("item is referenced by recorded sales")
)
