package models

import (
	"regexp"
	"strings"
	"time"
)

// LicenseStatus is the device authorization state, evaluated lazily from the
// persisted Authorization record. Expiry is never stored as a transition;
// it is recomputed on every access.
type LicenseStatus string

const (
	StatusUnregistered      LicenseStatus = "UNREGISTERED"
	StatusPendingActivation LicenseStatus = "PENDING_ACTIVATION"
	StatusActive            LicenseStatus = "ACTIVE"
	StatusExpired           LicenseStatus = "EXPIRED"
)

// Authorization is the persisted device license record. It lives in its own
// table so it survives even if the business tables are wiped.
type Authorization struct {
	AppID  string
	ShopID string

	// DeviceSlot is assigned by the backend (1..quota). The client never
	// invents or renumbers a slot.
	DeviceSlot int

	ActivatedAt time.Time
	ExpiresAt   time.Time
	Activated   bool

	// ProductKeyMasked keeps only the last key group for display.
	ProductKeyMasked string
}

// Status derives the license state at the given instant.
func (a *Authorization) Status(now time.Time) LicenseStatus {
	if a == nil || a.AppID == "" || a.ShopID == "" {
		return StatusUnregistered
	}
	if !a.Activated {
		return StatusPendingActivation
	}
	if a.ExpiresAt.IsZero() || !now.Before(a.ExpiresAt) {
		return StatusExpired
	}
	return StatusActive
}

// Registered reports whether the device holds a backend identity.
func (a *Authorization) Registered() bool {
	return a != nil && a.AppID != "" && a.ShopID != ""
}

// DaysRemaining returns whole days until expiry, never negative.
func (a *Authorization) DaysRemaining(now time.Time) int {
	if a == nil || a.ExpiresAt.IsZero() || !now.Before(a.ExpiresAt) {
		return 0
	}
	return int(a.ExpiresAt.Sub(now) / (24 * time.Hour))
}

// productKeyRe matches the fixed 19-character key pattern: four 4-character
// uppercase alphanumeric groups separated by hyphens.
var productKeyRe = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

// ValidProductKey checks key syntax only. Validity and expiry are always
// decided by the backend.
func ValidProductKey(key string) bool {
	return productKeyRe.MatchString(key)
}

// NormalizeProductKey uppercases and trims a user-entered key.
func NormalizeProductKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// MaskProductKey hides all but the last group of a key for display.
func MaskProductKey(key string) string {
	if key == "" {
		return ""
	}
	parts := strings.Split(key, "-")
	if len(parts) == 4 {
		return "****-****-****-" + parts[3]
	}
	if len(key) >= 4 {
		return "****-****-****-" + key[len(key)-4:]
	}
	return "****"
}
