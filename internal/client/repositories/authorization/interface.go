// Package authorization persists the device license record. It is kept apart
// from the business tables so wiping business data never touches it.
package authorization

import (
	"context"

	"github.com/tishanyq/shopsync/internal/client/models"
)

type Repository interface {
	// Load returns the stored authorization. Before registration it returns
	// a zero record (Status == Unregistered), not an error.
	Load(ctx context.Context) (*models.Authorization, error)

	// Save upserts the whole record. Registration, activation and renewal
	// all persist their fields through this single call so the record is
	// written atomically.
	Save(ctx context.Context, a *models.Authorization) error

	// ClearActivation drops the activation window but keeps the device
	// identity. Used on a confirmed 403-expired from the backend.
	ClearActivation(ctx context.Context) error
}
