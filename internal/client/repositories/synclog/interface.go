// Package synclog records the outcome of every sync attempt. The reporting
// layer uses it to drive the "sync overdue" reminder.
package synclog

import (
	"context"
	"time"
)

// Status values stored per attempt.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

type Repository interface {
	Record(ctx context.Context, at time.Time, success bool) error
	// LastSuccess returns the time of the most recent successful sync, or the
	// zero time when none exists.
	LastSuccess(ctx context.Context) (time.Time, error)
}
