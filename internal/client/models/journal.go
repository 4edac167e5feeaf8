package models

import "time"

// JournalAction is the kind of mutation a journal entry records.
type JournalAction string

const (
	ActionInsert JournalAction = "INSERT"
	ActionUpdate JournalAction = "UPDATE"
	ActionDelete JournalAction = "DELETE"
)

// JournalEntry is one row of the append-only change journal (outbox).
// Exactly one entry exists per mutating store call; entries are removed only
// as a batch after the backend acknowledges the sync that covered them.
type JournalEntry struct {
	// ID is the autoincrement primary key; it breaks timestamp ties and is
	// the commit watermark for acknowledged batches.
	ID int64

	TableName string
	RecordID  string
	Action    JournalAction
	Timestamp time.Time
}
