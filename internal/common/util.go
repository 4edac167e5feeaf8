package common

import "time"

// UnixMillis converts a time to the Unix-millisecond representation used on
// the wire and in the local database.
func UnixMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// FromUnixMillis is the inverse of UnixMillis. Zero maps to the zero time.
func FromUnixMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
