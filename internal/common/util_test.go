package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUnixMillis_ZeroMapsBothWays(t *testing.T) {
	assert.Equal(t, int64(0), UnixMillis(time.Time{}))
	assert.True(t, FromUnixMillis(0).IsZero())
}

func TestUnixMillis_RoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	assert.True(t, FromUnixMillis(UnixMillis(now)).Equal(now))
}
