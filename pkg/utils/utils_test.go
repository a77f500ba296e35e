package utils

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

func TestNewULIDFromTimestamp(t *testing.T) {
	u := New()
	now := time.Now()

	id, err := u.NewULIDFromTimestamp(now)
	require.NoError(t, err)
	require.Len(t, id, 26)

	parsed, err := ulid.Parse(id)
	require.NoError(t, err)
	require.Equal(t, ulid.Timestamp(now), parsed.Time())

	other, err := u.NewULIDFromTimestamp(now)
	require.NoError(t, err)
	require.NotEqual(t, id, other)
}
