package artifacts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotKey(t *testing.T) {
	at := time.Date(2024, 3, 9, 7, 5, 1, 0, time.UTC)
	assert.Equal(t, "backups/u1/20240309-070501.json", SnapshotKey("/backups/", "u1", at))
	assert.Equal(t, "anonymous/20240309-070501.json", SnapshotKey("", " ", at))
	assert.Equal(t, "backups/u1/", SnapshotPrefix("backups", "u1"))
}

func TestNoopStore(t *testing.T) {
	ctx := context.Background()
	s := NewNoopStore()
	require.ErrorIs(t, s.Put(ctx, "k", []byte("{}"), "application/json"), ErrNotConfigured)
	_, _, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotConfigured)
	_, err = s.List(ctx, "")
	require.ErrorIs(t, err, ErrNotConfigured)
	require.ErrorIs(t, s.Delete(ctx, "k"), ErrNotConfigured)
	require.NoError(t, s.Close())
}
