package activity

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLog(t *testing.T) *Log {
	t.Helper()

	log, err := Open(filepath.Join(t.TempDir(), "activity.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })
	return log
}

func TestRecordAndListRecent(t *testing.T) {
	log := setupLog(t)
	ctx := context.Background()

	log.Record(ctx, "photo.imported", "photo-1", "sunset.jpg")
	log.Record(ctx, "album.created", "album-1", "Vacation")

	events, err := log.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Most recent first.
	assert.Equal(t, "album.created", events[0].Action)
	assert.Equal(t, "photo.imported", events[1].Action)
	assert.NotEmpty(t, events[0].ID)
	assert.False(t, events[0].CreatedAt.IsZero())
}

func TestListRecent_Limit(t *testing.T) {
	log := setupLog(t)
	ctx := context.Background()

	for range 5 {
		log.Record(ctx, "photo.imported", "", "")
	}

	events, err := log.ListRecent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestPrune(t *testing.T) {
	log := setupLog(t)
	ctx := context.Background()

	log.Record(ctx, "photo.imported", "photo-1", "")

	// Nothing is older than an hour yet.
	removed, err := log.Prune(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)

	// A zero retention prunes everything recorded so far.
	removed, err = log.Prune(ctx, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)
}
