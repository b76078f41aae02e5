package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenapp/lumen-server/internal/domain"
)

func TestSaveTag(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	tag := &domain.Tag{ID: "tag-001", Name: "sunset", Color: "#ff8800"}
	require.NoError(t, store.SaveTag(ctx, tag))

	retrieved, err := store.GetTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "sunset", retrieved.Name)
	assert.Equal(t, "#ff8800", retrieved.Color)
}

func TestFindTagByName(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.SaveTag(ctx, &domain.Tag{ID: "tag-001", Name: "sunset"}))

	tag, err := store.FindTagByName(ctx, "sunset")
	require.NoError(t, err)
	assert.Equal(t, "tag-001", tag.ID)

	// Matching is exact, not case-insensitive.
	_, err = store.FindTagByName(ctx, "Sunset")
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestListTags_ByCountDescending(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.SaveTag(ctx, &domain.Tag{ID: "tag-1", Name: "beach", Count: 2}))
	require.NoError(t, store.SaveTag(ctx, &domain.Tag{ID: "tag-2", Name: "sunset", Count: 5}))
	require.NoError(t, store.SaveTag(ctx, &domain.Tag{ID: "tag-3", Name: "family", Count: 2}))

	tags, err := store.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, "sunset", tags[0].Name)
	// Equal counts order alphabetically.
	assert.Equal(t, "beach", tags[1].Name)
	assert.Equal(t, "family", tags[2].Name)
}

func TestApplyTagToPhotos(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.SavePhoto(ctx, testPhoto("photo-1", now)))
	require.NoError(t, store.SavePhoto(ctx, testPhoto("photo-2", now)))
	require.NoError(t, store.SaveTag(ctx, &domain.Tag{ID: "tag-001", Name: "sunset"}))

	tag, err := store.ApplyTagToPhotos(ctx, "tag-001", []string{"photo-1", "photo-2"})
	require.NoError(t, err)
	assert.Equal(t, 2, tag.Count)

	p, err := store.GetPhoto(ctx, "photo-1")
	require.NoError(t, err)
	assert.Contains(t, p.Tags, "sunset")
}

func TestApplyTagToPhotos_IdempotentCount(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.SavePhoto(ctx, testPhoto("photo-1", time.Now())))
	require.NoError(t, store.SaveTag(ctx, &domain.Tag{ID: "tag-001", Name: "sunset"}))

	_, err := store.ApplyTagToPhotos(ctx, "tag-001", []string{"photo-1"})
	require.NoError(t, err)

	// Re-applying to the same photo must not inflate the count.
	tag, err := store.ApplyTagToPhotos(ctx, "tag-001", []string{"photo-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, tag.Count)
}

func TestRemoveTagFromPhoto(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.SavePhoto(ctx, testPhoto("photo-1", time.Now())))
	require.NoError(t, store.SaveTag(ctx, &domain.Tag{ID: "tag-001", Name: "sunset"}))

	_, err := store.ApplyTagToPhotos(ctx, "tag-001", []string{"photo-1"})
	require.NoError(t, err)

	tag, err := store.RemoveTagFromPhoto(ctx, "tag-001", "photo-1")
	require.NoError(t, err)
	assert.Equal(t, 0, tag.Count)

	p, err := store.GetPhoto(ctx, "photo-1")
	require.NoError(t, err)
	assert.NotContains(t, p.Tags, "sunset")
}

func TestRemoveTagFromPhoto_NeverNegative(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	// Photo carries the tag name but the tag's count is already zero,
	// simulating a stale denormalized count.
	p := testPhoto("photo-1", time.Now())
	p.Tags = []string{"sunset"}
	require.NoError(t, store.SavePhoto(ctx, p))
	require.NoError(t, store.SaveTag(ctx, &domain.Tag{ID: "tag-001", Name: "sunset", Count: 0}))

	tag, err := store.RemoveTagFromPhoto(ctx, "tag-001", "photo-1")
	require.NoError(t, err)
	assert.Equal(t, 0, tag.Count)
}

func TestUpdateTag_RenamePropagatesToPhotos(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.SavePhoto(ctx, testPhoto("photo-1", time.Now())))
	require.NoError(t, store.SaveTag(ctx, &domain.Tag{ID: "tag-001", Name: "sunset"}))

	_, err := store.ApplyTagToPhotos(ctx, "tag-001", []string{"photo-1"})
	require.NoError(t, err)

	updated, err := store.UpdateTag(ctx, "tag-001", func(tag *domain.Tag) {
		tag.Name = "golden-hour"
	})
	require.NoError(t, err)
	assert.Equal(t, "golden-hour", updated.Name)

	p, err := store.GetPhoto(ctx, "photo-1")
	require.NoError(t, err)
	assert.Contains(t, p.Tags, "golden-hour")
	assert.NotContains(t, p.Tags, "sunset")
}

func TestDeleteTag_StripsFromPhotos(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.SavePhoto(ctx, testPhoto("photo-1", time.Now())))
	require.NoError(t, store.SaveTag(ctx, &domain.Tag{ID: "tag-001", Name: "sunset"}))

	_, err := store.ApplyTagToPhotos(ctx, "tag-001", []string{"photo-1"})
	require.NoError(t, err)

	require.NoError(t, store.DeleteTag(ctx, "tag-001"))

	_, err = store.GetTag(ctx, "tag-001")
	assert.ErrorIs(t, err, ErrTagNotFound)

	p, err := store.GetPhoto(ctx, "photo-1")
	require.NoError(t, err)
	assert.NotContains(t, p.Tags, "sunset")
}

func TestRecalculateTagCounts(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()

	p1 := testPhoto("photo-1", now)
	p1.Tags = []string{"sunset", "beach"}
	p2 := testPhoto("photo-2", now)
	p2.Tags = []string{"sunset"}
	require.NoError(t, store.SavePhoto(ctx, p1))
	require.NoError(t, store.SavePhoto(ctx, p2))

	// Seed with wrong counts.
	require.NoError(t, store.SaveTag(ctx, &domain.Tag{ID: "tag-1", Name: "sunset", Count: 9}))
	require.NoError(t, store.SaveTag(ctx, &domain.Tag{ID: "tag-2", Name: "beach", Count: 0}))
	require.NoError(t, store.SaveTag(ctx, &domain.Tag{ID: "tag-3", Name: "unused", Count: 4}))

	require.NoError(t, store.RecalculateTagCounts(ctx))

	sunset, err := store.FindTagByName(ctx, "sunset")
	require.NoError(t, err)
	assert.Equal(t, 2, sunset.Count)

	beach, err := store.FindTagByName(ctx, "beach")
	require.NoError(t, err)
	assert.Equal(t, 1, beach.Count)

	unused, err := store.FindTagByName(ctx, "unused")
	require.NoError(t, err)
	assert.Equal(t, 0, unused.Count)
}

func TestClearAll(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.SavePhoto(ctx, testPhoto("photo-1", time.Now())))
	require.NoError(t, store.SaveAlbum(ctx, testAlbum("album-1", "Vacation")))
	require.NoError(t, store.SaveTag(ctx, &domain.Tag{ID: "tag-1", Name: "sunset"}))

	require.NoError(t, store.ClearAll())

	photos, err := store.ListPhotos(ctx)
	require.NoError(t, err)
	assert.Empty(t, photos)

	albums, err := store.ListAlbums(ctx)
	require.NoError(t, err)
	assert.Empty(t, albums)

	tags, err := store.ListTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)
}
