package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenapp/lumen-server/internal/domain"
)

func testAlbum(id, name string) *domain.Album {
	now := time.Now()
	return &domain.Album{
		ID:        id,
		Name:      name,
		PhotoIDs:  []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSaveAlbum(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	a := testAlbum("album-001", "Vacation")
	require.NoError(t, store.SaveAlbum(ctx, a))

	retrieved, err := store.GetAlbum(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vacation", retrieved.Name)
}

func TestGetAlbum_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetAlbum(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrAlbumNotFound)
}

func TestListAlbums_RecentlyUpdatedFirst(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	a1 := testAlbum("album-1", "Oldest")
	a1.UpdatedAt = base
	a2 := testAlbum("album-2", "Newest")
	a2.UpdatedAt = base.Add(2 * time.Hour)
	a3 := testAlbum("album-3", "Middle")
	a3.UpdatedAt = base.Add(time.Hour)

	require.NoError(t, store.SaveAlbum(ctx, a1))
	require.NoError(t, store.SaveAlbum(ctx, a2))
	require.NoError(t, store.SaveAlbum(ctx, a3))

	albums, err := store.ListAlbums(ctx)
	require.NoError(t, err)
	require.Len(t, albums, 3)
	assert.Equal(t, "Newest", albums[0].Name)
	assert.Equal(t, "Middle", albums[1].Name)
	assert.Equal(t, "Oldest", albums[2].Name)
}

func TestUpdateAlbum_BumpsUpdatedAt(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	a := testAlbum("album-001", "Vacation")
	a.UpdatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, store.SaveAlbum(ctx, a))

	updated, err := store.UpdateAlbum(ctx, a.ID, func(album *domain.Album) {
		album.Description = "Summer 2026"
	})
	require.NoError(t, err)
	assert.Equal(t, "Summer 2026", updated.Description)
	assert.True(t, updated.UpdatedAt.After(a.UpdatedAt))
}

func TestAddPhotosToAlbum(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.SavePhoto(ctx, testPhoto("photo-1", now)))
	require.NoError(t, store.SavePhoto(ctx, testPhoto("photo-2", now)))
	require.NoError(t, store.SaveAlbum(ctx, testAlbum("album-001", "Vacation")))

	album, err := store.AddPhotosToAlbum(ctx, "album-001", []string{"photo-1", "photo-2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"photo-1", "photo-2"}, album.PhotoIDs)

	// Both sides of the relation updated.
	p, err := store.GetPhoto(ctx, "photo-1")
	require.NoError(t, err)
	assert.Contains(t, p.Albums, "album-001")
}

func TestAddPhotosToAlbum_Idempotent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.SavePhoto(ctx, testPhoto("photo-1", time.Now())))
	require.NoError(t, store.SaveAlbum(ctx, testAlbum("album-001", "Vacation")))

	_, err := store.AddPhotosToAlbum(ctx, "album-001", []string{"photo-1"})
	require.NoError(t, err)
	album, err := store.AddPhotosToAlbum(ctx, "album-001", []string{"photo-1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"photo-1"}, album.PhotoIDs)

	p, err := store.GetPhoto(ctx, "photo-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"album-001"}, p.Albums)
}

func TestAddPhotosToAlbum_SkipsMissingPhotos(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.SavePhoto(ctx, testPhoto("photo-1", time.Now())))
	require.NoError(t, store.SaveAlbum(ctx, testAlbum("album-001", "Vacation")))

	album, err := store.AddPhotosToAlbum(ctx, "album-001", []string{"photo-1", "ghost"})
	require.NoError(t, err)
	assert.Equal(t, []string{"photo-1"}, album.PhotoIDs)
}

func TestRemovePhotoFromAlbum(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.SavePhoto(ctx, testPhoto("photo-1", time.Now())))
	require.NoError(t, store.SaveAlbum(ctx, testAlbum("album-001", "Vacation")))

	_, err := store.AddPhotosToAlbum(ctx, "album-001", []string{"photo-1"})
	require.NoError(t, err)

	album, err := store.RemovePhotoFromAlbum(ctx, "album-001", "photo-1")
	require.NoError(t, err)
	assert.Empty(t, album.PhotoIDs)

	p, err := store.GetPhoto(ctx, "photo-1")
	require.NoError(t, err)
	assert.Empty(t, p.Albums)
}

func TestDeleteAlbum_ScrubsPhotoMembership(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.SavePhoto(ctx, testPhoto("photo-1", time.Now())))
	require.NoError(t, store.SaveAlbum(ctx, testAlbum("album-001", "Vacation")))

	_, err := store.AddPhotosToAlbum(ctx, "album-001", []string{"photo-1"})
	require.NoError(t, err)

	require.NoError(t, store.DeleteAlbum(ctx, "album-001"))

	_, err = store.GetAlbum(ctx, "album-001")
	assert.ErrorIs(t, err, ErrAlbumNotFound)

	// Photo survives but no longer references the album.
	p, err := store.GetPhoto(ctx, "photo-1")
	require.NoError(t, err)
	assert.Empty(t, p.Albums)
}

func TestDeleteAlbum_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.DeleteAlbum(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrAlbumNotFound)
}
