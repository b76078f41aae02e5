package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenapp/lumen-server/internal/domain"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "lumen-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	store, err := New(dbPath, nil)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		_ = store.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return store, cleanup
}

func testPhoto(id string, added time.Time) *domain.Photo {
	return &domain.Photo{
		ID:        id,
		Name:      id + ".jpg",
		Size:      1024,
		MimeType:  "image/jpeg",
		DateAdded: added,
		Tags:      []string{},
		Albums:    []string{},
	}
}

func TestSavePhoto(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	p := testPhoto("photo-001", time.Now())
	p.Tags = []string{"sunset"}
	err := store.SavePhoto(ctx, p)
	require.NoError(t, err)

	retrieved, err := store.GetPhoto(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, retrieved.ID)
	assert.Equal(t, p.Name, retrieved.Name)
	assert.Equal(t, []string{"sunset"}, retrieved.Tags)
}

func TestGetPhoto_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetPhoto(context.Background(), "nonexistent")
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrPhotoNotFound)
}

func TestListPhotos_NewestFirst(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Insert out of order.
	require.NoError(t, store.SavePhoto(ctx, testPhoto("photo-b", base.Add(time.Hour))))
	require.NoError(t, store.SavePhoto(ctx, testPhoto("photo-a", base.Add(3*time.Hour))))
	require.NoError(t, store.SavePhoto(ctx, testPhoto("photo-c", base)))

	photos, err := store.ListPhotos(ctx)
	require.NoError(t, err)
	require.Len(t, photos, 3)

	assert.Equal(t, "photo-a", photos[0].ID)
	assert.Equal(t, "photo-b", photos[1].ID)
	assert.Equal(t, "photo-c", photos[2].ID)
}

func TestSavePhotos_Batch(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()

	batch := []*domain.Photo{
		testPhoto("photo-1", now),
		testPhoto("photo-2", now),
		testPhoto("photo-3", now),
	}
	require.NoError(t, store.SavePhotos(ctx, batch))

	count, err := store.CountPhotos(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestUpdatePhoto(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	p := testPhoto("photo-001", time.Now())
	require.NoError(t, store.SavePhoto(ctx, p))

	updated, err := store.UpdatePhoto(ctx, p.ID, func(photo *domain.Photo) {
		photo.Favorite = true
		photo.Name = "renamed.jpg"
	})
	require.NoError(t, err)
	assert.True(t, updated.Favorite)
	assert.Equal(t, "renamed.jpg", updated.Name)

	retrieved, err := store.GetPhoto(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, retrieved.Favorite)
}

func TestUpdatePhoto_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.UpdatePhoto(context.Background(), "nonexistent", func(p *domain.Photo) {
		p.Favorite = true
	})
	assert.ErrorIs(t, err, ErrPhotoNotFound)
}

func TestDeletePhoto(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	p := testPhoto("photo-001", time.Now())
	require.NoError(t, store.SavePhoto(ctx, p))

	require.NoError(t, store.DeletePhoto(ctx, p.ID))

	_, err := store.GetPhoto(ctx, p.ID)
	assert.ErrorIs(t, err, ErrPhotoNotFound)
}

func TestDeletePhoto_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.DeletePhoto(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrPhotoNotFound)
}

func TestDeletePhotos_SkipsMissing(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.SavePhoto(ctx, testPhoto("photo-1", now)))
	require.NoError(t, store.SavePhoto(ctx, testPhoto("photo-2", now)))

	deleted, err := store.DeletePhotos(ctx, []string{"photo-1", "nonexistent", "photo-2"})
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	count, err := store.CountPhotos(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestDeletePhoto_ScrubsAlbumMembership(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.SavePhoto(ctx, testPhoto("photo-1", time.Now())))
	require.NoError(t, store.SaveAlbum(ctx, testAlbum("album-1", "Vacation")))
	_, err := store.AddPhotosToAlbum(ctx, "album-1", []string{"photo-1"})
	require.NoError(t, err)

	require.NoError(t, store.DeletePhoto(ctx, "photo-1"))

	album, err := store.GetAlbum(ctx, "album-1")
	require.NoError(t, err)
	assert.Empty(t, album.PhotoIDs)
}

func TestClearPhotos(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.SavePhoto(ctx, testPhoto("photo-1", now)))
	require.NoError(t, store.SavePhoto(ctx, testPhoto("photo-2", now)))

	require.NoError(t, store.ClearPhotos(ctx))

	photos, err := store.ListPhotos(ctx)
	require.NoError(t, err)
	assert.Empty(t, photos)
}
