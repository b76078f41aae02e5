package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenapp/lumen-server/internal/domain"
	apperrors "github.com/lumenapp/lumen-server/internal/errors"
	"github.com/lumenapp/lumen-server/internal/store"
)

func setupCodec(t *testing.T) (*Codec, *store.Store) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "lumen-backup-test-*")
	require.NoError(t, err)

	st, err := store.New(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	})

	return NewCodec(st, nil), st
}

func TestDecode_MissingKeys(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"no version", `{"photos":[],"albums":[],"tags":[]}`},
		{"no photos", `{"version":"1.0","albums":[],"tags":[]}`},
		{"no albums", `{"version":"1.0","photos":[],"tags":[]}`},
		{"no tags", `{"version":"1.0","photos":[],"albums":[]}`},
		{"empty object", `{}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrBadFormat)
		})
	}
}

func TestDecode_EmptyListsAreValid(t *testing.T) {
	env, err := Decode([]byte(`{"version":"1.0","exportDate":"2026-03-01T12:00:00Z","photos":[],"albums":[],"tags":[]}`))
	require.NoError(t, err)
	assert.Equal(t, "1.0", env.Version)
	assert.Empty(t, env.Photos)
}

func TestDecode_MalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`not json at all`))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrBadFormat)
}

func TestExportImport_RoundTrip(t *testing.T) {
	codec, st := setupCodec(t)
	ctx := context.Background()

	require.NoError(t, st.SavePhoto(ctx, &domain.Photo{
		ID:        "photo-1",
		Name:      "sunset.jpg",
		DateAdded: time.Now(),
		Tags:      []string{"sunset"},
		Albums:    []string{"album-1"},
	}))
	require.NoError(t, st.SaveAlbum(ctx, &domain.Album{
		ID:       "album-1",
		Name:     "Vacation",
		PhotoIDs: []string{"photo-1"},
	}))
	require.NoError(t, st.SaveTag(ctx, &domain.Tag{ID: "tag-1", Name: "sunset", Count: 1}))

	data, err := codec.Export(ctx)
	require.NoError(t, err)

	env, err := codec.Import(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, EnvelopeVersion, env.Version)
	assert.Len(t, env.Photos, 1)

	photos, err := st.ListPhotos(ctx)
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, "sunset.jpg", photos[0].Name)
	assert.Equal(t, []string{"sunset"}, photos[0].Tags)
}

func TestImport_ReplacesNotMerges(t *testing.T) {
	codec, st := setupCodec(t)
	ctx := context.Background()

	for _, id := range []string{"old-1", "old-2", "old-3", "old-4", "old-5"} {
		require.NoError(t, st.SavePhoto(ctx, &domain.Photo{ID: id, Name: id, DateAdded: time.Now()}))
	}

	env := Build([]*domain.Photo{{ID: "new-1", Name: "only.jpg", DateAdded: time.Now()}}, nil, nil)
	data, err := Encode(env)
	require.NoError(t, err)

	_, err = codec.Import(ctx, data)
	require.NoError(t, err)

	photos, err := st.ListPhotos(ctx)
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, "new-1", photos[0].ID)
}

func TestImport_BadEnvelopeLeavesStoreUntouched(t *testing.T) {
	codec, st := setupCodec(t)
	ctx := context.Background()

	require.NoError(t, st.SavePhoto(ctx, &domain.Photo{ID: "photo-1", Name: "keep.jpg", DateAdded: time.Now()}))

	_, err := codec.Import(ctx, []byte(`{"version":"1.0"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrBadFormat)

	photos, err := st.ListPhotos(ctx)
	require.NoError(t, err)
	assert.Len(t, photos, 1)
}
