package images

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngBytes encodes a small solid-color PNG for test input.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProbe(t *testing.T) {
	data := pngBytes(t, 320, 240)

	w, h, err := Probe(data)
	require.NoError(t, err)
	assert.Equal(t, 320, w)
	assert.Equal(t, 240, h)
}

func TestProbe_NotAnImage(t *testing.T) {
	_, _, err := Probe([]byte("definitely not an image"))
	assert.Error(t, err)
}

func TestHash(t *testing.T) {
	data := pngBytes(t, 128, 96)

	hash, err := Hash(data)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
}

func TestStorage_RoundTrip(t *testing.T) {
	st, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	data := pngBytes(t, 10, 10)

	path, err := st.Save(ctx, "photo-abc.png", data)
	require.NoError(t, err)
	assert.True(t, st.Exists(path))

	got, err := st.Read(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	require.NoError(t, st.Remove(ctx, path))
	assert.False(t, st.Exists(path))

	// Removing again is not an error.
	require.NoError(t, st.Remove(ctx, path))
}

func TestStorage_RejectsPathSeparators(t *testing.T) {
	st, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	_, err = st.Save(context.Background(), "../escape.png", []byte("data"))
	assert.Error(t, err)
}

func TestStorage_Hash(t *testing.T) {
	st, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	path, err := st.Save(ctx, "photo-abc.png", pngBytes(t, 10, 10))
	require.NoError(t, err)

	h1, err := st.Hash(path)
	require.NoError(t, err)
	h2, err := st.Hash(path)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}
