package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	got, err := Generate("photo")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "photo-"))
	assert.Len(t, got, len("photo-")+21, "NanoID body should be 21 characters")
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		got, err := Generate("tag")
		require.NoError(t, err)
		assert.False(t, seen[got], "duplicate ID generated: %s", got)
		seen[got] = true
	}
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		got := MustGenerate("album")
		assert.True(t, strings.HasPrefix(got, "album-"))
	})
}
