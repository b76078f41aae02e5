package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenapp/lumen-server/internal/domain"
)

func filterFixture() []*domain.Photo {
	return []*domain.Photo{
		{ID: "p1", Name: "beach-day.jpg", Tags: []string{"A", "B"}, Albums: []string{"X"}, Favorite: true},
		{ID: "p2", Name: "mountain.png", Tags: []string{"A"}, Albums: []string{"Y"}},
		{ID: "p3", Name: "city.jpg", Tags: []string{"B"}, Albums: []string{"Z"}},
	}
}

func ids(photos []*domain.Photo) []string {
	out := make([]string, len(photos))
	for i, p := range photos {
		out[i] = p.ID
	}
	return out
}

func TestFilterPhotos_NoCriteriaReturnsAll(t *testing.T) {
	got := FilterPhotos(filterFixture(), Filter{})
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids(got))
}

func TestFilterPhotos_TagsAreAND(t *testing.T) {
	got := FilterPhotos(filterFixture(), Filter{Tags: []string{"A", "B"}})
	assert.Equal(t, []string{"p1"}, ids(got))
}

func TestFilterPhotos_AlbumsAreOR(t *testing.T) {
	got := FilterPhotos(filterFixture(), Filter{Albums: []string{"X", "Y"}})
	assert.Equal(t, []string{"p1", "p2"}, ids(got))
}

func TestFilterPhotos_QueryMatchesNameOrTag(t *testing.T) {
	photos := filterFixture()

	// Case-insensitive substring against the name.
	got := FilterPhotos(photos, Filter{Query: "BEACH"})
	assert.Equal(t, []string{"p1"}, ids(got))

	// Or against any tag name.
	got = FilterPhotos(photos, Filter{Query: "b"})
	assert.Equal(t, []string{"p1", "p3"}, ids(got))
}

func TestFilterPhotos_FavoriteIsTriState(t *testing.T) {
	photos := filterFixture()

	yes := true
	got := FilterPhotos(photos, Filter{Favorite: &yes})
	assert.Equal(t, []string{"p1"}, ids(got))

	no := false
	got = FilterPhotos(photos, Filter{Favorite: &no})
	assert.Equal(t, []string{"p2", "p3"}, ids(got))

	// Unset matches everything.
	got = FilterPhotos(photos, Filter{})
	assert.Len(t, got, 3)
}

func TestFilterPhotos_CriteriaCombine(t *testing.T) {
	got := FilterPhotos(filterFixture(), Filter{Query: "jpg", Tags: []string{"B"}, Albums: []string{"X", "Z"}})
	assert.Equal(t, []string{"p1", "p3"}, ids(got))
}

func TestFilterPhotos_PreservesInputOrder(t *testing.T) {
	photos := []*domain.Photo{
		{ID: "z", Name: "z.jpg", Tags: []string{"A"}},
		{ID: "a", Name: "a.jpg", Tags: []string{"A"}},
		{ID: "m", Name: "m.jpg", Tags: []string{"A"}},
	}
	got := FilterPhotos(photos, Filter{Tags: []string{"A"}})
	assert.Equal(t, []string{"z", "a", "m"}, ids(got))
}
