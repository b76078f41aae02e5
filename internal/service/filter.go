package service

import (
	"slices"
	"strings"

	"github.com/lumenapp/lumen-server/internal/domain"
)

// Filter selects a subset of the photo collection.
//
// Query matches case-insensitively against the photo name or any of its tag
// names. Tags require the photo to carry every listed name (AND). Albums
// require membership in at least one listed album (OR). Favorite, when set,
// must match the photo's flag exactly in either direction.
type Filter struct {
	Query    string
	Tags     []string
	Albums   []string
	Favorite *bool
}

// FilterPhotos returns the photos matching every set criterion, preserving
// the input order.
func FilterPhotos(photos []*domain.Photo, f Filter) []*domain.Photo {
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]*domain.Photo, 0, len(photos))
	for _, p := range photos {
		if !matchesQuery(p, query) {
			continue
		}
		if !matchesTags(p, f.Tags) {
			continue
		}
		if !matchesAlbums(p, f.Albums) {
			continue
		}
		if f.Favorite != nil && p.Favorite != *f.Favorite {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FilterPhotos applies the filter against the library's cached collection.
func (l *Library) FilterPhotos(f Filter) []*domain.Photo {
	return FilterPhotos(l.Photos(), f)
}

func matchesQuery(p *domain.Photo, query string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Name), query) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// matchesTags requires the photo's tag set to be a superset of wanted.
func matchesTags(p *domain.Photo, wanted []string) bool {
	for _, w := range wanted {
		if !slices.Contains(p.Tags, w) {
			return false
		}
	}
	return true
}

// matchesAlbums requires membership in any of the wanted albums.
func matchesAlbums(p *domain.Photo, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		if slices.Contains(p.Albums, w) {
			return true
		}
	}
	return false
}
