package domain

import (
	"slices"
	"time"
)

// Photo represents a single imported image and its metadata.
// Tags and Albums are denormalized caches of the canonical relations:
// tag usage counts live on Tag records, album membership lives on
// Album.PhotoIDs. Every relation change goes through the library
// service so both sides stay in step.
type Photo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Size     int64  `json:"size"` // bytes
	MimeType string `json:"mime_type"`

	// FilePath is where the original bytes live on disk.
	// BlurHash is a compact placeholder derived from those bytes at import.
	FilePath string `json:"file_path"`
	BlurHash string `json:"blur_hash,omitempty"`

	DateAdded time.Time  `json:"date_added"`
	DateTaken *time.Time `json:"date_taken,omitempty"`

	// Best-effort dimensions; zero when the image could not be decoded.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	Tags     []string `json:"tags"`   // tag names, no duplicates
	Albums   []string `json:"albums"` // album IDs, no duplicates
	Favorite bool     `json:"favorite"`
}

// HasTag reports whether the photo carries the given tag name.
func (p *Photo) HasTag(name string) bool {
	return slices.Contains(p.Tags, name)
}

// AddTag appends a tag name if not already present.
// Returns false when the tag was already there.
func (p *Photo) AddTag(name string) bool {
	if slices.Contains(p.Tags, name) {
		return false
	}
	p.Tags = append(p.Tags, name)
	return true
}

// RemoveTag drops a tag name from the photo.
// Returns false when the tag was not present.
func (p *Photo) RemoveTag(name string) bool {
	n := len(p.Tags)
	p.Tags = slices.DeleteFunc(p.Tags, func(t string) bool {
		return t == name
	})
	return len(p.Tags) != n
}

// InAlbum reports whether the photo's album set contains the given album ID.
func (p *Photo) InAlbum(albumID string) bool {
	return slices.Contains(p.Albums, albumID)
}

// AddAlbum records album membership if not already present.
func (p *Photo) AddAlbum(albumID string) bool {
	if slices.Contains(p.Albums, albumID) {
		return false
	}
	p.Albums = append(p.Albums, albumID)
	return true
}

// RemoveAlbum drops album membership.
func (p *Photo) RemoveAlbum(albumID string) bool {
	n := len(p.Albums)
	p.Albums = slices.DeleteFunc(p.Albums, func(id string) bool {
		return id == albumID
	})
	return len(p.Albums) != n
}
