package domain

import (
	"slices"
	"time"
)

// Album is a user-defined grouping of photos (many-to-many).
// PhotoIDs is the canonical side of the membership relation; each member
// photo mirrors it in Photo.Albums. UpdatedAt is bumped on every
// membership or metadata change.
type Album struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	CoverPhotoID string    `json:"cover_photo_id,omitempty"`
	PhotoIDs     []string  `json:"photo_ids"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (a *Album) Touch() {
	a.UpdatedAt = time.Now()
}

// ContainsPhoto checks if a photo ID is in this album.
func (a *Album) ContainsPhoto(photoID string) bool {
	return slices.Contains(a.PhotoIDs, photoID)
}

// AddPhoto adds a photo ID to the album if not already present.
func (a *Album) AddPhoto(photoID string) bool {
	if slices.Contains(a.PhotoIDs, photoID) {
		return false
	}
	a.PhotoIDs = append(a.PhotoIDs, photoID)
	return true
}

// RemovePhoto removes a photo ID from the album.
func (a *Album) RemovePhoto(photoID string) bool {
	n := len(a.PhotoIDs)
	a.PhotoIDs = slices.DeleteFunc(a.PhotoIDs, func(id string) bool {
		return id == photoID
	})
	return len(a.PhotoIDs) != n
}
