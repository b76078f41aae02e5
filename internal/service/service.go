// Package service implements the library's mutation and query layer.
//
// Library owns the authoritative in-memory collections (photos, albums,
// tags) as a cache over the store. Every mutator writes durable storage
// first and only then updates the cache, so a storage failure leaves the
// cache on the last consistent state. All relation changes (photo tags,
// album membership, tag counts) go through this package; nothing else
// writes the collections.
package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lumenapp/lumen-server/internal/domain"
	"github.com/lumenapp/lumen-server/internal/labeling"
	"github.com/lumenapp/lumen-server/internal/store"
)

// BlobStore persists original photo files on disk.
// Library uses this to tie blob lifetime to photo lifetime: the original
// file is removed when its photo record is deleted.
type BlobStore interface {
	Save(ctx context.Context, name string, data []byte) (path string, err error)
	Read(ctx context.Context, path string) ([]byte, error)
	Remove(ctx context.Context, path string) error
}

// NoopBlobStore is a no-op implementation of BlobStore for testing.
type NoopBlobStore struct{}

// Save implements BlobStore.Save as a no-op.
func (NoopBlobStore) Save(_ context.Context, _ string, _ []byte) (string, error) { return "", nil }

// Read implements BlobStore.Read as a no-op.
func (NoopBlobStore) Read(_ context.Context, _ string) ([]byte, error) { return nil, nil }

// Remove implements BlobStore.Remove as a no-op.
func (NoopBlobStore) Remove(_ context.Context, _ string) error { return nil }

// ActivityRecorder records library events for the activity feed.
// Recording is best effort; failures never fail the triggering operation.
type ActivityRecorder interface {
	Record(ctx context.Context, action, subjectID, detail string)
}

// NoopRecorder is a no-op implementation of ActivityRecorder for testing.
type NoopRecorder struct{}

// Record implements ActivityRecorder.Record as a no-op.
func (NoopRecorder) Record(_ context.Context, _, _, _ string) {}

// Library is the single write path for the photo collections.
type Library struct {
	store    *store.Store
	blobs    BlobStore
	labeler  labeling.Labeler
	activity ActivityRecorder
	logger   *slog.Logger

	// Cache of the stored collections, kept in store order:
	// photos newest-first, albums recently-updated-first, tags by count.
	mu     sync.RWMutex
	photos []*domain.Photo
	albums []*domain.Album
	tags   []*domain.Tag
}

// New creates a Library and loads the collections from the store.
func New(ctx context.Context, st *store.Store, blobs BlobStore, labeler labeling.Labeler, activity ActivityRecorder, logger *slog.Logger) (*Library, error) {
	if blobs == nil {
		blobs = NoopBlobStore{}
	}
	if labeler == nil {
		labeler = labeling.Noop{}
	}
	if activity == nil {
		activity = NoopRecorder{}
	}

	lib := &Library{
		store:    st,
		blobs:    blobs,
		labeler:  labeler,
		activity: activity,
		logger:   logger,
	}

	if err := lib.Reload(ctx); err != nil {
		return nil, err
	}
	return lib, nil
}

// Reload replaces the in-memory collections with the store's current state.
// Called at startup and after backup import.
func (l *Library) Reload(ctx context.Context) error {
	photos, err := l.store.ListPhotos(ctx)
	if err != nil {
		return err
	}
	albums, err := l.store.ListAlbums(ctx)
	if err != nil {
		return err
	}
	tags, err := l.store.ListTags(ctx)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.photos = photos
	l.albums = albums
	l.tags = tags
	l.mu.Unlock()

	if l.logger != nil {
		l.logger.Info("library loaded",
			"photos", len(photos),
			"albums", len(albums),
			"tags", len(tags),
		)
	}
	return nil
}

// Photos returns a snapshot of the photo collection, newest first.
func (l *Library) Photos() []*domain.Photo {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*domain.Photo, len(l.photos))
	copy(out, l.photos)
	return out
}

// Albums returns a snapshot of the album collection, recently updated first.
func (l *Library) Albums() []*domain.Album {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*domain.Album, len(l.albums))
	copy(out, l.albums)
	return out
}

// Tags returns a snapshot of the tag collection, ordered by count.
func (l *Library) Tags() []*domain.Tag {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*domain.Tag, len(l.tags))
	copy(out, l.tags)
	return out
}

// Stats summarizes the library for the system endpoint.
type Stats struct {
	Photos     int   `json:"photos"`
	Albums     int   `json:"albums"`
	Tags       int   `json:"tags"`
	Favorites  int   `json:"favorites"`
	TotalBytes int64 `json:"total_bytes"`
}

// Stats computes library counts and total original-file size from the cache.
func (l *Library) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	st := Stats{
		Photos: len(l.photos),
		Albums: len(l.albums),
		Tags:   len(l.tags),
	}
	for _, p := range l.photos {
		st.TotalBytes += p.Size
		if p.Favorite {
			st.Favorites++
		}
	}
	return st
}

// Clear wipes the selected collections and reloads the cache. Clearing
// photos also removes their original files. Collections that survive a
// selective clear are scrubbed of references into the cleared ones: album
// member lists and tag counts after a photo wipe, photo album and tag lists
// after an album or tag wipe.
func (l *Library) Clear(ctx context.Context, photos, albums, tags bool) error {
	if photos {
		for _, p := range l.Photos() {
			l.removeBlob(ctx, p)
		}
		if err := l.store.ClearPhotos(ctx); err != nil {
			return err
		}
	}
	if albums {
		if err := l.store.ClearAlbums(ctx); err != nil {
			return err
		}
	}
	if tags {
		if err := l.store.ClearTags(ctx); err != nil {
			return err
		}
	}

	if photos && !albums {
		if err := l.store.EmptyAlbumMembership(ctx); err != nil {
			return err
		}
	}
	if photos && !tags {
		if err := l.store.RecalculateTagCounts(ctx); err != nil {
			return err
		}
	}
	if albums && !photos {
		if err := l.store.ClearPhotoAlbumRefs(ctx); err != nil {
			return err
		}
	}
	if tags && !photos {
		if err := l.store.ClearPhotoTagRefs(ctx); err != nil {
			return err
		}
	}

	l.activity.Record(ctx, "library.cleared", "", "")
	return l.Reload(ctx)
}

// replacePhoto swaps the cached photo record in place.
func (l *Library) replacePhoto(updated *domain.Photo) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, p := range l.photos {
		if p.ID == updated.ID {
			l.photos[i] = updated
			return
		}
	}
}

// replaceAlbum swaps the cached album record in place.
func (l *Library) replaceAlbum(updated *domain.Album) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, a := range l.albums {
		if a.ID == updated.ID {
			l.albums[i] = updated
			return
		}
	}
}

// replaceTag swaps the cached tag record in place, appending if new.
func (l *Library) replaceTag(updated *domain.Tag) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, t := range l.tags {
		if t.ID == updated.ID {
			l.tags[i] = updated
			return
		}
	}
	l.tags = append(l.tags, updated)
}
