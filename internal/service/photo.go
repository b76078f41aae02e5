package service

import (
	"context"
	"path/filepath"
	"time"

	"github.com/lumenapp/lumen-server/internal/domain"
	apperrors "github.com/lumenapp/lumen-server/internal/errors"
	"github.com/lumenapp/lumen-server/internal/id"
	"github.com/lumenapp/lumen-server/internal/labeling"
	"github.com/lumenapp/lumen-server/internal/media/images"
	"github.com/lumenapp/lumen-server/internal/store"
)

// ImportFile is one file handed to ImportPhotos by an import source
// (upload handler or drop-directory watcher).
type ImportFile struct {
	Name     string
	MimeType string
	Data     []byte
}

// ImportPhotos creates one photo per input file.
//
// For each file the original bytes are stored first, then a Photo record is
// persisted with best-effort dimensions and blur hash; a probe failure
// yields absent dimensions, not an error. All records are written in one
// batch, then prepended to the cache so the newest import is listed first.
// If a labeler is configured, its labels are applied as tags afterwards,
// best effort.
func (l *Library) ImportPhotos(ctx context.Context, files []ImportFile) ([]*domain.Photo, error) {
	if len(files) == 0 {
		return nil, nil
	}

	batch := make([]*domain.Photo, 0, len(files))
	for _, f := range files {
		photoID, err := id.Generate("photo")
		if err != nil {
			return nil, err
		}

		path, err := l.blobs.Save(ctx, photoID+filepath.Ext(f.Name), f.Data)
		if err != nil {
			return nil, apperrors.Storage("failed to store original file", err)
		}

		p := &domain.Photo{
			ID:        photoID,
			Name:      f.Name,
			Size:      int64(len(f.Data)),
			MimeType:  f.MimeType,
			FilePath:  path,
			DateAdded: time.Now(),
			Tags:      []string{},
			Albums:    []string{},
		}

		if w, h, err := images.Probe(f.Data); err == nil {
			p.Width = w
			p.Height = h
		}
		if hash, err := images.Hash(f.Data); err == nil {
			p.BlurHash = hash
		} else if l.logger != nil {
			l.logger.Debug("blur hash failed", "photo_id", photoID, "error", err)
		}

		batch = append(batch, p)
	}

	if err := l.store.SavePhotos(ctx, batch); err != nil {
		return nil, apperrors.Storage("failed to save photos", err)
	}

	l.mu.Lock()
	l.photos = append(append([]*domain.Photo{}, batch...), l.photos...)
	l.mu.Unlock()

	for _, p := range batch {
		l.applyLabels(ctx, p)
		l.activity.Record(ctx, "photo.imported", p.ID, p.Name)
	}

	if l.logger != nil {
		l.logger.Info("photos imported", "count", len(batch))
	}
	return batch, nil
}

// applyLabels runs the labeler over a photo's stored bytes and applies the
// resulting labels as tags. Best effort; failures are logged and swallowed.
func (l *Library) applyLabels(ctx context.Context, p *domain.Photo) {
	if _, ok := l.labeler.(labeling.Noop); ok {
		return
	}

	data, err := l.blobs.Read(ctx, p.FilePath)
	if err != nil || len(data) == 0 {
		return
	}

	labels, err := l.labeler.Label(ctx, data, p.MimeType)
	if err != nil {
		if l.logger != nil {
			l.logger.Warn("labeling failed", "photo_id", p.ID, "error", err)
		}
		return
	}
	if len(labels) == 0 {
		return
	}

	if _, err := l.AddTagsToPhoto(ctx, p.ID, labels); err != nil && l.logger != nil {
		l.logger.Warn("failed to apply labels", "photo_id", p.ID, "error", err)
	}
}

// Autotag runs the configured labeler over a photo and applies the labels
// as tags. Returns the refreshed photo.
func (l *Library) Autotag(ctx context.Context, photoID string) (*domain.Photo, error) {
	p, err := l.GetPhoto(ctx, photoID)
	if err != nil {
		return nil, err
	}

	l.applyLabels(ctx, p)
	return l.GetPhoto(ctx, photoID)
}

// GetPhoto returns a single photo by ID.
func (l *Library) GetPhoto(ctx context.Context, photoID string) (*domain.Photo, error) {
	p, err := l.store.GetPhoto(ctx, photoID)
	if apperrors.Is(err, store.ErrPhotoNotFound) {
		return nil, apperrors.NotFoundf("photo %s not found", photoID)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// RenamePhoto updates a photo's display name.
// No-op if the photo does not exist.
func (l *Library) RenamePhoto(ctx context.Context, photoID, name string) (*domain.Photo, error) {
	updated, err := l.store.UpdatePhoto(ctx, photoID, func(p *domain.Photo) {
		p.Name = name
	})
	if apperrors.Is(err, store.ErrPhotoNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	l.replacePhoto(updated)
	return updated, nil
}

// ToggleFavorite flips a photo's favorite flag.
// No-op if the photo does not exist.
func (l *Library) ToggleFavorite(ctx context.Context, photoID string) (*domain.Photo, error) {
	updated, err := l.store.UpdatePhoto(ctx, photoID, func(p *domain.Photo) {
		p.Favorite = !p.Favorite
	})
	if apperrors.Is(err, store.ErrPhotoNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	l.replacePhoto(updated)
	return updated, nil
}

// DeletePhoto removes a single photo: the record, its album memberships, and
// its original file. Tag counts are intentionally left as-is; they are
// reconciled on the next bulk delete or reload.
// No-op if the photo does not exist.
func (l *Library) DeletePhoto(ctx context.Context, photoID string) error {
	p, err := l.store.GetPhoto(ctx, photoID)
	if apperrors.Is(err, store.ErrPhotoNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := l.store.DeletePhoto(ctx, photoID); err != nil {
		if apperrors.Is(err, store.ErrPhotoNotFound) {
			return nil
		}
		return err
	}

	l.removeBlob(ctx, p)
	l.dropPhotosFromCache(map[string]bool{photoID: true})
	if err := l.refreshAlbums(ctx); err != nil {
		return err
	}

	l.activity.Record(ctx, "photo.deleted", photoID, p.Name)
	return nil
}

// DeletePhotos bulk-deletes photos and then reconciles every tag's count by
// exact recount over the surviving photos. Missing IDs are skipped.
func (l *Library) DeletePhotos(ctx context.Context, photoIDs []string) (int, error) {
	// Capture file paths before the records disappear.
	paths := make([]*domain.Photo, 0, len(photoIDs))
	for _, pid := range photoIDs {
		if p, err := l.store.GetPhoto(ctx, pid); err == nil {
			paths = append(paths, p)
		}
	}

	deleted, err := l.store.DeletePhotos(ctx, photoIDs)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, nil
	}

	// Exact recount beats incremental decrements here: it corrects any
	// drift left by earlier single-photo deletes as well.
	if err := l.store.RecalculateTagCounts(ctx); err != nil {
		return deleted, err
	}

	for _, p := range paths {
		l.removeBlob(ctx, p)
	}

	removed := make(map[string]bool, len(photoIDs))
	for _, pid := range photoIDs {
		removed[pid] = true
	}
	l.dropPhotosFromCache(removed)
	if err := l.refreshAlbums(ctx); err != nil {
		return deleted, err
	}
	if err := l.refreshTags(ctx); err != nil {
		return deleted, err
	}

	l.activity.Record(ctx, "photo.bulk_deleted", "", "")
	if l.logger != nil {
		l.logger.Info("photos deleted", "requested", len(photoIDs), "deleted", deleted)
	}
	return deleted, nil
}

// removeBlob deletes a photo's original file, best effort.
func (l *Library) removeBlob(ctx context.Context, p *domain.Photo) {
	if p.FilePath == "" {
		return
	}
	if err := l.blobs.Remove(ctx, p.FilePath); err != nil && l.logger != nil {
		l.logger.Warn("failed to remove original file", "photo_id", p.ID, "path", p.FilePath, "error", err)
	}
}

// dropPhotosFromCache removes the given IDs from the cached photo list and
// scrubs them from cached album member lists.
func (l *Library) dropPhotosFromCache(removed map[string]bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.photos[:0]
	for _, p := range l.photos {
		if !removed[p.ID] {
			kept = append(kept, p)
		}
	}
	l.photos = kept
}

// refreshAlbums reloads only the album collection from the store.
func (l *Library) refreshAlbums(ctx context.Context) error {
	albums, err := l.store.ListAlbums(ctx)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.albums = albums
	l.mu.Unlock()
	return nil
}

// refreshTags reloads only the tag collection from the store.
func (l *Library) refreshTags(ctx context.Context) error {
	tags, err := l.store.ListTags(ctx)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.tags = tags
	l.mu.Unlock()
	return nil
}
