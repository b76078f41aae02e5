package service

import (
	"context"
	"strings"
	"time"

	"github.com/lumenapp/lumen-server/internal/domain"
	apperrors "github.com/lumenapp/lumen-server/internal/errors"
	"github.com/lumenapp/lumen-server/internal/id"
	"github.com/lumenapp/lumen-server/internal/store"
)

// CreateAlbum creates an empty album.
func (l *Library) CreateAlbum(ctx context.Context, name, description string) (*domain.Album, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("album name is required")
	}

	albumID, err := id.Generate("album")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	album := &domain.Album{
		ID:          albumID,
		Name:        name,
		Description: description,
		PhotoIDs:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := l.store.SaveAlbum(ctx, album); err != nil {
		return nil, apperrors.Storage("failed to save album", err)
	}

	l.mu.Lock()
	l.albums = append([]*domain.Album{album}, l.albums...)
	l.mu.Unlock()

	l.activity.Record(ctx, "album.created", albumID, name)
	return album, nil
}

// GetAlbum returns a single album by ID.
func (l *Library) GetAlbum(ctx context.Context, albumID string) (*domain.Album, error) {
	a, err := l.store.GetAlbum(ctx, albumID)
	if apperrors.Is(err, store.ErrAlbumNotFound) {
		return nil, apperrors.NotFoundf("album %s not found", albumID)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// AlbumUpdate carries optional metadata changes for UpdateAlbum.
// Nil fields are left unchanged.
type AlbumUpdate struct {
	Name         *string
	Description  *string
	CoverPhotoID *string
}

// UpdateAlbum changes album metadata and bumps UpdatedAt.
// No-op if the album does not exist.
func (l *Library) UpdateAlbum(ctx context.Context, albumID string, upd AlbumUpdate) (*domain.Album, error) {
	updated, err := l.store.UpdateAlbum(ctx, albumID, func(a *domain.Album) {
		if upd.Name != nil && strings.TrimSpace(*upd.Name) != "" {
			a.Name = strings.TrimSpace(*upd.Name)
		}
		if upd.Description != nil {
			a.Description = *upd.Description
		}
		if upd.CoverPhotoID != nil {
			a.CoverPhotoID = *upd.CoverPhotoID
		}
	})
	if apperrors.Is(err, store.ErrAlbumNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	l.replaceAlbum(updated)
	return updated, nil
}

// DeleteAlbum removes an album and cleans the album's ID out of every member
// photo's album list. Member photos themselves are untouched.
// No-op if the album does not exist.
func (l *Library) DeleteAlbum(ctx context.Context, albumID string) error {
	err := l.store.DeleteAlbum(ctx, albumID)
	if apperrors.Is(err, store.ErrAlbumNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	l.mu.Lock()
	kept := l.albums[:0]
	for _, a := range l.albums {
		if a.ID != albumID {
			kept = append(kept, a)
		}
	}
	l.albums = kept
	l.mu.Unlock()

	// Member photos lost a back-reference; refresh them.
	photos, err := l.store.ListPhotos(ctx)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.photos = photos
	l.mu.Unlock()

	l.activity.Record(ctx, "album.deleted", albumID, "")
	return nil
}

// AddPhotosToAlbum unions photos into an album's member list and mirrors the
// album ID onto each photo. Idempotent per photo.
// No-op if the album does not exist.
func (l *Library) AddPhotosToAlbum(ctx context.Context, albumID string, photoIDs []string) (*domain.Album, error) {
	album, err := l.store.AddPhotosToAlbum(ctx, albumID, photoIDs)
	if apperrors.Is(err, store.ErrAlbumNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	l.replaceAlbum(album)
	if err := l.refreshPhotos(ctx, photoIDs); err != nil {
		return nil, err
	}

	l.activity.Record(ctx, "album.photos_added", albumID, "")
	return album, nil
}

// RemovePhotoFromAlbum drops a photo from an album's member list and removes
// the back-reference from the photo. Idempotent.
// No-op if the album does not exist.
func (l *Library) RemovePhotoFromAlbum(ctx context.Context, albumID, photoID string) (*domain.Album, error) {
	album, err := l.store.RemovePhotoFromAlbum(ctx, albumID, photoID)
	if apperrors.Is(err, store.ErrAlbumNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	l.replaceAlbum(album)
	if err := l.refreshPhotos(ctx, []string{photoID}); err != nil {
		return nil, err
	}
	return album, nil
}

// MovePhotos transfers photos from one album to another: each photo loses
// the source membership and gains the destination, on both sides of the
// relation. Add-to-destination runs first so a failure between the two
// steps leaves photos in both albums rather than in neither.
func (l *Library) MovePhotos(ctx context.Context, photoIDs []string, fromAlbumID, toAlbumID string) error {
	if fromAlbumID == toAlbumID {
		return nil
	}

	dest, err := l.store.AddPhotosToAlbum(ctx, toAlbumID, photoIDs)
	if apperrors.Is(err, store.ErrAlbumNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	l.replaceAlbum(dest)

	for _, photoID := range photoIDs {
		src, err := l.store.RemovePhotoFromAlbum(ctx, fromAlbumID, photoID)
		if apperrors.Is(err, store.ErrAlbumNotFound) {
			break
		}
		if err != nil {
			return err
		}
		l.replaceAlbum(src)
	}

	if err := l.refreshPhotos(ctx, photoIDs); err != nil {
		return err
	}

	l.activity.Record(ctx, "album.photos_moved", toAlbumID, fromAlbumID)
	return nil
}

// CopyPhotos adds photos to the destination album without touching their
// membership anywhere else.
func (l *Library) CopyPhotos(ctx context.Context, photoIDs []string, toAlbumID string) error {
	_, err := l.AddPhotosToAlbum(ctx, toAlbumID, photoIDs)
	return err
}

// refreshPhotos re-reads the given photo records into the cache.
// Missing IDs are skipped.
func (l *Library) refreshPhotos(ctx context.Context, photoIDs []string) error {
	for _, pid := range photoIDs {
		p, err := l.store.GetPhoto(ctx, pid)
		if apperrors.Is(err, store.ErrPhotoNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		l.replacePhoto(p)
	}
	return nil
}
