package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/lumenapp/lumen-server/internal/domain"
)

// Album errors.
var ErrAlbumNotFound = errors.New("album not found")

// SaveAlbum stores an album record, overwriting any existing record with the same ID.
func (s *Store) SaveAlbum(ctx context.Context, a *domain.Album) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set([]byte(albumPrefix+a.ID), a)
}

// GetAlbum retrieves an album by ID.
func (s *Store) GetAlbum(ctx context.Context, albumID string) (*domain.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var a domain.Album
	err := s.get([]byte(albumPrefix+albumID), &a)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrAlbumNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAlbums returns all albums ordered by most recently updated.
// Ties break by name for a stable order.
func (s *Store) ListAlbums(ctx context.Context) ([]*domain.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	albums, err := listPrefix[domain.Album](s, albumPrefix)
	if err != nil {
		return nil, err
	}

	sort.Slice(albums, func(i, j int) bool {
		if !albums[i].UpdatedAt.Equal(albums[j].UpdatedAt) {
			return albums[i].UpdatedAt.After(albums[j].UpdatedAt)
		}
		return albums[i].Name < albums[j].Name
	})

	return albums, nil
}

// UpdateAlbum applies mutate to the stored album inside a single transaction
// and bumps UpdatedAt. Returns ErrAlbumNotFound if the album does not exist.
func (s *Store) UpdateAlbum(ctx context.Context, albumID string, mutate func(*domain.Album)) (*domain.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var a domain.Album
	key := []byte(albumPrefix + albumID)

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getInTxn(txn, key, &a); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrAlbumNotFound
			}
			return err
		}

		mutate(&a)
		a.Touch()
		return setInTxn(txn, key, &a)
	})

	if err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteAlbum removes an album record and scrubs the album from every member
// photo's Albums list, all in one transaction.
// Returns ErrAlbumNotFound if the album does not exist.
func (s *Store) DeleteAlbum(ctx context.Context, albumID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(albumPrefix + albumID)

		var a domain.Album
		if err := getInTxn(txn, key, &a); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrAlbumNotFound
			}
			return err
		}

		// Scrub membership from each photo. Missing photos are skipped;
		// the album record may reference photos deleted earlier.
		for _, photoID := range a.PhotoIDs {
			pKey := []byte(photoPrefix + photoID)
			var p domain.Photo
			if err := getInTxn(txn, pKey, &p); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			if p.RemoveAlbum(albumID) {
				if err := setInTxn(txn, pKey, &p); err != nil {
					return err
				}
			}
		}

		return txn.Delete(key)
	})
}

// AddPhotosToAlbum adds photos to an album, updating both sides of the
// relation in one transaction. Idempotent per photo; photo IDs that do not
// exist are skipped. Returns the updated album.
func (s *Store) AddPhotosToAlbum(ctx context.Context, albumID string, photoIDs []string) (*domain.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var a domain.Album
	key := []byte(albumPrefix + albumID)

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getInTxn(txn, key, &a); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrAlbumNotFound
			}
			return err
		}

		changed := false
		for _, photoID := range photoIDs {
			pKey := []byte(photoPrefix + photoID)
			var p domain.Photo
			if err := getInTxn(txn, pKey, &p); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}

			if p.AddAlbum(albumID) {
				if err := setInTxn(txn, pKey, &p); err != nil {
					return err
				}
			}
			if a.AddPhoto(photoID) {
				changed = true
			}
		}

		if !changed {
			return nil
		}
		a.Touch()
		return setInTxn(txn, key, &a)
	})

	if err != nil {
		return nil, err
	}
	return &a, nil
}

// RemovePhotoFromAlbum removes a photo from an album, updating both sides of
// the relation in one transaction. Idempotent. Returns the updated album.
func (s *Store) RemovePhotoFromAlbum(ctx context.Context, albumID, photoID string) (*domain.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var a domain.Album
	key := []byte(albumPrefix + albumID)

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getInTxn(txn, key, &a); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrAlbumNotFound
			}
			return err
		}

		pKey := []byte(photoPrefix + photoID)
		var p domain.Photo
		if err := getInTxn(txn, pKey, &p); err == nil {
			if p.RemoveAlbum(albumID) {
				if err := setInTxn(txn, pKey, &p); err != nil {
					return err
				}
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if !a.RemovePhoto(photoID) {
			return nil
		}
		a.Touch()
		return setInTxn(txn, key, &a)
	})

	if err != nil {
		return nil, err
	}
	return &a, nil
}

// scrubAlbumMembershipInTxn removes the given photo IDs from every album's
// member list, bumping UpdatedAt on albums that actually changed.
func scrubAlbumMembershipInTxn(txn *badger.Txn, photoIDs map[string]bool) error {
	return forEachAlbumInTxn(txn, func(key []byte, a *domain.Album) error {
		changed := false
		for id := range photoIDs {
			if a.RemovePhoto(id) {
				changed = true
			}
		}
		if !changed {
			return nil
		}
		a.Touch()
		return setInTxn(txn, key, a)
	})
}

// EmptyAlbumMembership empties every album's member list and cover reference.
// Used when the photo collection is wiped out from under surviving albums.
func (s *Store) EmptyAlbumMembership(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return forEachAlbumInTxn(txn, func(key []byte, a *domain.Album) error {
			if len(a.PhotoIDs) == 0 && a.CoverPhotoID == "" {
				return nil
			}
			a.PhotoIDs = []string{}
			a.CoverPhotoID = ""
			a.Touch()
			return setInTxn(txn, key, a)
		})
	})
}

// forEachAlbumInTxn iterates all albums within an existing transaction.
// Collects entries first so fn may write to the albums it visits.
func forEachAlbumInTxn(txn *badger.Txn, fn func(key []byte, a *domain.Album) error) error {
	prefix := []byte(albumPrefix)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix

	type entry struct {
		key   []byte
		album *domain.Album
	}
	var entries []entry

	it := txn.NewIterator(opts)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		var a domain.Album
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &a)
		}); err != nil {
			continue
		}
		entries = append(entries, entry{key: item.KeyCopy(nil), album: &a})
	}
	it.Close()

	for _, e := range entries {
		if err := fn(e.key, e.album); err != nil {
			return err
		}
	}
	return nil
}

// ClearAlbums removes all album records.
func (s *Store) ClearAlbums(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.clearPrefix(albumPrefix)
}
