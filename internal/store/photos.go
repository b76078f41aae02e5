package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/lumenapp/lumen-server/internal/domain"
)

// Photo errors.
var ErrPhotoNotFound = errors.New("photo not found")

// SavePhoto stores a photo record, overwriting any existing record with the same ID.
func (s *Store) SavePhoto(ctx context.Context, p *domain.Photo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set([]byte(photoPrefix+p.ID), p)
}

// SavePhotos stores multiple photos in a single transaction.
// Used by backup import and batch ingest so a crash mid-write cannot leave
// a partially imported batch.
func (s *Store) SavePhotos(ctx context.Context, photos []*domain.Photo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, p := range photos {
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		if err := wb.Set([]byte(photoPrefix+p.ID), data); err != nil {
			return err
		}
	}

	return wb.Flush()
}

// GetPhoto retrieves a photo by ID.
func (s *Store) GetPhoto(ctx context.Context, photoID string) (*domain.Photo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var p domain.Photo
	err := s.get([]byte(photoPrefix+photoID), &p)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPhotos returns all photos ordered newest-first by DateAdded.
// Ties break by ID for a stable order.
func (s *Store) ListPhotos(ctx context.Context) ([]*domain.Photo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	photos, err := listPrefix[domain.Photo](s, photoPrefix)
	if err != nil {
		return nil, err
	}

	sort.Slice(photos, func(i, j int) bool {
		if !photos[i].DateAdded.Equal(photos[j].DateAdded) {
			return photos[i].DateAdded.After(photos[j].DateAdded)
		}
		return photos[i].ID < photos[j].ID
	})

	return photos, nil
}

// UpdatePhoto applies mutate to the stored photo inside a single transaction.
// Returns ErrPhotoNotFound if the photo does not exist.
func (s *Store) UpdatePhoto(ctx context.Context, photoID string, mutate func(*domain.Photo)) (*domain.Photo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var p domain.Photo
	key := []byte(photoPrefix + photoID)

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getInTxn(txn, key, &p); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrPhotoNotFound
			}
			return err
		}

		mutate(&p)
		return setInTxn(txn, key, &p)
	})

	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePhoto removes a photo record and scrubs its ID from every album's
// member list in the same transaction. Tag counts are left untouched; bulk
// deletion reconciles them by exact recount.
// Returns ErrPhotoNotFound if the photo does not exist.
func (s *Store) DeletePhoto(ctx context.Context, photoID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(photoPrefix + photoID)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrPhotoNotFound
			}
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return scrubAlbumMembershipInTxn(txn, map[string]bool{photoID: true})
	})
}

// DeletePhotos removes multiple photo records in a single transaction,
// scrubbing album membership for all of them in one pass.
// Missing IDs are skipped; the count of actually deleted records is returned.
func (s *Store) DeletePhotos(ctx context.Context, photoIDs []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	deleted := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		removed := make(map[string]bool, len(photoIDs))
		for _, id := range photoIDs {
			key := []byte(photoPrefix + id)
			if _, err := txn.Get(key); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			if err := txn.Delete(key); err != nil {
				return err
			}
			removed[id] = true
			deleted++
		}
		if deleted == 0 {
			return nil
		}
		return scrubAlbumMembershipInTxn(txn, removed)
	})

	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// ClearPhotoAlbumRefs empties every photo's album membership list.
// Used when the album collection is wiped out from under surviving photos.
func (s *Store) ClearPhotoAlbumRefs(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return forEachPhotoInTxn(txn, func(key []byte, p *domain.Photo) error {
			if len(p.Albums) == 0 {
				return nil
			}
			p.Albums = []string{}
			return setInTxn(txn, key, p)
		})
	})
}

// ClearPhotoTagRefs strips every photo's tag names.
// Used when the tag collection is wiped out from under surviving photos.
func (s *Store) ClearPhotoTagRefs(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return forEachPhotoInTxn(txn, func(key []byte, p *domain.Photo) error {
			if len(p.Tags) == 0 {
				return nil
			}
			p.Tags = []string{}
			return setInTxn(txn, key, p)
		})
	})
}

// ClearPhotos removes all photo records.
func (s *Store) ClearPhotos(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.clearPrefix(photoPrefix)
}

// CountPhotos returns the number of stored photos without loading values.
func (s *Store) CountPhotos(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	prefix := []byte(photoPrefix)
	count := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})

	return count, err
}
