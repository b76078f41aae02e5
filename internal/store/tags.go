package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/lumenapp/lumen-server/internal/domain"
)

// Tag errors.
var ErrTagNotFound = errors.New("tag not found")

// SaveTag stores a tag record, overwriting any existing record with the same ID.
func (s *Store) SaveTag(ctx context.Context, t *domain.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set([]byte(tagPrefix+t.ID), t)
}

// GetTag retrieves a tag by ID.
func (s *Store) GetTag(ctx context.Context, tagID string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var t domain.Tag
	err := s.get([]byte(tagPrefix+tagID), &t)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindTagByName retrieves a tag by exact name match.
// Tag collections are small enough that a prefix scan beats maintaining a
// name index that would need rewriting on every rename.
func (s *Store) FindTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tags, err := listPrefix[domain.Tag](s, tagPrefix)
	if err != nil {
		return nil, err
	}

	for _, t := range tags {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, ErrTagNotFound
}

// ListTags returns all tags ordered by photo count (descending).
// Ties break by name for stability.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tags, err := listPrefix[domain.Tag](s, tagPrefix)
	if err != nil {
		return nil, err
	}

	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Name < tags[j].Name
	})

	return tags, nil
}

// UpdateTag applies mutate to the stored tag inside a single transaction.
// If mutate changes the tag's name, the old name is rewritten to the new one
// in every photo carrying it, within the same transaction.
// Returns ErrTagNotFound if the tag does not exist.
func (s *Store) UpdateTag(ctx context.Context, tagID string, mutate func(*domain.Tag)) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var t domain.Tag
	key := []byte(tagPrefix + tagID)

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getInTxn(txn, key, &t); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrTagNotFound
			}
			return err
		}

		oldName := t.Name
		mutate(&t)

		if t.Name != oldName {
			if err := renamePhotoTagsInTxn(txn, oldName, t.Name); err != nil {
				return err
			}
		}

		return setInTxn(txn, key, &t)
	})

	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTag removes a tag record and strips its name from every photo
// carrying it, all in one transaction.
// Returns ErrTagNotFound if the tag does not exist.
func (s *Store) DeleteTag(ctx context.Context, tagID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(tagPrefix + tagID)

		var t domain.Tag
		if err := getInTxn(txn, key, &t); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrTagNotFound
			}
			return err
		}

		if err := forEachPhotoInTxn(txn, func(pKey []byte, p *domain.Photo) error {
			if p.RemoveTag(t.Name) {
				return setInTxn(txn, pKey, p)
			}
			return nil
		}); err != nil {
			return err
		}

		return txn.Delete(key)
	})
}

// ApplyTagToPhotos adds the tag's name to each listed photo, incrementing the
// tag's count once per photo that actually gained it, in one transaction.
// Idempotent per photo; missing photo IDs are skipped.
// Returns the updated tag.
func (s *Store) ApplyTagToPhotos(ctx context.Context, tagID string, photoIDs []string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var t domain.Tag
	key := []byte(tagPrefix + tagID)

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getInTxn(txn, key, &t); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrTagNotFound
			}
			return err
		}

		added := 0
		for _, photoID := range photoIDs {
			pKey := []byte(photoPrefix + photoID)
			var p domain.Photo
			if err := getInTxn(txn, pKey, &p); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}

			if p.AddTag(t.Name) {
				if err := setInTxn(txn, pKey, &p); err != nil {
					return err
				}
				added++
			}
		}

		if added == 0 {
			return nil
		}
		t.Count += added
		return setInTxn(txn, key, &t)
	})

	if err != nil {
		return nil, err
	}
	return &t, nil
}

// RemoveTagFromPhoto removes the tag's name from a photo and decrements the
// tag's count in the same transaction. Idempotent; the count never drops
// below zero. Returns the updated tag.
func (s *Store) RemoveTagFromPhoto(ctx context.Context, tagID, photoID string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var t domain.Tag
	key := []byte(tagPrefix + tagID)

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getInTxn(txn, key, &t); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrTagNotFound
			}
			return err
		}

		pKey := []byte(photoPrefix + photoID)
		var p domain.Photo
		if err := getInTxn(txn, pKey, &p); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}

		if !p.RemoveTag(t.Name) {
			return nil
		}
		if err := setInTxn(txn, pKey, &p); err != nil {
			return err
		}

		t.Count--
		if t.Count < 0 {
			t.Count = 0 // Safety guard.
		}
		return setInTxn(txn, key, &t)
	})

	if err != nil {
		return nil, err
	}
	return &t, nil
}

// RecalculateTagCounts recomputes every tag's count by an exact scan of the
// surviving photos. Used for repair after bulk deletes, where incremental
// decrements would have to track which of the deleted photos carried which tag.
func (s *Store) RecalculateTagCounts(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		counts := make(map[string]int)
		if err := forEachPhotoInTxn(txn, func(_ []byte, p *domain.Photo) error {
			for _, name := range p.Tags {
				counts[name]++
			}
			return nil
		}); err != nil {
			return err
		}

		prefix := []byte(tagPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		type tagUpdate struct {
			key []byte
			tag *domain.Tag
		}
		var updates []tagUpdate

		it := txn.NewIterator(opts)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var t domain.Tag
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &t)
			}); err != nil {
				continue
			}

			if want := counts[t.Name]; t.Count != want {
				t.Count = want
				updates = append(updates, tagUpdate{key: item.KeyCopy(nil), tag: &t})
			}
		}
		it.Close()

		for _, u := range updates {
			if err := setInTxn(txn, u.key, u.tag); err != nil {
				return err
			}
		}
		return nil
	})
}

// ClearTags removes all tag records.
func (s *Store) ClearTags(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.clearPrefix(tagPrefix)
}

// forEachPhotoInTxn iterates all photos within an existing transaction.
// Collects keys first so fn may write to the photos it visits.
func forEachPhotoInTxn(txn *badger.Txn, fn func(key []byte, p *domain.Photo) error) error {
	prefix := []byte(photoPrefix)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix

	type entry struct {
		key   []byte
		photo *domain.Photo
	}
	var entries []entry

	it := txn.NewIterator(opts)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		var p domain.Photo
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		}); err != nil {
			continue
		}
		entries = append(entries, entry{key: item.KeyCopy(nil), photo: &p})
	}
	it.Close()

	for _, e := range entries {
		if err := fn(e.key, e.photo); err != nil {
			return err
		}
	}
	return nil
}

// renamePhotoTagsInTxn rewrites oldName to newName in every photo's tag list.
func renamePhotoTagsInTxn(txn *badger.Txn, oldName, newName string) error {
	return forEachPhotoInTxn(txn, func(key []byte, p *domain.Photo) error {
		if !p.RemoveTag(oldName) {
			return nil
		}
		p.AddTag(newName)
		return setInTxn(txn, key, p)
	})
}
