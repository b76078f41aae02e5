// Package store provides persistent storage for the photo library using BadgerDB.
//
// Records are stored as JSON under typed key prefixes (photo:, album:, tag:).
// All writes go through Badger transactions; multi-record updates that must
// stay consistent (membership plus counts) run in a single transaction.
package store

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Key prefixes for the three record collections.
const (
	photoPrefix = "photo:" // photo:{id} → Photo JSON
	albumPrefix = "album:" // album:{id} → Album JSON
	tagPrefix   = "tag:"   // tag:{id} → Tag JSON
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// ClearAll drops every record in all three collections.
// Used by backup import, which replaces the library wholesale.
func (s *Store) ClearAll() error {
	for _, prefix := range []string{photoPrefix, albumPrefix, tagPrefix} {
		if err := s.db.DropPrefix([]byte(prefix)); err != nil {
			return fmt.Errorf("failed to drop prefix %q: %w", prefix, err)
		}
	}
	return nil
}

// clearPrefix drops all records under a single collection prefix.
func (s *Store) clearPrefix(prefix string) error {
	if err := s.db.DropPrefix([]byte(prefix)); err != nil {
		return fmt.Errorf("failed to drop prefix %q: %w", prefix, err)
	}
	return nil
}

// Helper methods for database operations.

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// set stores a value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// delete removes a key from the database.
func (s *Store) delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// listPrefix iterates all values under a prefix, unmarshaling each into a
// fresh T and appending it to the result. Records that fail to unmarshal are
// skipped rather than failing the whole listing.
func listPrefix[T any](s *Store, prefix string) ([]*T, error) {
	p := []byte(prefix)
	var out []*T

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = p
		opts.PrefetchSize = 100

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			var v T
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &v)
			})
			if err != nil {
				continue
			}
			out = append(out, &v)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// getInTxn reads and unmarshals a record within an existing transaction.
func getInTxn(txn *badger.Txn, key []byte, dest any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
}

// setInTxn marshals and stores a record within an existing transaction.
func setInTxn(txn *badger.Txn, key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return txn.Set(key, data)
}
