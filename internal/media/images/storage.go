// Package images provides original-file storage, dimension probing, and
// BlurHash placeholders for imported photos.
package images

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Storage manages original photo files on disk.
// Thread-safe for concurrent operations. Files live flat under
// {basePath}/originals/, named by the caller (photo ID plus extension).
type Storage struct {
	basePath string
	mu       sync.RWMutex // Protects file operations
}

// NewStorage creates a Storage rooted at {basePath}/originals/.
func NewStorage(basePath string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	storagePath := filepath.Join(basePath, "originals")
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create originals directory: %w", err)
	}

	return &Storage{basePath: storagePath}, nil
}

// Save writes original file bytes under the given name and returns the
// stored path. Name must be a bare filename; path separators are rejected
// to keep callers inside the originals directory.
func (s *Storage) Save(_ context.Context, name string, data []byte) (string, error) {
	if name == "" {
		return "", fmt.Errorf("file name cannot be empty")
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return "", fmt.Errorf("file name must not contain path separators")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("file data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.basePath, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write original file: %w", err)
	}
	return path, nil
}

// Read retrieves the bytes of a stored original.
func (s *Storage) Read(_ context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("original not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to read original file: %w", err)
	}
	return data, nil
}

// Exists checks whether a stored original is present.
func (s *Storage) Exists(path string) bool {
	if path == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(path)
	return err == nil
}

// Remove deletes a stored original. Removing an absent file is not an error.
func (s *Storage) Remove(_ context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			// Already deleted, not an error.
			return nil
		}
		return fmt.Errorf("failed to delete original file: %w", err)
	}
	return nil
}

// Hash computes the SHA256 of a stored original.
// Returns a hex-encoded string for ETag/cache validation.
func (s *Storage) Hash(path string) (string, error) {
	data, err := s.Read(context.Background(), path)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}
