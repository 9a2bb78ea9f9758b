// Package images provides photo processing and filesystem storage for
// scrap photographs: normalization to JPEG, downscaling, BlurHash
// placeholder generation, and on-demand resizing for delivery.
package images

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Storage manages photo filesystem operations.
// Thread-safe for concurrent operations.
type Storage struct {
	basePath string
	mu       sync.RWMutex // Protects file operations
}

// NewStorage creates a new Storage instance rooted at photosPath.
// Photos are stored as {photosPath}/{key}.jpg.
func NewStorage(photosPath string) (*Storage, error) {
	if photosPath == "" {
		return nil, fmt.Errorf("photos path cannot be empty")
	}

	if err := os.MkdirAll(photosPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photos directory: %w", err)
	}

	return &Storage{
		basePath: photosPath,
	}, nil
}

// Save stores image data under a key.
func (s *Storage) Save(key string, imgData []byte) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	if len(imgData) == 0 {
		return fmt.Errorf("image data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(key)

	if err := os.WriteFile(path, imgData, 0644); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}

	return nil
}

// Get retrieves image data for a key.
func (s *Storage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.Path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image not found for %s: %w", key, err)
		}
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}

	return data, nil
}

// Exists checks if an image exists for a key.
func (s *Storage) Exists(key string) bool {
	if key == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.Path(key)
	_, err := os.Stat(path)
	return err == nil
}

// Delete removes the image stored under a key. Deleting a key that was
// already removed is not an error.
func (s *Storage) Delete(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(key)

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete image file: %w", err)
	}

	return nil
}

// Hash computes SHA256 hash of an image.
// Returns hex-encoded string for ETag/cache validation.
func (s *Storage) Hash(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key cannot be empty")
	}

	data, err := s.Get(key)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// Path returns the full filesystem path for a key's image.
func (s *Storage) Path(key string) string {
	return filepath.Join(s.basePath, fmt.Sprintf("%s.jpg", key))
}
