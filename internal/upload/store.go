// Package upload stores captured photos on the local filesystem. Paths
// returned by Save are what the ledger and face profiles persist; Remove is
// the cleanup half used when verification fails or a user is deleted.
package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	id "geoattend/pkg/domain"
)

// maxPhotoBytes guards against oversized uploads reaching disk.
const maxPhotoBytes = 16 << 20

// Store writes photos beneath a single root directory.
type Store struct {
	root string
}

// New creates the root directory if needed.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{root: root}, nil
}

// Save writes the photo and returns its path. The filename embeds the user,
// a tag ("in", "out", "enroll"), and a timestamp, so concurrent requests for
// different legs never collide.
func (s *Store) Save(userID id.UserID, tag string, taken time.Time, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty photo")
	}
	if len(data) > maxPhotoBytes {
		return "", fmt.Errorf("photo exceeds %d bytes", maxPhotoBytes)
	}
	name := fmt.Sprintf("%s_%s_%s.jpg", userID.String(), tag, taken.Format("20060102_150405.000"))
	path := filepath.Join(s.root, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}
	return path, nil
}

// Remove deletes a stored photo. Removing an already-missing file is not an
// error; the goal is only that no orphaned file remains.
func (s *Store) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove photo: %w", err)
	}
	return nil
}

// Exists reports whether a stored photo is still on disk. Used by tests to
// assert cleanup behavior.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
