package upload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidPath indicates a media-relative path that escapes the media root.
var ErrInvalidPath = errors.New("invalid media path")

// Storage persists media files under a single root directory.
// All paths are relative to that root.
type Storage struct {
	mediaDir string
}

// NewStorage creates media storage rooted at mediaDir, creating it if needed.
func NewStorage(mediaDir string) (*Storage, error) {
	if mediaDir == "" {
		return nil, fmt.Errorf("media directory cannot be empty")
	}

	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}

	abs, err := filepath.Abs(mediaDir)
	if err != nil {
		return nil, fmt.Errorf("resolve media directory: %w", err)
	}

	return &Storage{mediaDir: abs}, nil
}

// MediaDir returns the absolute media root.
func (s *Storage) MediaDir() string {
	return s.mediaDir
}

// Save writes data to the media-relative path, creating parent directories.
func (s *Storage) Save(relPath string, data []byte) error {
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write media file: %w", err)
	}

	return nil
}

// Delete removes the file at the media-relative path.
// Missing files are not an error.
func (s *Storage) Delete(relPath string) error {
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove media file: %w", err)
	}

	return nil
}

// Exists reports whether a file exists at the media-relative path.
func (s *Storage) Exists(relPath string) bool {
	full, err := s.resolve(relPath)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// resolve turns a media-relative path into an absolute one, rejecting
// anything that would escape the media root.
func (s *Storage) resolve(relPath string) (string, error) {
	if relPath == "" {
		return "", ErrInvalidPath
	}

	full := filepath.Join(s.mediaDir, filepath.FromSlash(relPath))
	if full != s.mediaDir && !strings.HasPrefix(full, s.mediaDir+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}

	return full, nil
}
