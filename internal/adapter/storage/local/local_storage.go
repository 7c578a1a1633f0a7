package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/SashaDiz/real-estate-directory/internal/property/domain"
)

// Storage keeps uploaded images in a content directory on the local
// filesystem and serves them through the /uploads static route.
type Storage struct {
	dir     string
	baseURL string
}

func NewStorage(dir, baseURL string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &Storage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *Storage) Save(ctx context.Context, filename string, data []byte, contentType string) (string, error) {
	path, err := s.resolve(filename)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return s.baseURL + "/uploads/" + filename, nil
}

func (s *Storage) Delete(ctx context.Context, filename string) error {
	path, err := s.resolve(filename)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.ErrImageNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}

// Dir exposes the content directory for the static file server.
func (s *Storage) Dir() string {
	return s.dir
}

// resolve keeps filenames inside the content directory.
func (s *Storage) resolve(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("%w: invalid filename %q", domain.ErrValidation, filename)
	}
	return filepath.Join(s.dir, filename), nil
}
