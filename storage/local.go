package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage implements Storage on the local filesystem. Used for
// development; signed URLs degrade to stable links under the configured base
// URL.
type LocalStorage struct {
	basePath string
	baseURL  string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// BasePath returns the directory files are stored under, so the server can
// mount it as a static route for the links SignedURL hands out.
func (s *LocalStorage) BasePath() string {
	return s.basePath
}

// Upload stores a file locally
func (s *LocalStorage) Upload(ctx context.Context, path string, contentType string, data io.Reader) error {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(path))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, data); err != nil {
		os.Remove(fullPath) // Clean up on error
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// Download retrieves a file from local storage
func (s *LocalStorage) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(path))

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete removes a file from local storage
func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(path))

	err := os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// SignedURL returns a download link served by the application itself
func (s *LocalStorage) SignedURL(ctx context.Context, path string) (string, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(path))
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("failed to stat file: %w", err)
	}
	return s.baseURL + "/" + path, nil
}
