package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SignedURLTTL is how long issued download links remain valid.
const SignedURLTTL = 7 * 24 * time.Hour

// ErrNotFound is returned when a storage path does not resolve to an object.
var ErrNotFound = errors.New("file not found")

// Storage interface for blob operations. All paths are tenant-prefixed
// ("tenants/<tenantID>/...") and callers are responsible for the prefix check.
type Storage interface {
	// Upload stores a blob at the given path
	Upload(ctx context.Context, path string, contentType string, data io.Reader) error

	// Download retrieves a blob by path
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a blob by path
	Delete(ctx context.Context, path string) error

	// SignedURL returns a fresh time-limited download URL for the path
	SignedURL(ctx context.Context, path string) (string, error)
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// StorageConfig holds configuration for storage
type StorageConfig struct {
	Type         StorageType
	LocalPath    string // For local storage
	LocalBaseURL string // For local storage download links
	S3Bucket     string // For S3 storage
	S3Region     string // For S3 storage
	AWSAccessKey string
	AWSSecretKey string
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg StorageConfig) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal:
		return NewLocalStorage(cfg.LocalPath, cfg.LocalBaseURL)
	case StorageTypeS3:
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// NewStorageFromEnv creates a storage instance from environment variables
func NewStorageFromEnv() (Storage, error) {
	storageType := os.Getenv("STORAGE_TYPE")
	if storageType == "" {
		storageType = "local" // Default to local for development
	}

	cfg := StorageConfig{
		Type: StorageType(storageType),
	}

	switch StorageType(storageType) {
	case StorageTypeLocal:
		cfg.LocalPath = os.Getenv("STORAGE_LOCAL_PATH")
		if cfg.LocalPath == "" {
			cfg.LocalPath = "./storage/files"
		}
		cfg.LocalBaseURL = os.Getenv("STORAGE_LOCAL_BASE_URL")
		if cfg.LocalBaseURL == "" {
			cfg.LocalBaseURL = "http://localhost:8080/files"
		}
		return NewLocalStorage(cfg.LocalPath, cfg.LocalBaseURL)

	case StorageTypeS3:
		cfg.S3Bucket = os.Getenv("AWS_S3_BUCKET")
		cfg.S3Region = os.Getenv("AWS_REGION")
		if cfg.S3Region == "" {
			cfg.S3Region = "us-east-1"
		}
		cfg.AWSAccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		cfg.AWSSecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET environment variable is required for S3 storage")
		}

		return NewS3Storage(cfg)

	default:
		return nil, fmt.Errorf("unknown storage type: %s", storageType)
	}
}

// TenantPath builds a tenant-scoped storage path, sanitizing the file name.
func TenantPath(tenantID, folder, fileName string) string {
	fileName = strings.ReplaceAll(fileName, " ", "_")
	fileName = strings.ReplaceAll(fileName, "/", "_")
	fileName = strings.ReplaceAll(fileName, "\\", "_")
	return fmt.Sprintf("tenants/%s/%s/%s", tenantID, folder, fileName)
}

// BelongsToTenant reports whether a storage path lives under the tenant's
// prefix. Every externally supplied path must pass this check before any blob
// access.
func BelongsToTenant(path, tenantID string) bool {
	return strings.HasPrefix(path, "tenants/"+tenantID+"/")
}

// ContentTypeFor determines the content type from a file name suffix
func ContentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".mp3":
		return "audio/mpeg"
	case ".m4a":
		return "audio/mp4"
	case ".wav":
		return "audio/wav"
	case ".txt":
		return "text/plain"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
