// Package storage keeps uploaded objects (member avatars) on the local
// filesystem or in an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"clubboard/internal/config"
)

// AvatarBucket is the logical bucket holding profile images.
const AvatarBucket = "avatars"

// ErrInvalidKey is returned for empty, absolute or escaping object keys.
var ErrInvalidKey = errors.New("invalid object key")

// ObjectStore stores objects under slash-separated keys and resolves the
// public URL they are served from.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	PublicURL(key string) string
}

// CleanKey normalizes key and rejects anything that could leave the bucket.
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", ErrInvalidKey
		}
	}
	return path.Clean(key), nil
}

// New builds the avatar store selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config) (ObjectStore, error) {
	switch cfg.StorageDriver {
	case "s3":
		return NewS3Store(ctx, S3Config{
			Bucket:          cfg.S3Bucket,
			Prefix:          AvatarBucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
	case "local", "":
		return NewLocalStore(filepath.Join(cfg.StorageLocalDir, AvatarBucket), cfg.PublicBaseURL+LocalMediaPrefix)
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}
