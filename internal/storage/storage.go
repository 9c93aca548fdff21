// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package storage writes exported images to object storage. Two backends
// exist: S3 and a local directory tree that mirrors bucket/key layout.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/docextract/pkg/types"
)

// ErrNotConfigured is returned by New when the configuration selects no backend.
var ErrNotConfigured = errors.New("storage not configured")

// ErrInvalidKey is returned by FSStore for a bucket or key that does not
// map to a path below the bucket directory.
var ErrInvalidKey = errors.New("invalid storage path")

// Store writes one object under bucket/key.
type Store interface {
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
}

// New builds the Store selected by cfg.Backend.
func New(ctx context.Context, cfg types.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case types.StorageS3:
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("s3 storage: bucket is required")
		}
		return NewS3Store(ctx, cfg.AWS)
	case types.StorageFS:
		if cfg.Root == "" {
			return nil, fmt.Errorf("fs storage: root directory is required")
		}
		return NewFSStore(cfg.Root), nil
	case types.StorageNone, "":
		return nil, ErrNotConfigured
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
