// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FSStore keeps objects at root/bucket/key on the local filesystem.
type FSStore struct {
	root string
}

// NewFSStore returns a store rooted at root. Directories are created on demand.
func NewFSStore(root string) *FSStore {
	return &FSStore{root: root}
}

// Root returns the base directory.
func (s *FSStore) Root() string {
	return s.root
}

// Put writes data through a temporary file and renames it into place, so
// readers never observe a partial object. contentType is not persisted.
func (s *FSStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dest, err := s.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".put-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing object: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Open returns a reader for bucket/key. The caller closes it.
func (s *FSStore) Open(bucket, key string) (io.ReadSeekCloser, error) {
	p, err := s.path(bucket, key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// path maps bucket/key to a file below root. Keys that would escape the
// bucket directory are rejected.
func (s *FSStore) path(bucket, key string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." {
		return "", fmt.Errorf("%w: bucket %q", ErrInvalidKey, bucket)
	}
	clean := path.Clean("/" + key)
	if key == "" || clean == "/" || clean[1:] != key {
		return "", fmt.Errorf("%w: key %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.root, bucket, filepath.FromSlash(key)), nil
}
