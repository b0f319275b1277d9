package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fitforge/internal/fileutil"
)

// FilesystemStore implements ObjectStore against a local directory tree,
// one subdirectory per bucket.
type FilesystemStore struct {
	root string
}

// NewFilesystemStore creates a filesystem-backed object store rooted at root.
func NewFilesystemStore(root string) (*FilesystemStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("storage root must not be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &FilesystemStore{root: root}, nil
}

// Get copies bucket/key to localPath.
func (s *FilesystemStore) Get(ctx context.Context, bucket, key, localPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := s.objectPath(bucket, key)
	if err != nil {
		return err
	}
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("object %s/%s not found", bucket, key)
		}
		return fmt.Errorf("stat object %s/%s: %w", bucket, key, err)
	}
	if err := fileutil.CopyFile(src, localPath); err != nil {
		return fmt.Errorf("download %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Put copies localPath to bucket/key. Content type is recorded in a sidecar
// so tests and local tooling can assert upload metadata.
func (s *FilesystemStore) Put(ctx context.Context, localPath, bucket, key, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := s.objectPath(bucket, key)
	if err != nil {
		return err
	}
	if err := fileutil.CopyFile(localPath, dst); err != nil {
		return fmt.Errorf("upload %s/%s: %w", bucket, key, err)
	}
	if contentType != "" {
		if err := os.WriteFile(dst+".content-type", []byte(contentType), 0o644); err != nil {
			return fmt.Errorf("record content type for %s/%s: %w", bucket, key, err)
		}
	}
	return nil
}

// ContentType returns the recorded content type for bucket/key, if any.
func (s *FilesystemStore) ContentType(bucket, key string) (string, error) {
	path, err := s.objectPath(bucket, key)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path + ".content-type")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *FilesystemStore) objectPath(bucket, key string) (string, error) {
	bucket = strings.TrimSpace(bucket)
	key = strings.TrimSpace(key)
	if bucket == "" || key == "" {
		return "", fmt.Errorf("bucket and key must not be empty")
	}
	path := filepath.Join(s.root, bucket, filepath.FromSlash(key))
	// Reject keys that escape the bucket directory.
	if !strings.HasPrefix(filepath.Clean(path), filepath.Clean(filepath.Join(s.root, bucket))+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid key %q: escapes bucket", key)
	}
	return path, nil
}
