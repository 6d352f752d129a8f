package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FsStore keeps objects on the local filesystem under baseDir and serves them
// from baseURL (the server mounts baseDir statically).
type FsStore struct {
	baseDir string
	baseURL string
}

func NewFsStore(baseDir, baseURL string) (*FsStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("blob base dir is not configured")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob dir: %w", err)
	}
	return &FsStore{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *FsStore) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create object dir: %w", err)
	}

	// Write to a temp file first so readers never observe a partial object.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp object: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close object: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to finalize object: %w", err)
	}
	return nil
}

func (s *FsStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (*SignedURL, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("object %s not found: %w", key, err)
	}
	return &SignedURL{
		Url:       s.baseURL + "/" + key,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

func (s *FsStore) Healthy(ctx context.Context) bool {
	info, err := os.Stat(s.baseDir)
	return err == nil && info.IsDir()
}

// resolve rejects keys escaping the base dir.
func (s *FsStore) resolve(key string) (string, error) {
	cleaned := filepath.Clean("/" + key)
	if cleaned == "/" {
		return "", fmt.Errorf("empty object key")
	}
	return filepath.Join(s.baseDir, cleaned), nil
}
