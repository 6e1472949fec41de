package local

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"triage-backend/internal/shared/storage/object"
)

// Store implements ObjectStore using the local filesystem. Buckets map to
// directories under baseDir and objects are served back via the /files route.
type Store struct {
	baseDir string
	baseURL string
}

// New creates a new local object store rooted at baseDir.
func New(baseDir, publicBaseURL string) object.ObjectStore {
	return &Store{
		baseDir: baseDir,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Save writes the reader to disk under the bucket directory.
func (s *Store) Save(ctx context.Context, bucket, key, contentType string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	_ = contentType

	fullPath, err := s.resolve(bucket, key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return 0, fmt.Errorf("mkdir: %w", err)
	}

	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, r)
	if err != nil {
		return 0, fmt.Errorf("write body: %w", err)
	}
	return written, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath, err := s.resolve(bucket, key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, object.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// PublicURL points at the server's own /files route.
func (s *Store) PublicURL(bucket, key string) string {
	escaped := url.PathEscape(key)
	// PathEscape encodes "/" too; put separators back.
	escaped = strings.ReplaceAll(escaped, "%2F", "/")
	return s.baseURL + "/files/" + url.PathEscape(bucket) + "/" + escaped
}

func (s *Store) resolve(bucket, key string) (string, error) {
	cleanBucket := filepath.Clean(bucket)
	cleanKey := filepath.Clean(key)
	if cleanBucket == "." || strings.HasPrefix(cleanBucket, "..") || filepath.IsAbs(cleanBucket) {
		return "", fmt.Errorf("invalid bucket")
	}
	if cleanKey == "." || strings.HasPrefix(cleanKey, "..") || filepath.IsAbs(cleanKey) {
		return "", fmt.Errorf("invalid storage key")
	}
	return filepath.Join(s.baseDir, cleanBucket, cleanKey), nil
}

var _ object.ObjectStore = (*Store)(nil)
