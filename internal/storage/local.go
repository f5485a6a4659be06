package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"starboard/internal/observability"
)

// LocalStore keeps objects as plain files under a root directory. It backs
// development and test environments; production deployments use S3Store.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates the root directory if needed and returns a store
// rooted there.
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", root, err)
	}
	return &LocalStore{root: root, baseURL: baseURL}, nil
}

// resolve maps a stored path onto the filesystem, rejecting traversal out of
// the root.
func (s *LocalStore) resolve(path string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(path, "/")))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("invalid storage path %q", path)
	}
	return filepath.Join(s.root, cleaned), nil
}

func (s *LocalStore) Put(ctx context.Context, path string, body io.Reader, contentType string) error {
	ctx, span := observability.GetTraceLayer().TraceBlobOperation(ctx, "put", "local")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		span.RecordError(err)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func (s *LocalStore) Delete(ctx context.Context, path string) error {
	ctx, span := observability.GetTraceLayer().TraceBlobOperation(ctx, "delete", "local")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		span.RecordError(err)
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

func (s *LocalStore) PublicURL(path string) string {
	return joinURL(s.baseURL, path)
}
