package blobfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/justArale/recipe-book-server/core"
	"github.com/oklog/ulid/v2"
)

// BlobStore keeps image binaries on the local filesystem under basePath.
// The server mounts basePath read-only under baseURL so the returned URLs
// resolve.
type BlobStore struct {
	basePath string
	baseURL  string
}

func NewBlobStore(basePath, baseURL string) *BlobStore {
	return &BlobStore{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}
}

func (s *BlobStore) Upload(ctx context.Context, r io.Reader, folder, contentType string) (core.BlobRef, error) {
	key := path.Join(folder, ulid.Make().String())

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return core.BlobRef{}, fmt.Errorf("failed to create blob directory: %v", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return core.BlobRef{}, fmt.Errorf("failed to create blob file: %v", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(fullPath)
		return core.BlobRef{}, fmt.Errorf("failed to write blob: %v", err)
	}

	return core.BlobRef{
		Key: key,
		URL: s.baseURL + "/" + key,
	}, nil
}

func (s *BlobStore) Delete(ctx context.Context, key string) error {
	// Keys come out of BlobRefs this store issued, but never trust them as
	// paths.
	clean := path.Clean("/" + key)
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(clean))

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return core.NotFoundf("blob not found")
		}
		return fmt.Errorf("failed to delete blob %s: %v", key, err)
	}
	return nil
}
