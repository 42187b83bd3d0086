package blobmem

import (
	"context"
	"io"
	"path"
	"sync"

	"github.com/justArale/recipe-book-server/core"
	"github.com/oklog/ulid/v2"
)

// BlobStore keeps image binaries in process memory. Uploaded files vanish
// on restart; it exists for development and tests.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string][]byte)}
}

func (s *BlobStore) Upload(ctx context.Context, r io.Reader, folder, contentType string) (core.BlobRef, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.BlobRef{}, err
	}

	key := path.Join(folder, ulid.Make().String())
	s.mu.Lock()
	s.blobs[key] = data
	s.mu.Unlock()

	return core.BlobRef{
		Key: key,
		URL: "/media/" + key,
	}, nil
}

func (s *BlobStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; !ok {
		return core.NotFoundf("blob not found")
	}
	delete(s.blobs, key)
	return nil
}

// Get exposes stored bytes for serving in development mode.
func (s *BlobStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	return data, ok
}
