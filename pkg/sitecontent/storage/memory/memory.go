package memory

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"sync"
	"time"

	"github.com/gridironhq/site-content/pkg/sitecontent"
)

type object struct {
	data        []byte
	contentType string
	etag        string
	updatedAt   time.Time
}

// Store is an in-memory implementation of the sitecontent.ObjectStore interface
type Store struct {
	mu      sync.RWMutex
	objects map[string]object
}

// New creates a new in-memory object store
func New() *Store {
	return &Store{
		objects: make(map[string]object),
	}
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, *sitecontent.ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, exists := s.objects[key]
	if !exists {
		return nil, nil, sitecontent.ErrObjectNotFound
	}

	return io.NopCloser(bytes.NewReader(obj.data)), infoFor(key, obj), nil
}

func (s *Store) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	sum := md5.Sum(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = object{
		data:        data,
		contentType: contentType,
		etag:        hex.EncodeToString(sum[:]),
		updatedAt:   time.Now().UTC(),
	}
	return nil
}

func (s *Store) Head(ctx context.Context, key string) (*sitecontent.ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, exists := s.objects[key]
	if !exists {
		return nil, sitecontent.ErrObjectNotFound
	}
	return infoFor(key, obj), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objects[key]; !exists {
		return sitecontent.ErrObjectNotFound
	}
	delete(s.objects, key)
	return nil
}

func infoFor(key string, obj object) *sitecontent.ObjectInfo {
	return &sitecontent.ObjectInfo{
		Key:         key,
		Size:        int64(len(obj.data)),
		ContentType: obj.contentType,
		ETag:        obj.etag,
		UpdatedAt:   obj.updatedAt,
	}
}
