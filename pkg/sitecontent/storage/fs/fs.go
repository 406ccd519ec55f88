package fs

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gridironhq/site-content/pkg/sitecontent"
)

// Store is a filesystem implementation of the sitecontent.ObjectStore interface
type Store struct {
	baseDir string
}

// Config options for the filesystem store
type Config struct {
	BaseDir string // Base directory for storing objects
}

// New creates a new filesystem object store
func New(config Config) (*Store, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Store{baseDir: config.BaseDir}, nil
}

// filePath resolves a key under baseDir. Keys are opaque /-delimited
// strings, so anything that would resolve outside the base directory is
// treated as a key that does not exist.
func (s *Store) filePath(key string) (string, error) {
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))

	rel, err := filepath.Rel(s.baseDir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", sitecontent.ErrObjectNotFound
	}
	return path, nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, *sitecontent.ObjectInfo, error) {
	info, err := s.Head(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	filePath, err := s.filePath(key)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, nil, sitecontent.ErrObjectNotFound
	} else if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, info, nil
}

func (s *Store) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	filePath, err := s.filePath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, body); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *Store) Head(ctx context.Context, key string) (*sitecontent.ObjectInfo, error) {
	filePath, err := s.filePath(key)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, sitecontent.ErrObjectNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	etag, err := fileETag(filePath)
	if err != nil {
		return nil, err
	}

	return &sitecontent.ObjectInfo{
		Key:         key,
		Size:        stat.Size(),
		ContentType: detectContentType(filePath),
		ETag:        etag,
		UpdatedAt:   stat.ModTime(),
	}, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	filePath, err := s.filePath(key)
	if err != nil {
		return err
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return sitecontent.ErrObjectNotFound
	}

	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	s.cleanupEmptyDirectories(filepath.Dir(filePath))
	return nil
}

// fileETag hashes the file contents so the proxy's conditional GET behaves
// the same across backends.
func fileETag(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	h := md5.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func detectContentType(filePath string) string {
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filePath))); byExt != "" {
		return byExt
	}

	contentType := "application/octet-stream"
	if file, err := os.Open(filePath); err == nil {
		defer file.Close()
		buffer := make([]byte, 512)
		if n, err := file.Read(buffer); err == nil {
			contentType = http.DetectContentType(buffer[:n])
		}
	}
	return contentType
}

// cleanupEmptyDirectories recursively removes empty directories up to baseDir
func (s *Store) cleanupEmptyDirectories(dir string) {
	if dir == s.baseDir {
		return
	}

	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			s.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}
