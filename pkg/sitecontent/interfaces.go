package sitecontent

import (
	"context"
	"io"
	"time"
)

// ObjectInfo contains metadata about an object in storage.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
	ETag        string
	UpdatedAt   time.Time
}

// ObjectStore defines the interface for storage backends. Keys are
// /-delimited strings with no directory semantics beyond convention. A
// single Put is assumed atomic and visible on success; the store is the only
// synchronization point between writers and readers.
type ObjectStore interface {
	// Get returns the object's body and metadata, or ErrObjectNotFound.
	// The caller owns the returned ReadCloser.
	Get(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)

	// Put writes the full object, replacing any prior value.
	Put(ctx context.Context, key string, body io.Reader, contentType string) error

	// Head returns object metadata without the body, or ErrObjectNotFound.
	Head(ctx context.Context, key string) (*ObjectInfo, error)

	// Delete removes the object.
	Delete(ctx context.Context, key string) error
}

// Service is the content core: the writer, the manifest service, and the
// snapshot guard behind one interface.
type Service interface {
	// WriteDocument normalizes and commits an admin-submitted document, then
	// touches the section manifest. For tracker sections a qualifying marker
	// transition snapshots the prior document first. Manifest, backup and
	// audit failures surface as result warnings, not errors.
	WriteDocument(ctx context.Context, req WriteDocumentRequest) (*WriteResult, error)

	// GetDocument fetches the canonical document, or ErrObjectNotFound.
	GetDocument(ctx context.Context, section string, season *int) (Document, error)

	// TouchManifest overwrites the section manifest with a fresh updatedAt.
	TouchManifest(ctx context.Context, section string, season *int) error

	// ReadManifest never fails: on any fetch or parse problem it returns a
	// synthetic manifest with UpdatedAt "0", so callers can always derive a
	// version token.
	ReadManifest(ctx context.Context, section string, season *int) *Manifest

	// GetBackup returns the current backup document and its meta for a
	// tracker section, or ErrBackupNotFound.
	GetBackup(ctx context.Context, section string, season *int) (Document, *BackupMeta, error)

	// RestoreBackup copies the backup document verbatim onto the canonical
	// key and touches the manifest.
	RestoreBackup(ctx context.Context, section string, season *int) (*RestoreResult, error)
}
