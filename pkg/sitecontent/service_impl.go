package sitecontent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gridironhq/site-content/pkg/sitecontent/audit"
)

const jsonContentType = "application/json"

// service implements the Service interface
type service struct {
	store    ObjectStore
	sections map[string]SectionSpec
	audit    audit.Repository
	now      func() time.Time
}

func (s *service) sectionSpec(slug string) SectionSpec {
	if spec, ok := s.sections[slug]; ok {
		return spec
	}
	return GenericSection(slug)
}

func (s *service) WriteDocument(ctx context.Context, req WriteDocumentRequest) (*WriteResult, error) {
	spec := s.sectionSpec(req.Section)

	doc, err := normalizerFor(spec.Kind)(spec, req.Season, req.Payload)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	updatedAt := isoTime(now)
	doc["updatedAt"] = updatedAt

	result := &WriteResult{
		Document:  doc,
		UpdatedAt: updatedAt,
		Version:   now.UnixMilli(),
	}

	key := CanonicalKey(spec, req.Season)

	// Snapshot guard runs before the commit so the backup reflects the
	// pre-write state. Backup failures never block the primary write.
	if spec.MarkerPath != "" {
		s.maybeSnapshot(ctx, spec, key, doc, updatedAt, result)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	if err := s.store.Put(ctx, key, bytes.NewReader(raw), jsonContentType); err != nil {
		return nil, &StorageError{Key: key, Op: "put", Err: err}
	}

	// Best-effort from here on: the canonical write already succeeded, and
	// rolling it back would be worse than a stale version token.
	if err := s.TouchManifest(ctx, req.Section, req.Season); err != nil {
		s.warn(result, "manifest touch failed", "section", req.Section, "err", err)
	}

	if s.audit != nil {
		entry := &audit.Entry{
			ID:            uuid.New(),
			Section:       req.Section,
			Season:        req.Season,
			Editor:        req.Editor,
			Version:       result.Version,
			BackupCreated: result.BackupCreated,
			CreatedAt:     now,
		}
		if err := s.audit.RecordWrite(ctx, entry); err != nil {
			s.warn(result, "audit record failed", "section", req.Section, "err", err)
		}
	}

	return result, nil
}

// maybeSnapshot copies the current canonical document to the backup key when
// the incoming write crosses a marker transition. All failures are soft.
func (s *service) maybeSnapshot(ctx context.Context, spec SectionSpec, canonicalKey string, newDoc Document, backedUpAt string, result *WriteResult) {
	oldRaw, oldDoc, err := s.readDocument(ctx, canonicalKey)
	if err != nil {
		if !errors.Is(err, ErrObjectNotFound) {
			s.warn(result, "snapshot skipped, prior document unreadable", "key", canonicalKey, "err", err)
		}
		return
	}

	decision := decideSnapshot(oldDoc, newDoc, spec.MarkerPath)
	if !decision.Snapshot {
		return
	}

	backupKey := BackupKey(canonicalKey, spec.TransitionLabel)
	if err := s.store.Put(ctx, backupKey, bytes.NewReader(oldRaw), jsonContentType); err != nil {
		s.warn(result, "backup write failed", "key", backupKey, "err", err)
		return
	}
	result.BackupCreated = true

	meta := BackupMeta{
		BackedUpAt:    backedUpAt,
		FromUpdatedAt: coerceString(oldDoc["updatedAt"], ""),
		FromMarker:    decision.FromMarker,
		ToMarker:      decision.ToMarker,
	}
	if err := s.putJSON(ctx, BackupMetaKey(backupKey), meta); err != nil {
		s.warn(result, "backup meta write failed", "key", BackupMetaKey(backupKey), "err", err)
	}
}

func (s *service) GetDocument(ctx context.Context, section string, season *int) (Document, error) {
	key := CanonicalKey(s.sectionSpec(section), season)
	_, doc, err := s.readDocument(ctx, key)
	return doc, err
}

func (s *service) TouchManifest(ctx context.Context, section string, season *int) error {
	manifest := Manifest{
		Section:   section,
		Season:    season,
		UpdatedAt: isoTime(s.now().UTC()),
	}
	key := ManifestKey(section, season)
	if err := s.putJSON(ctx, key, manifest); err != nil {
		return &StorageError{Key: key, Op: "put", Err: err}
	}
	return nil
}

func (s *service) ReadManifest(ctx context.Context, section string, season *int) *Manifest {
	fallback := &Manifest{Section: section, Season: season, UpdatedAt: "0"}

	body, _, err := s.store.Get(ctx, ManifestKey(section, season))
	if err != nil {
		return fallback
	}
	defer body.Close()

	var manifest Manifest
	if err := json.NewDecoder(body).Decode(&manifest); err != nil {
		slog.Warn("manifest unreadable, serving fallback", "section", section, "err", err)
		return fallback
	}
	if manifest.UpdatedAt == "" {
		return fallback
	}
	return &manifest
}

func (s *service) GetBackup(ctx context.Context, section string, season *int) (Document, *BackupMeta, error) {
	backupKey, err := s.backupKey(section, season)
	if err != nil {
		return nil, nil, err
	}

	_, doc, err := s.readDocument(ctx, backupKey)
	if errors.Is(err, ErrObjectNotFound) {
		return nil, nil, ErrBackupNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	return doc, s.readBackupMeta(ctx, backupKey), nil
}

func (s *service) RestoreBackup(ctx context.Context, section string, season *int) (*RestoreResult, error) {
	backupKey, err := s.backupKey(section, season)
	if err != nil {
		return nil, err
	}

	raw, doc, err := s.readDocument(ctx, backupKey)
	if errors.Is(err, ErrObjectNotFound) {
		return nil, ErrBackupNotFound
	}
	if err != nil {
		return nil, err
	}

	// The backup is copied back verbatim, stale updatedAt included; the
	// manifest touch below is what busts public caches.
	canonicalKey := CanonicalKey(s.sectionSpec(section), season)
	if err := s.store.Put(ctx, canonicalKey, bytes.NewReader(raw), jsonContentType); err != nil {
		return nil, &StorageError{Key: canonicalKey, Op: "put", Err: err}
	}

	result := &RestoreResult{
		Document:   doc,
		Meta:       s.readBackupMeta(ctx, backupKey),
		RestoredAt: isoTime(s.now().UTC()),
	}
	if err := s.TouchManifest(ctx, section, season); err != nil {
		result.Warnings = append(result.Warnings, "manifest touch failed")
		slog.Warn("manifest touch failed after restore", "section", section, "err", err)
	}
	return result, nil
}

func (s *service) backupKey(section string, season *int) (string, error) {
	spec := s.sectionSpec(section)
	if spec.MarkerPath == "" {
		return "", ErrNotTrackerSection
	}
	return BackupKey(CanonicalKey(spec, season), spec.TransitionLabel), nil
}

func (s *service) readBackupMeta(ctx context.Context, backupKey string) *BackupMeta {
	body, _, err := s.store.Get(ctx, BackupMetaKey(backupKey))
	if err != nil {
		return nil
	}
	defer body.Close()

	var meta BackupMeta
	if err := json.NewDecoder(body).Decode(&meta); err != nil {
		return nil
	}
	return &meta
}

// readDocument fetches and decodes a stored JSON document, returning the raw
// bytes alongside so callers can re-store them verbatim.
func (s *service) readDocument(ctx context.Context, key string) ([]byte, Document, error) {
	body, _, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, nil, ErrObjectNotFound
		}
		return nil, nil, &StorageError{Key: key, Op: "get", Err: err}
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, nil, &StorageError{Key: key, Op: "get", Err: err}
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, &StorageError{Key: key, Op: "decode", Err: err}
	}
	return raw, doc, nil
}

func (s *service) putJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.store.Put(ctx, key, bytes.NewReader(raw), jsonContentType)
}

func (s *service) warn(result *WriteResult, msg string, args ...any) {
	slog.Warn(msg, args...)
	result.Warnings = append(result.Warnings, msg)
}
