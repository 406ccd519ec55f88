package sitecontent_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridironhq/site-content/pkg/sitecontent"
	"github.com/gridironhq/site-content/pkg/sitecontent/audit"
	memorystorage "github.com/gridironhq/site-content/pkg/sitecontent/storage/memory"
)

func TestServiceCreation(t *testing.T) {
	t.Run("no options should fail", func(t *testing.T) {
		svc, err := sitecontent.New()
		assert.Error(t, err)
		assert.Nil(t, svc)
	})

	t.Run("with object store should succeed", func(t *testing.T) {
		svc, err := sitecontent.New(sitecontent.WithObjectStore(memorystorage.New()))
		assert.NoError(t, err)
		assert.NotNil(t, svc)
	})
}

// steppingClock advances a quarter second per reading so consecutive writes
// always carry distinct timestamps.
func steppingClock() func() time.Time {
	base := time.Date(2025, time.September, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	return func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * 250 * time.Millisecond)
	}
}

func setupTestService(t *testing.T) (sitecontent.Service, *memorystorage.Store, *audit.MemoryRepository) {
	t.Helper()

	store := memorystorage.New()
	auditRepo := audit.NewMemory()

	svc, err := sitecontent.New(
		sitecontent.WithObjectStore(store),
		sitecontent.WithAuditLog(auditRepo),
		sitecontent.WithClock(steppingClock()),
	)
	require.NoError(t, err)

	return svc, store, auditRepo
}

func season(year int) *int { return &year }

func writeTracker(t *testing.T, svc sitecontent.Service, marker string) *sitecontent.WriteResult {
	t.Helper()

	result, err := svc.WriteDocument(context.Background(), sitecontent.WriteDocumentRequest{
		Section: "biggame-wagers",
		Season:  season(2025),
		Payload: map[string]any{
			"season":      float64(2025),
			"eligibility": map[string]any{"computedAt": marker},
		},
		Editor: "commissioner@example.com",
	})
	require.NoError(t, err)
	return result
}

func TestWriteDocumentStoresCanonical(t *testing.T) {
	svc, store, _ := setupTestService(t)
	ctx := context.Background()

	result, err := svc.WriteDocument(ctx, sitecontent.WriteDocumentRequest{
		Section: "redraft",
		Season:  season(2025),
		Payload: map[string]any{"season": float64(2025), "rows": []any{}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.UpdatedAt)
	assert.Greater(t, result.Version, int64(0))
	assert.Equal(t, result.UpdatedAt, result.Document["updatedAt"])

	body, info, err := store.Get(ctx, "data/redraft/leagues_2025.json")
	require.NoError(t, err)
	defer body.Close()

	assert.Equal(t, "application/json", info.ContentType)
	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), result.UpdatedAt)
}

func TestManifestLivenessAndQuiescence(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	// Before any write the fallback manifest is served.
	before := svc.ReadManifest(ctx, "redraft", season(2025))
	assert.Equal(t, "0", before.UpdatedAt)

	first, err := svc.WriteDocument(ctx, sitecontent.WriteDocumentRequest{
		Section: "redraft",
		Season:  season(2025),
		Payload: map[string]any{"season": float64(2025)},
	})
	require.NoError(t, err)
	require.Empty(t, first.Warnings)

	afterFirst := svc.ReadManifest(ctx, "redraft", season(2025))
	assert.GreaterOrEqual(t, afterFirst.UpdatedAt, first.UpdatedAt)
	assert.NotEmpty(t, afterFirst.VersionToken())

	// Quiescence: repeated reads with no writes do not move the pointer.
	for i := 0; i < 3; i++ {
		assert.Equal(t, afterFirst.UpdatedAt, svc.ReadManifest(ctx, "redraft", season(2025)).UpdatedAt)
	}

	_, err = svc.WriteDocument(ctx, sitecontent.WriteDocumentRequest{
		Section: "redraft",
		Season:  season(2025),
		Payload: map[string]any{"season": float64(2025)},
	})
	require.NoError(t, err)

	afterSecond := svc.ReadManifest(ctx, "redraft", season(2025))
	assert.Greater(t, afterSecond.UpdatedAt, afterFirst.UpdatedAt)
}

func TestWriteIsIdempotentModuloTimestamp(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	payload := map[string]any{
		"season": float64(2025),
		"rows":   []any{map[string]any{"name": "League A"}},
	}

	first, err := svc.WriteDocument(ctx, sitecontent.WriteDocumentRequest{
		Section: "redraft", Season: season(2025), Payload: payload,
	})
	require.NoError(t, err)

	second, err := svc.WriteDocument(ctx, sitecontent.WriteDocumentRequest{
		Section: "redraft", Season: season(2025), Payload: payload,
	})
	require.NoError(t, err)

	assert.NotEqual(t, first.UpdatedAt, second.UpdatedAt)

	strip := func(doc sitecontent.Document) sitecontent.Document {
		out := make(sitecontent.Document, len(doc))
		for k, v := range doc {
			if k != "updatedAt" {
				out[k] = v
			}
		}
		return out
	}
	assert.Equal(t, strip(first.Document), strip(second.Document))
}

func TestSnapshotTriggersExactlyOnTransition(t *testing.T) {
	svc, store, _ := setupTestService(t)
	ctx := context.Background()
	backupKey := "data/biggame-wagers/tracker_2025_import_backup.json"

	// First write: no prior document, no backup.
	writeTracker(t, svc, "T1")
	_, err := store.Head(ctx, backupKey)
	assert.ErrorIs(t, err, sitecontent.ErrObjectNotFound)

	// Same marker: still no backup.
	result := writeTracker(t, svc, "T1")
	assert.False(t, result.BackupCreated)
	_, err = store.Head(ctx, backupKey)
	assert.ErrorIs(t, err, sitecontent.ErrObjectNotFound)

	// Pre-transition state, captured for comparison.
	preTransition, err := svc.GetDocument(ctx, "biggame-wagers", season(2025))
	require.NoError(t, err)

	// Marker change: backup holds the pre-write document verbatim.
	result = writeTracker(t, svc, "T2")
	assert.True(t, result.BackupCreated)

	doc, meta, err := svc.GetBackup(ctx, "biggame-wagers", season(2025))
	require.NoError(t, err)
	assert.Equal(t, preTransition, doc)
	require.NotNil(t, meta)
	assert.Equal(t, "T1", meta.FromMarker)
	assert.Equal(t, "T2", meta.ToMarker)
	assert.Equal(t, preTransition["updatedAt"], meta.FromUpdatedAt)
}

func TestBackupDoesNotAccumulate(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	writeTracker(t, svc, "T1")
	writeTracker(t, svc, "T2")
	beforeThird, err := svc.GetDocument(ctx, "biggame-wagers", season(2025))
	require.NoError(t, err)

	writeTracker(t, svc, "T3")

	// One backup, reflecting the state before the most recent transition.
	doc, meta, err := svc.GetBackup(ctx, "biggame-wagers", season(2025))
	require.NoError(t, err)
	assert.Equal(t, beforeThird, doc)
	assert.Equal(t, "T2", meta.FromMarker)
	assert.Equal(t, "T3", meta.ToMarker)
}

func TestValidationFailsBeforeAnyMutation(t *testing.T) {
	svc, store, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.WriteDocument(ctx, sitecontent.WriteDocumentRequest{
		Section: "redraft",
		Season:  season(2025),
		Payload: "hello",
	})

	var validation *sitecontent.ValidationError
	require.ErrorAs(t, err, &validation)

	_, err = store.Head(ctx, "data/redraft/leagues_2025.json")
	assert.ErrorIs(t, err, sitecontent.ErrObjectNotFound)
	assert.Equal(t, "0", svc.ReadManifest(ctx, "redraft", season(2025)).UpdatedAt)
}

// failingPuts rejects writes under a key prefix, simulating a partially
// unavailable backend.
type failingPuts struct {
	sitecontent.ObjectStore
	prefix string
}

func (f *failingPuts) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	if strings.HasPrefix(key, f.prefix) {
		return errors.New("backend down")
	}
	return f.ObjectStore.Put(ctx, key, body, contentType)
}

func TestManifestFailureIsBestEffort(t *testing.T) {
	store := memorystorage.New()
	svc, err := sitecontent.New(
		sitecontent.WithObjectStore(&failingPuts{ObjectStore: store, prefix: "data/manifests/"}),
		sitecontent.WithClock(steppingClock()),
	)
	require.NoError(t, err)

	ctx := context.Background()
	result, err := svc.WriteDocument(ctx, sitecontent.WriteDocumentRequest{
		Section: "redraft",
		Season:  season(2025),
		Payload: map[string]any{"season": float64(2025)},
	})

	// The canonical write succeeded; the stale version token is reported as
	// a warning, not an error.
	require.NoError(t, err)
	assert.NotEmpty(t, result.Warnings)

	_, err = store.Head(ctx, "data/redraft/leagues_2025.json")
	assert.NoError(t, err)
}

func TestBackupFailureDoesNotBlockCommit(t *testing.T) {
	store := memorystorage.New()
	svc, err := sitecontent.New(
		sitecontent.WithObjectStore(&failingPuts{ObjectStore: store, prefix: "data/biggame-wagers/tracker_2025_import"}),
		sitecontent.WithClock(steppingClock()),
	)
	require.NoError(t, err)
	ctx := context.Background()

	writeTracker(t, svc, "T1")
	result := writeTracker(t, svc, "T2")

	assert.False(t, result.BackupCreated)
	assert.NotEmpty(t, result.Warnings)

	doc, err := svc.GetDocument(ctx, "biggame-wagers", season(2025))
	require.NoError(t, err)
	eligibility := doc["eligibility"].(map[string]any)
	assert.Equal(t, "T2", eligibility["computedAt"])
}

func TestRestoreBackup(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	writeTracker(t, svc, "T1")
	writeTracker(t, svc, "T2")

	backupDoc, _, err := svc.GetBackup(ctx, "biggame-wagers", season(2025))
	require.NoError(t, err)
	manifestBefore := svc.ReadManifest(ctx, "biggame-wagers", season(2025))

	result, err := svc.RestoreBackup(ctx, "biggame-wagers", season(2025))
	require.NoError(t, err)

	// Restored verbatim, stale updatedAt included.
	restored, err := svc.GetDocument(ctx, "biggame-wagers", season(2025))
	require.NoError(t, err)
	assert.Equal(t, backupDoc, restored)
	assert.Equal(t, backupDoc, result.Document)

	// The manifest still advances so caches bust.
	manifestAfter := svc.ReadManifest(ctx, "biggame-wagers", season(2025))
	assert.Greater(t, manifestAfter.UpdatedAt, manifestBefore.UpdatedAt)
}

func TestBackupErrors(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	_, _, err := svc.GetBackup(ctx, "redraft", season(2025))
	assert.ErrorIs(t, err, sitecontent.ErrNotTrackerSection)

	_, _, err = svc.GetBackup(ctx, "biggame-wagers", season(2025))
	assert.ErrorIs(t, err, sitecontent.ErrBackupNotFound)

	_, err = svc.RestoreBackup(ctx, "biggame-wagers", season(2025))
	assert.ErrorIs(t, err, sitecontent.ErrBackupNotFound)
}

func TestAuditTrail(t *testing.T) {
	svc, _, auditRepo := setupTestService(t)
	ctx := context.Background()

	writeTracker(t, svc, "T1")
	writeTracker(t, svc, "T2")

	entries, err := auditRepo.ListBySection(ctx, "biggame-wagers", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first; the transition write carries the backup flag.
	assert.True(t, entries[0].BackupCreated)
	assert.False(t, entries[1].BackupCreated)
	assert.Equal(t, "commissioner@example.com", entries[0].Editor)
	assert.Greater(t, entries[0].Version, entries[1].Version)
}

func TestGetDocumentNotFound(t *testing.T) {
	svc, _, _ := setupTestService(t)

	_, err := svc.GetDocument(context.Background(), "redraft", season(2025))
	assert.ErrorIs(t, err, sitecontent.ErrObjectNotFound)
}
