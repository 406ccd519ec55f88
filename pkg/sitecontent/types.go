package sitecontent

import (
	"net/url"
	"time"
)

// SectionKind selects the normalization variant applied to a section's
// payloads before storage.
type SectionKind string

const (
	// KindLeagues is a league listing document (redraft, dynasty, ...).
	KindLeagues SectionKind = "leagues"

	// KindWagerTracker is a wager tracker document. Tracker sections carry a
	// transition marker and are protected by the snapshot-on-transition guard.
	KindWagerTracker SectionKind = "wager_tracker"

	// KindPageContent is editorial page content (heroes, constitution text).
	KindPageContent SectionKind = "page_content"

	// KindGeneric is an opaque JSON object with no per-field defaults.
	KindGeneric SectionKind = "generic"
)

// Document categories; they select the top-level key prefix.
const (
	CategoryData    = "data"    // structural data documents
	CategoryContent = "content" // editorial content documents
)

// SectionSpec describes one content area of the site: how its payloads are
// normalized and where its documents live in the object store. A section's
// spec must stay stable for the life of the section, since it determines the
// canonical key.
type SectionSpec struct {
	Slug     string
	Kind     SectionKind
	Category string
	Name     string // file stem of the canonical document

	// MarkerPath is a dotted path into the document whose change between
	// writes signals a snapshot-worthy transition. Empty for non-tracker
	// sections.
	MarkerPath string

	// TransitionLabel names the backup key for tracker sections.
	TransitionLabel string
}

// DefaultSections returns the section registry for the site's game modes and
// editorial pages. Callers may extend or replace it via WithSections.
func DefaultSections() map[string]SectionSpec {
	specs := []SectionSpec{
		{Slug: "redraft", Kind: KindLeagues, Category: CategoryData, Name: "leagues"},
		{Slug: "dynasty", Kind: KindLeagues, Category: CategoryData, Name: "leagues"},
		{Slug: "minileagues", Kind: KindLeagues, Category: CategoryData, Name: "leagues"},
		{Slug: "biggame", Kind: KindLeagues, Category: CategoryData, Name: "leagues"},
		{Slug: "gauntlet", Kind: KindLeagues, Category: CategoryData, Name: "leagues"},
		{Slug: "highlander", Kind: KindLeagues, Category: CategoryData, Name: "leagues"},
		{Slug: "biggame-wagers", Kind: KindWagerTracker, Category: CategoryData, Name: "tracker",
			MarkerPath: "eligibility.computedAt", TransitionLabel: "import"},
		{Slug: "gauntlet-wagers", Kind: KindWagerTracker, Category: CategoryData, Name: "tracker",
			MarkerPath: "eligibility.computedAt", TransitionLabel: "import"},
		{Slug: "constitution", Kind: KindPageContent, Category: CategoryContent, Name: "page"},
		{Slug: "draft-compare", Kind: KindPageContent, Category: CategoryContent, Name: "page"},
	}

	m := make(map[string]SectionSpec, len(specs))
	for _, s := range specs {
		m[s.Slug] = s
	}
	return m
}

// GenericSection is the spec used for section slugs absent from the registry.
func GenericSection(slug string) SectionSpec {
	return SectionSpec{Slug: slug, Kind: KindGeneric, Category: CategoryData, Name: slug}
}

// Document is a stored canonical document. Payload shapes are opaque past
// normalization; only updatedAt is owned by this package.
type Document = map[string]any

// Manifest is the per-section version pointer. Its UpdatedAt changes exactly
// when the corresponding canonical document changes.
type Manifest struct {
	Section   string `json:"section"`
	Season    *int   `json:"season"`
	UpdatedAt string `json:"updatedAt"`
}

// VersionToken derives the cache-busting query value public clients append
// to proxy URLs.
func (m *Manifest) VersionToken() string {
	return url.QueryEscape(m.UpdatedAt)
}

// BackupMeta records the transition that produced a backup document.
type BackupMeta struct {
	BackedUpAt    string `json:"backedUpAt"`
	FromUpdatedAt string `json:"fromUpdatedAt"`
	FromMarker    string `json:"fromMarker"`
	ToMarker      string `json:"toMarker"`
}

// WriteDocumentRequest carries one admin write.
type WriteDocumentRequest struct {
	Section string
	Season  *int
	Payload any // untyped JSON as decoded from the request body

	// Editor is the verified email of the admin performing the write. Used
	// only for the audit trail.
	Editor string
}

// WriteResult is returned on a successful write. Warnings report failed
// best-effort side effects (manifest touch, backup, audit); they never imply
// the canonical write failed.
type WriteResult struct {
	Document      Document `json:"document"`
	UpdatedAt     string   `json:"updatedAt"`
	Version       int64    `json:"version"`
	BackupCreated bool     `json:"backupCreated,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}

// RestoreResult reports a backup restore onto the canonical key.
type RestoreResult struct {
	Document   Document    `json:"document"`
	Meta       *BackupMeta `json:"meta,omitempty"`
	RestoredAt string      `json:"restoredAt"`
	Warnings   []string    `json:"warnings,omitempty"`
}

// isoTime formats timestamps the way admin clients expect them everywhere in
// this package: RFC 3339 with millisecond precision, UTC.
func isoTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
