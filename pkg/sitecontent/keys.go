package sitecontent

import (
	"fmt"
	"strings"
)

// Key scheme. Statically exported pages hard-code these paths, so the
// functions here must stay bit-exact across releases.

// CanonicalKey returns the object key of a section's canonical document:
// <category>/<section>/<name>[_<season>].json.
func CanonicalKey(spec SectionSpec, season *int) string {
	stem := spec.Name
	if season != nil {
		stem = fmt.Sprintf("%s_%d", spec.Name, *season)
	}
	return fmt.Sprintf("%s/%s/%s.json", spec.Category, spec.Slug, stem)
}

// ManifestKey returns the key of a section's manifest document:
// data/manifests/<section>[_<season>].json.
func ManifestKey(section string, season *int) string {
	if season != nil {
		return fmt.Sprintf("data/manifests/%s_%d.json", section, *season)
	}
	return fmt.Sprintf("data/manifests/%s.json", section)
}

// BackupKey derives the backup key from a canonical key by suffixing the
// stem with the transition label: <stem>_<label>_backup.json.
func BackupKey(canonicalKey, label string) string {
	stem := strings.TrimSuffix(canonicalKey, ".json")
	return fmt.Sprintf("%s_%s_backup.json", stem, label)
}

// BackupMetaKey returns the key of the meta sidecar for a backup key.
func BackupMetaKey(backupKey string) string {
	return strings.TrimSuffix(backupKey, ".json") + "_meta.json"
}
