// Package sitecontent implements the content layer behind a statically
// exported community site: admin-submitted JSON documents are normalized,
// written to an object store at deterministic keys, and made visible to
// public pages through small per-section manifest documents whose updatedAt
// doubles as a cache-busting version token.
//
// The package is storage-agnostic. Backends implementing ObjectStore live
// under storage/ (memory, fs, s3); the HTTP surface (admin endpoints and the
// versioned delivery proxy) lives in internal/api.
package sitecontent
