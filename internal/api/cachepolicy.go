package api

import (
	"path"
	"strings"
)

// Cache-control policies served by the delivery proxy. The policy is a pure
// function of the key's extension and the request's bust/version parameters,
// never of object content.
const (
	// CacheNoStore is served whenever a cache-defeating parameter (t,
	// nocache) is present.
	CacheNoStore = "no-store"

	// CacheDataRevalidate is served for structured data (json, manifests):
	// brief edge cache with mandatory revalidation, since these documents
	// are expected to change.
	CacheDataRevalidate = "public, s-maxage=60, max-age=0, must-revalidate"

	// CacheImmutable is served for images addressed with a version
	// parameter; the token changes whenever content changes, so the bytes
	// behind a given URL never do.
	CacheImmutable = "public, max-age=31536000, immutable"

	// CacheShortRevalidate is served for unversioned images and everything
	// else (scripts, styles, unknown); content may change without a version
	// bump, e.g. a direct overwrite.
	CacheShortRevalidate = "public, max-age=300, must-revalidate"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".avif": true,
	".svg":  true,
	".ico":  true,
}

// CacheControl computes the proxy's cache-control header for an object key.
func CacheControl(key string, bust, versioned bool) string {
	if bust {
		return CacheNoStore
	}

	ext := strings.ToLower(path.Ext(key))
	switch {
	case ext == ".json" || isManifestKey(key):
		return CacheDataRevalidate
	case imageExtensions[ext] && versioned:
		return CacheImmutable
	default:
		return CacheShortRevalidate
	}
}

func isManifestKey(key string) bool {
	return strings.Contains(key, "manifests/") ||
		strings.HasPrefix(path.Base(key), "manifest")
}
