package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Namespace prefixes for the two cache families. A manifest change in one
// namespace never invalidates the other.
const (
	DependencyPrefix = "duckci-deps-"
	BuildPrefix      = "duckci-build-"
)

// DependencyKey derives the dependency-registry cache key from the lockfile
// contents. Identical contents always produce the identical key.
func DependencyKey(lockfile []byte) string {
	return DependencyPrefix + digest(lockfile)
}

// BuildKey derives the compiled-artifact cache key from the build-manifest
// contents.
func BuildKey(manifest []byte) string {
	return BuildPrefix + digest(manifest)
}

func digest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
