// Package artifact defines build artifacts and the publisher that uploads
// them as named collections.
package artifact

import "fmt"

// Artifact is a named, architecture- and profile-tagged output of a
// successful build. Immutable once produced.
type Artifact struct {
	// Name of the binary (e.g. "ducksync").
	Name string
	// Triple the binary was compiled for.
	Triple string
	// Profile the binary was compiled with ("debug" or "release").
	Profile string
	// Path to the binary on the build host.
	Path string
}

// FileName returns the artifact's name within a collection. Collections mix
// triples, so the triple is part of the name.
func (a Artifact) FileName() string {
	return fmt.Sprintf("%s-%s", a.Name, a.Triple)
}
