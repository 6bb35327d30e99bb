package dispatcher

import (
	"path"
	"strings"
)

// excluded reports whether a changed file matches one of the configured
// exclusion globs. Patterns match against the base name ("*.lock") or, when
// they contain a slash, against the full repository-relative path.
func excluded(patterns []string, file string) bool {
	for _, pattern := range patterns {
		var ok bool
		var err error
		if strings.Contains(pattern, "/") {
			ok, err = path.Match(pattern, file)
		} else {
			ok, err = path.Match(pattern, path.Base(file))
		}
		if err != nil {
			// A malformed pattern excludes nothing.
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

// filterFiles returns the files that survive the exclusion globs.
func filterFiles(patterns []string, files []string) []string {
	var kept []string
	for _, f := range files {
		if !excluded(patterns, f) {
			kept = append(kept, f)
		}
	}
	return kept
}
