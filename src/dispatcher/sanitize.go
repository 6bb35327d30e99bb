package dispatcher

import "regexp"

var (
	// ANSI escape codes: \x1b[...m (SGR sequences)
	ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

	// Credential-looking tokens that must never reach the review backend:
	// GitHub tokens, bearer headers, and KEY=value pairs for secret-ish names.
	tokenPattern     = regexp.MustCompile(`\b(?:ghp|gho|ghs|ghu|github_pat)_[A-Za-z0-9_]{16,}\b`)
	bearerPattern    = regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/=-]{8,}`)
	secretEnvPattern = regexp.MustCompile(`(?i)\b([A-Z0-9_]*(?:TOKEN|SECRET|PASSWORD|API_KEY))\s*=\s*\S+`)
)

// sanitize strips ANSI escape codes and redacts credential-looking content
// from text bound for the review backend.
func sanitize(s string) string {
	s = ansiPattern.ReplaceAllString(s, "")
	s = tokenPattern.ReplaceAllString(s, "[REDACTED]")
	s = bearerPattern.ReplaceAllString(s, "Bearer [REDACTED]")
	s = secretEnvPattern.ReplaceAllString(s, "$1=[REDACTED]")
	return s
}
