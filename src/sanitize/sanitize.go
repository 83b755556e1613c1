// Package sanitize cleans build log output for LLM consumption.
// It removes ANSI escape codes and redacts credentials so that MCP tool responses carry
// plain, safe text.
//
// For TUI rendering, use the tui package which has its own ANSI handling via
// charmbracelet/x/ansi.
package sanitize

import (
	"regexp"
	"strings"
)

// Redacted replaces every credential found in a line.
const Redacted = "[REDACTED]"

var (
	// ANSI escape codes: \x1b[...m (SGR sequences)
	ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

	// OSC sequences terminated by BEL, e.g. CI timestamp markers: \x1b_bk;t=...\x07
	oscPattern = regexp.MustCompile(`\x1b[_\]][^\x07]*\x07`)

	// GitHub tokens: classic (ghp_, gho_, ghu_, ghs_, ghr_) and fine-grained (github_pat_).
	githubTokenPattern = regexp.MustCompile(`\b(gh[pousr]_[A-Za-z0-9]{20,}|github_pat_[A-Za-z0-9_]{20,})\b`)

	// Authorization header values.
	bearerPattern = regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9._~+/=-]+`)
)

// StripANSI removes ANSI escape codes and OSC markers.
func StripANSI(s string) string {
	s = oscPattern.ReplaceAllString(s, "")
	s = ansiPattern.ReplaceAllString(s, "")
	return s
}

// RedactSecrets replaces GitHub tokens, bearer credentials and each non-empty literal
// secret with Redacted.
func RedactSecrets(s string, secrets ...string) string {
	for _, secret := range secrets {
		if secret = strings.TrimSpace(secret); secret != "" {
			s = strings.ReplaceAll(s, secret, Redacted)
		}
	}
	s = githubTokenPattern.ReplaceAllString(s, Redacted)
	s = bearerPattern.ReplaceAllString(s, "${1}"+Redacted)
	return s
}

// Lines strips and redacts every line.
func Lines(lines []string, secrets ...string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = RedactSecrets(StripANSI(line), secrets...)
	}
	return out
}
