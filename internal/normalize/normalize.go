// Package normalize canonicalizes text pulled out of rendered markup:
// whitespace cleanup for part content, and UI-noise stripping for
// identity hashing.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Whitespace converts CRLF and lone CR to LF, collapses runs of spaces
// and tabs to a single space, trims leading/trailing whitespace, and
// applies Unicode NFC so visually identical captures compare equal.
// Idempotent.
func Whitespace(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimSpace(b.String())
}

// noisePatterns is the fixed, ordered set of interactive-affordance
// tokens that leak into copied transcript text. The final entry matches
// pagination counters like "2 / 3".
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bcopy(?: code)?\b`),
	regexp.MustCompile(`(?i)\bcopied!?\b`),
	regexp.MustCompile(`(?i)\bregenerate(?: response)?\b`),
	regexp.MustCompile(`(?i)\bedit(?: message)?\b`),
	regexp.MustCompile(`(?i)\bthumbs? (?:up|down)\b`),
	regexp.MustCompile(`(?i)\bshare\b`),
	regexp.MustCompile(`(?i)\bcontinue(?: generating)?\b`),
	regexp.MustCompile(`\b\d+\s*/\s*\d+\b`),
}

// StripUINoise removes known interactive-affordance tokens and
// pagination counters, then tidies the leftover gaps so stripped and
// never-present noise hash identically. Applied only when preparing
// text for identity hashing, never to user-visible part content.
func StripUINoise(s string) string {
	for _, p := range noisePatterns {
		s = p.ReplaceAllString(s, "")
	}
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(collapseSpaces(line))
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}
