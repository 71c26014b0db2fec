// Package sanitizer normalizes text extracted from documents and optionally
// redacts secrets and personal data before it is stored.
package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Sanitizer cleans extracted document text.
type Sanitizer struct {
	patterns []*regexp.Regexp
	maxSize  int
	redact   bool
}

var blankRuns = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`)

// Pattern definitions for secrets and personal data found in documents.
var defaultPatterns = []*regexp.Regexp{
	// API keys and tokens
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|secret[_-]?key)\s*[:=]\s*['"]?([a-zA-Z0-9_\-]{16,})['"]?`),
	regexp.MustCompile(`(?i)(bearer\s+)[a-zA-Z0-9_\-\.]{16,}`),
	regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`),
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{36}`),

	// Passwords
	regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*['"]?([^\s'"]{4,})['"]?`),

	// Private keys
	regexp.MustCompile(`-----BEGIN\s+(RSA|DSA|EC|OPENSSH)?\s*PRIVATE KEY-----`),

	// Connection strings with credentials
	regexp.MustCompile(`(?i)(mongodb|mysql|postgres|postgresql|redis):\/\/[^@\s]+@[^\s]+`),

	// Payment card numbers
	regexp.MustCompile(`\b(?:\d{4}[ -]?){3}\d{4}\b`),

	// Email addresses (PII)
	regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
}

// New creates a Sanitizer that truncates to maxSize bytes. Redaction of
// sensitive values is applied only when redact is true.
func New(maxSize int, redact bool) *Sanitizer {
	return &Sanitizer{
		patterns: defaultPatterns,
		maxSize:  maxSize,
		redact:   redact,
	}
}

// NewWithPatterns creates a redacting Sanitizer with custom patterns.
func NewWithPatterns(maxSize int, patterns []*regexp.Regexp) *Sanitizer {
	return &Sanitizer{
		patterns: patterns,
		maxSize:  maxSize,
		redact:   true,
	}
}

// Sanitize normalizes the text, masks sensitive values when enabled and
// enforces the size limit.
func (s *Sanitizer) Sanitize(text string) string {
	out, _ := s.SanitizeWithStats(text)
	return out
}

// normalize unifies line endings, drops control characters and collapses
// long runs of blank lines.
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = strings.Map(func(r rune) rune {
		if r == utf8.RuneError {
			return -1
		}
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, text)

	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// truncate cuts text to at most maxSize bytes without splitting a rune.
func truncate(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}
	cut := maxSize
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// maskSecrets replaces sensitive patterns with masked versions.
func (s *Sanitizer) maskSecrets(text string) (string, int) {
	found := 0
	for _, pattern := range s.patterns {
		text = pattern.ReplaceAllStringFunc(text, func(match string) string {
			found++
			return maskValue(match)
		})
	}
	return text, found
}

// maskValue creates a masked version of a matched secret.
func maskValue(match string) string {
	if len(match) <= 8 {
		return "[REDACTED]"
	}

	// Keep the key name for key=value pairs.
	if idx := strings.IndexAny(match, ":="); idx != -1 {
		return match[:idx+1] + "[REDACTED]"
	}

	return "[REDACTED]"
}

// IsEmpty checks if the text is empty or whitespace only.
func (s *Sanitizer) IsEmpty(text string) bool {
	return strings.TrimSpace(text) == ""
}

// IsTooLarge checks if the text exceeds the maximum size.
func (s *Sanitizer) IsTooLarge(text string) bool {
	return len(text) > s.maxSize
}

// SanitizationStats describes what a sanitization pass changed.
type SanitizationStats struct {
	OriginalSize  int
	SanitizedSize int
	Truncated     bool
	SecretsFound  int
}

// SanitizeWithStats performs sanitization and returns statistics.
func (s *Sanitizer) SanitizeWithStats(text string) (string, SanitizationStats) {
	stats := SanitizationStats{OriginalSize: len(text)}

	out := normalize(text)
	if s.redact {
		out, stats.SecretsFound = s.maskSecrets(out)
	}

	if s.IsTooLarge(out) {
		out = truncate(out, s.maxSize)
		stats.Truncated = true
	}

	stats.SanitizedSize = len(out)
	return out, stats
}
