// Package redact normalizes and redacts sensitive content before indexing.
package redact

import (
	"regexp"
	"strings"
)

// Placeholder substituted for redacted spans.
const Placeholder = "[REDACTED]"

// cardOrAccountRe matches 16-digit card numbers (with optional separators)
// and bare 11-14 digit account numbers.
var cardOrAccountRe = regexp.MustCompile(`(?:\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b)|(?:\b\d{11,14}\b)`)

// passwordRe matches lines that appear to disclose a password.
var passwordRe = regexp.MustCompile(`(?i)password\s*[:=]\s*\S+`)

// Sanitize lowercases text and replaces card and account numbers with the
// redaction placeholder. Deterministic: the same input always yields the same
// output, which keeps re-ingestion idempotent.
func Sanitize(text string) string {
	text = strings.ToLower(text)
	return strings.TrimSpace(cardOrAccountRe.ReplaceAllString(text, Placeholder))
}

// EnforcePolicies redacts content that must never reach the index or a
// prompt, currently password disclosures.
func EnforcePolicies(text string) string {
	return passwordRe.ReplaceAllString(text, Placeholder)
}
