// Package cli provides CLI output formatting for Kotae.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

// OutputFormat is the format for CLI output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat maps a flag value to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch s {
	case "json":
		return OutputJSON, nil
	case "text", "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteAnswer writes an answer to w in the given format.
func WriteAnswer(w io.Writer, ans *models.Answer, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ans)
	}
	writeAnswerText(w, ans)
	return nil
}

func writeAnswerText(w io.Writer, ans *models.Answer) {
	fmt.Fprintf(w, "\n%s\n", ans.Text)
	if ans.Fallback {
		fmt.Fprintln(w, "\n(degraded answer: a backend was unavailable)")
		return
	}
	fmt.Fprintf(w, "\nAnswered by %s in %dms using %d context chunk(s)\n",
		ans.Model, ans.QueryTime, len(ans.Context))
	for i, rc := range ans.Context {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "[%d] Score: %.4f | Document: %s\n", i+1, rc.Score, rc.Chunk.DocumentID)
		fmt.Fprintf(w, "%s\n", Truncate(rc.Chunk.Content, 200))
	}
}

// Truncate truncates s to maxLen and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
