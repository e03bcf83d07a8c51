// Package extract provides text extraction from various document formats.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extractor extracts plain text from document files. One extraction routine
// exists per supported format, selected by file extension.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its text content.
// Returns an error if the file cannot be read or extraction fails.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return e.ExtractBytes(content, ext)
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf").
// For plain text files (.txt, .md, .rst), content is returned as-is (UTF-8 repaired).
// JSON, CSV, and Excel files are treated as FAQ-style sources and flattened
// into question/answer passages. Unknown extensions are treated as plain text.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch ext {
	case ".json":
		return extractJSON(content)
	case ".csv":
		return extractCSV(content)
	case ".xlsx":
		return extractExcel(content)
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".txt", ".md", ".rst", "":
		return extractPlain(content)
	default:
		return extractPlain(content)
	}
}
