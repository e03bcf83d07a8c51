package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// extractCSV reads a CSV file with a header row and returns the contents of
// the "text" column, one passage per row. Rows with an empty text cell are
// skipped. Returns an error when the header has no text column.
func extractCSV(content []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return "", fmt.Errorf("read CSV header: %w", err)
	}
	textCol := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "text") {
			textCol = i
			break
		}
	}
	if textCol < 0 {
		return "", fmt.Errorf("CSV has no %q column", "text")
	}
	var passages []string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read CSV row: %w", err)
		}
		if textCol >= len(row) {
			continue
		}
		if text := strings.TrimSpace(row[textCol]); text != "" {
			passages = append(passages, text)
		}
	}
	return strings.Join(passages, "\n\n"), nil
}
