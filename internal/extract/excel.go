package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractExcel flattens a workbook of FAQ content into question/answer
// passages, one per pair, prefixed with the sheet name. Two layouts are
// recognized per sheet: a two-column layout with "question" and "answer"
// headers, and a single-column vertical layout where a cell ending in "?"
// starts a question and the following non-empty cells are its answer.
func extractExcel(content []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	var passages []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		if qCol, aCol, ok := findQAColumns(rows[0]); ok {
			for _, row := range rows[1:] {
				q := cellAt(row, qCol)
				if q == "" {
					continue
				}
				passages = append(passages, fmt.Sprintf("Sheet: %s\nQ: %s\nA: %s", sheet, q, cellAt(row, aCol)))
			}
			continue
		}
		for _, qa := range verticalQA(rows) {
			passages = append(passages, fmt.Sprintf("Sheet: %s\nQ: %s\nA: %s", sheet, qa[0], qa[1]))
		}
	}
	return strings.Join(passages, "\n\n"), nil
}

// findQAColumns locates question and answer columns in a header row by
// substring match, case-insensitive.
func findQAColumns(header []string) (qCol, aCol int, ok bool) {
	qCol, aCol = -1, -1
	for i, name := range header {
		lower := strings.ToLower(name)
		if qCol < 0 && strings.Contains(lower, "question") {
			qCol = i
		}
		if aCol < 0 && strings.Contains(lower, "answer") {
			aCol = i
		}
	}
	return qCol, aCol, qCol >= 0 && aCol >= 0
}

// verticalQA walks the first column and pairs each question cell (ending in
// "?") with the non-empty cells that follow it, until the next question.
func verticalQA(rows [][]string) [][2]string {
	var (
		pairs  [][2]string
		q      string
		answer []string
	)
	flush := func() {
		if q != "" && len(answer) > 0 {
			pairs = append(pairs, [2]string{q, strings.Join(answer, "\n")})
		}
	}
	for _, row := range rows {
		cell := cellAt(row, 0)
		if cell == "" {
			continue
		}
		if strings.HasSuffix(cell, "?") {
			flush()
			q, answer = cell, nil
			continue
		}
		answer = append(answer, cell)
	}
	flush()
	return pairs
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
