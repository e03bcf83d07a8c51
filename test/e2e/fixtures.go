// Package e2e provides end-to-end tests; this file builds minimal files of supported types.
package e2e

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SupportedFileExtensions lists the extensions used in E2E file-based tests.
// PDF is not generated here (no minimal PDF with extractable text); PDF
// extraction is covered by the extract package tests.
var SupportedFileExtensions = []string{
	".txt", ".md", ".json", ".csv", ".docx", ".xlsx",
}

// MinimalFile returns the bytes of a minimal file of the given extension
// whose extracted text contains the given question and answer.
func MinimalFile(ext, question, answer string) ([]byte, error) {
	switch ext {
	case ".txt", ".md":
		return []byte(question + "\n" + answer), nil
	case ".json":
		return minimalJSON(question, answer), nil
	case ".csv":
		return minimalCSV(question, answer), nil
	case ".docx":
		return minimalDocx(question + " " + answer), nil
	case ".xlsx":
		return minimalXlsx(question, answer)
	default:
		return nil, fmt.Errorf("unsupported fixture extension %q", ext)
	}
}

func minimalJSON(question, answer string) []byte {
	return []byte(fmt.Sprintf(
		`{"categories":[{"category":"General","questions":[{"question":%q,"answer":%q}]}]}`,
		question, answer,
	))
}

func minimalCSV(question, answer string) []byte {
	return []byte("id,text\n1," + fmt.Sprintf("%q", question+" "+answer) + "\n")
}

func minimalDocx(text string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("word/document.xml")
	_, _ = fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`))
	_ = w.Close()
	return buf.Bytes()
}

func minimalXlsx(question, answer string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &[]string{"Question", "Answer"}); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A2", &[]string{question, answer}); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
