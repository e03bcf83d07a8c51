package extract

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExtractPlain(t *testing.T) {
	got, err := extractPlain([]byte("hello world"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello world" {
		t.Errorf("got %q", got)
	}
}

func TestExtractPlain_InvalidUTF8(t *testing.T) {
	got, err := extractPlain([]byte{0x68, 0x69, 0xff, 0xfe})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "hi") {
		t.Errorf("got %q", got)
	}
	if strings.ContainsRune(got, 0xff) {
		t.Error("invalid bytes should be replaced")
	}
}

func TestExtractJSON(t *testing.T) {
	content := []byte(`{
		"categories": [
			{"category": "Cards", "questions": [
				{"question": "How do I block my card?", "answer": "Call the hotline."}
			]},
			{"category": "Online", "questions": [
				{"question": "How do I reset my PIN?", "answer": "Use the app."}
			]}
		]
	}`)
	got, err := extractJSON(content)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Category: Cards") {
		t.Errorf("missing category prefix: %q", got)
	}
	if !strings.Contains(got, "Q: How do I block my card?") || !strings.Contains(got, "A: Call the hotline.") {
		t.Errorf("missing Q/A pair: %q", got)
	}
	if len(strings.Split(got, "\n\n")) != 2 {
		t.Errorf("want 2 passages, got %q", got)
	}
}

func TestExtractJSON_Malformed(t *testing.T) {
	if _, err := extractJSON([]byte("{not json")); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestExtractCSV(t *testing.T) {
	content := []byte("id,text\n1,first passage\n2,\n3,second passage\n")
	got, err := extractCSV(content)
	if err != nil {
		t.Fatal(err)
	}
	want := "first passage\n\nsecond passage"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractCSV_NoTextColumn(t *testing.T) {
	if _, err := extractCSV([]byte("a,b\n1,2\n")); err == nil {
		t.Error("expected error when text column is missing")
	}
}

func writeXLSX(t *testing.T, build func(f *excelize.File)) []byte {
	t.Helper()
	f := excelize.NewFile()
	build(f)
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractExcel_QAColumns(t *testing.T) {
	content := writeXLSX(t, func(f *excelize.File) {
		_ = f.SetSheetRow("Sheet1", "A1", &[]string{"Question", "Answer"})
		_ = f.SetSheetRow("Sheet1", "A2", &[]string{"How do I activate mobile banking?", "Via the app settings menu."})
		_ = f.SetSheetRow("Sheet1", "A3", &[]string{"", "orphan answer"})
	})
	got, err := extractExcel(content)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Q: How do I activate mobile banking?") {
		t.Errorf("missing question: %q", got)
	}
	if !strings.Contains(got, "A: Via the app settings menu.") {
		t.Errorf("missing answer: %q", got)
	}
	if strings.Contains(got, "orphan answer") {
		t.Errorf("row without question should be skipped: %q", got)
	}
}

func TestExtractExcel_VerticalLayout(t *testing.T) {
	content := writeXLSX(t, func(f *excelize.File) {
		_ = f.SetCellValue("Sheet1", "A1", "How do I open an account?")
		_ = f.SetCellValue("Sheet1", "A2", "Visit a branch with your ID.")
		_ = f.SetCellValue("Sheet1", "A3", "Bring proof of address.")
		_ = f.SetCellValue("Sheet1", "A4", "What are the fees?")
		_ = f.SetCellValue("Sheet1", "A5", "None for the basic account.")
	})
	got, err := extractExcel(content)
	if err != nil {
		t.Fatal(err)
	}
	passages := strings.Split(got, "\n\n")
	if len(passages) != 2 {
		t.Fatalf("want 2 passages, got %d: %q", len(passages), got)
	}
	if !strings.Contains(passages[0], "Visit a branch with your ID.\nBring proof of address.") {
		t.Errorf("multi-line answer not joined: %q", passages[0])
	}
}

func TestExtractDOCX(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = w.Write([]byte(`<w:document><w:body><w:p w:rsidR="001"><w:r><w:t>Hello</w:t></w:r><w:r><w:t xml:space="preserve">docx world</w:t></w:r></w:p></w:body></w:document>`))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := extractDOCX(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hello docx world" {
		t.Errorf("got %q", got)
	}
}

func TestExtractDOCX_NotZip(t *testing.T) {
	if _, err := extractDOCX([]byte("plain text")); err == nil {
		t.Error("expected error for non-zip content")
	}
}

func TestExtractor_Extract_Dispatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("file content"), 0600); err != nil {
		t.Fatal(err)
	}
	e := NewExtractor()
	got, err := e.Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "file content" {
		t.Errorf("got %q", got)
	}
	if _, err := e.Extract(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExtractor_UnknownExtension(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("raw"), ".weird")
	if err != nil {
		t.Fatal(err)
	}
	if got != "raw" {
		t.Errorf("unknown extension should fall back to plain text, got %q", got)
	}
}
