package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func sampleAnswer() *models.Answer {
	return &models.Answer{
		Question: "how long do refunds take?",
		Text:     "Refunds take five business days.",
		Model:    "llama3.2",
		Context: []*models.RetrievedChunk{
			{
				Chunk: &models.DocumentChunk{ID: "refunds_0", DocumentID: "refunds", Content: "refunds are processed within five business days"},
				Score: 0.91,
			},
		},
		QueryTime: 42,
	}
}

func TestWriteAnswer_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, sampleAnswer(), OutputText); err != nil {
		t.Fatalf("WriteAnswer failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Refunds take five business days.") {
		t.Errorf("answer text missing: %s", out)
	}
	if !strings.Contains(out, "llama3.2") {
		t.Errorf("model missing: %s", out)
	}
	if !strings.Contains(out, "refunds") {
		t.Errorf("context document missing: %s", out)
	}
}

func TestWriteAnswer_Fallback(t *testing.T) {
	ans := sampleAnswer()
	ans.Fallback = true
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, ans, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "degraded answer") {
		t.Errorf("fallback note missing: %s", buf.String())
	}
}

func TestWriteAnswer_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, sampleAnswer(), OutputJSON); err != nil {
		t.Fatal(err)
	}
	var ans models.Answer
	if err := json.Unmarshal(buf.Bytes(), &ans); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if ans.Text != "Refunds take five business days." {
		t.Errorf("round-trip text: %q", ans.Text)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("json"); err != nil || f != OutputJSON {
		t.Errorf("ParseFormat(json) = %v, %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != OutputText {
		t.Errorf("ParseFormat(\"\") = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello world", 5); got != "hello..." {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("hi", 5); got != "hi" {
		t.Errorf("Truncate = %q", got)
	}
}

func TestTruncateWords(t *testing.T) {
	if got := TruncateWords("a b c d", 2); got != "a b..." {
		t.Errorf("TruncateWords = %q", got)
	}
	if got := TruncateWords("a b", 5); got != "a b" {
		t.Errorf("TruncateWords = %q", got)
	}
}
