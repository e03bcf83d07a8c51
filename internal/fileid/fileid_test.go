package fileid

import (
	"strings"
	"testing"
)

func TestFileDocID_Stable(t *testing.T) {
	a := FileDocID("/data/docs/faq.txt")
	b := FileDocID("/data/docs/faq.txt")
	if a != b {
		t.Errorf("same path should yield same ID: %s != %s", a, b)
	}
	c := FileDocID("/data/docs/other.txt")
	if a == c {
		t.Error("different paths should yield different IDs")
	}
	if !strings.HasPrefix(a, "file:") {
		t.Errorf("ID should have file: prefix, got %s", a)
	}
}

func TestFileDocID_Normalized(t *testing.T) {
	a := FileDocID("/data/docs/faq.txt")
	b := FileDocID("/data/docs/../docs/faq.txt")
	if a != b {
		t.Errorf("equivalent paths should yield same ID: %s != %s", a, b)
	}
}
