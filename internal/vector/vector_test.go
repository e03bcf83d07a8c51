package vector

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func testChunks() []*models.DocumentChunk {
	return []*models.DocumentChunk{
		{ID: "doc1_0", DocumentID: "doc1", Content: "alpha", ChunkIndex: 0, Embedding: []float32{1, 0, 0}},
		{ID: "doc1_1", DocumentID: "doc1", Content: "beta", ChunkIndex: 1, Embedding: []float32{0, 1, 0}},
		{ID: "doc2_0", DocumentID: "doc2", Content: "gamma", ChunkIndex: 0, Embedding: []float32{0, 0, 1}},
	}
}

func TestBuild_DimensionMismatch(t *testing.T) {
	chunks := testChunks()
	chunks[1].Embedding = []float32{0, 1}
	_, err := Build(3, chunks)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSearch_RankedByInnerProduct(t *testing.T) {
	s, err := Build(3, testChunks())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	results, err := s.Search([]float32{0.9, 0.1, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.ID != "doc1_0" {
		t.Errorf("expected doc1_0 first, got %s", results[0].Chunk.ID)
	}
	if results[1].Chunk.ID != "doc1_1" {
		t.Errorf("expected doc1_1 second, got %s", results[1].Chunk.ID)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("scores not descending: %v, %v", results[0].Score, results[1].Score)
	}
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	chunks := []*models.DocumentChunk{
		{ID: "a", Embedding: []float32{1, 0}},
		{ID: "b", Embedding: []float32{1, 0}},
		{ID: "c", Embedding: []float32{1, 0}},
	}
	s, err := Build(2, chunks)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	results, err := s.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for i, want := range []string{"a", "b", "c"} {
		if results[i].Chunk.ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, results[i].Chunk.ID)
		}
	}
}

func TestSearch_ClampsK(t *testing.T) {
	s, err := Build(3, testChunks())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	results, err := s.Search([]float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected all 3 results, got %d", len(results))
	}
}

func TestSearch_EmptySnapshot(t *testing.T) {
	s := Empty(3)
	results, err := s.Search([]float32{1, 0, 0}, 4)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty result, got %d entries", len(results))
	}
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	s := Empty(3)
	if _, err := s.Search([]float32{1, 0}, 4); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s, err := Build(3, testChunks())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "idx", "snapshot")
	if err := s.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded.Size() != s.Size() {
		t.Fatalf("size mismatch: got %d, want %d", loaded.Size(), s.Size())
	}
	if loaded.Dimensions() != 3 {
		t.Errorf("dimensions mismatch: got %d", loaded.Dimensions())
	}
	for i, chunk := range loaded.Chunks() {
		orig := testChunks()[i]
		if chunk.ID != orig.ID || chunk.DocumentID != orig.DocumentID ||
			chunk.Content != orig.Content || chunk.ChunkIndex != orig.ChunkIndex {
			t.Errorf("chunk %d mismatch: got %+v", i, chunk)
		}
	}

	results, err := loaded.Search([]float32{0, 1, 0}, 1)
	if err != nil {
		t.Fatalf("Search after load failed: %v", err)
	}
	if results[0].Chunk.ID != "doc1_1" {
		t.Errorf("expected doc1_1, got %s", results[0].Chunk.ID)
	}
}

func TestLoadSnapshot_MissingFile(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadSnapshot_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Fatal("expected error for corrupt file")
	}
}

func TestSave_NoPartialFile(t *testing.T) {
	s, err := Build(3, testChunks())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot")
	if err := s.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "snapshot" {
		t.Errorf("expected only the snapshot file, got %v", entries)
	}
}
