package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDocumentCRUD(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	doc := &models.Document{
		ID:       "doc1",
		Source:   "/tmp/refunds.md",
		Content:  "refunds take 5 business days",
		Metadata: map[string]interface{}{"source_path": "/tmp/refunds.md"},
	}
	if err := s.CreateDocument(ctx, doc); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	got, err := s.GetDocument(ctx, "doc1")
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if got.Content != doc.Content || got.Source != doc.Source {
		t.Errorf("document mismatch: %+v", got)
	}
	if got.Metadata["source_path"] != "/tmp/refunds.md" {
		t.Errorf("metadata not preserved: %v", got.Metadata)
	}

	doc.Content = "refunds take 7 business days"
	if err := s.UpdateDocument(ctx, doc); err != nil {
		t.Fatalf("UpdateDocument failed: %v", err)
	}
	got, err = s.GetDocument(ctx, "doc1")
	if err != nil {
		t.Fatalf("GetDocument after update failed: %v", err)
	}
	if got.Content != "refunds take 7 business days" {
		t.Errorf("update not applied: %s", got.Content)
	}

	if err := s.DeleteDocument(ctx, "doc1"); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	if _, err := s.GetDocument(ctx, "doc1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	s := newTestStorage(t)
	if _, err := s.GetDocument(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateDocument_NotFound(t *testing.T) {
	s := newTestStorage(t)
	err := s.UpdateDocument(context.Background(), &models.Document{ID: "missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestChunksWithEmbeddings(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if err := s.CreateDocument(ctx, &models.Document{ID: "doc1", Content: "content"}); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	chunks := []*models.DocumentChunk{
		{ID: "doc1_0", DocumentID: "doc1", Content: "first", ChunkIndex: 0, Embedding: []float32{0.1, 0.2, 0.3}},
		{ID: "doc1_1", DocumentID: "doc1", Content: "second", ChunkIndex: 1, Embedding: []float32{0.4, 0.5, 0.6}},
	}
	if err := s.BatchCreateChunks(ctx, chunks); err != nil {
		t.Fatalf("BatchCreateChunks failed: %v", err)
	}

	got, err := s.GetChunksByDocumentID(ctx, "doc1")
	if err != nil {
		t.Fatalf("GetChunksByDocumentID failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(got))
	}
	for i, chunk := range got {
		if chunk.ChunkIndex != i {
			t.Errorf("chunks not ordered: position %d has index %d", i, chunk.ChunkIndex)
		}
		if len(chunk.Embedding) != 3 {
			t.Fatalf("embedding not round-tripped: %v", chunk.Embedding)
		}
	}
	if got[0].Embedding[1] != 0.2 {
		t.Errorf("embedding values changed: %v", got[0].Embedding)
	}
}

func TestReplaceDocument(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if err := s.ReplaceDocument(ctx,
		&models.Document{ID: "doc1", Content: "version one"},
		[]*models.DocumentChunk{
			{ID: "doc1_0", DocumentID: "doc1", Content: "version one", ChunkIndex: 0, Embedding: []float32{0.1}},
			{ID: "doc1_1", DocumentID: "doc1", Content: "continued", ChunkIndex: 1, Embedding: []float32{0.2}},
		},
	); err != nil {
		t.Fatalf("first ReplaceDocument failed: %v", err)
	}

	if err := s.ReplaceDocument(ctx,
		&models.Document{ID: "doc1", Content: "version two"},
		[]*models.DocumentChunk{
			{ID: "doc1_0", DocumentID: "doc1", Content: "version two", ChunkIndex: 0, Embedding: []float32{0.3}},
		},
	); err != nil {
		t.Fatalf("second ReplaceDocument failed: %v", err)
	}

	doc, err := s.GetDocument(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Content != "version two" {
		t.Errorf("document not replaced: %s", doc.Content)
	}
	chunks, err := s.GetChunksByDocumentID(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk after replace, got %d", len(chunks))
	}
	if chunks[0].Content != "version two" {
		t.Errorf("stale chunk survived replace: %s", chunks[0].Content)
	}
	if n, _ := s.CountDocuments(ctx); n != 1 {
		t.Errorf("expected 1 document, got %d", n)
	}
}

func TestListAllChunks_Ordered(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	for _, docID := range []string{"b-doc", "a-doc"} {
		if err := s.CreateDocument(ctx, &models.Document{ID: docID, Content: "x"}); err != nil {
			t.Fatal(err)
		}
		chunks := []*models.DocumentChunk{
			{ID: docID + "_1", DocumentID: docID, Content: "c1", ChunkIndex: 1, Embedding: []float32{1}},
			{ID: docID + "_0", DocumentID: docID, Content: "c0", ChunkIndex: 0, Embedding: []float32{0}},
		}
		if err := s.BatchCreateChunks(ctx, chunks); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListAllChunks(ctx)
	if err != nil {
		t.Fatalf("ListAllChunks failed: %v", err)
	}
	wantIDs := []string{"a-doc_0", "a-doc_1", "b-doc_0", "b-doc_1"}
	if len(all) != len(wantIDs) {
		t.Fatalf("expected %d chunks, got %d", len(wantIDs), len(all))
	}
	for i, want := range wantIDs {
		if all[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, all[i].ID)
		}
	}
}

func TestDeleteDocument_RemovesChunks(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if err := s.CreateDocument(ctx, &models.Document{ID: "doc1", Content: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := s.BatchCreateChunks(ctx, []*models.DocumentChunk{
		{ID: "doc1_0", DocumentID: "doc1", Content: "c", ChunkIndex: 0, Embedding: []float32{1}},
	}); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteDocument(ctx, "doc1"); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}

	n, err := s.CountChunks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected 0 chunks after delete, got %d", n)
	}
}

func TestCounts(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if err := s.CreateDocument(ctx, &models.Document{ID: "doc1", Content: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := s.BatchCreateChunks(ctx, []*models.DocumentChunk{
		{ID: "doc1_0", DocumentID: "doc1", Content: "c", ChunkIndex: 0, Embedding: []float32{1}},
		{ID: "doc1_1", DocumentID: "doc1", Content: "d", ChunkIndex: 1, Embedding: []float32{2}},
	}); err != nil {
		t.Fatal(err)
	}

	docs, err := s.CountDocuments(ctx)
	if err != nil || docs != 1 {
		t.Errorf("CountDocuments: got %d, %v", docs, err)
	}
	chunks, err := s.CountChunks(ctx)
	if err != nil || chunks != 2 {
		t.Errorf("CountChunks: got %d, %v", chunks, err)
	}
}
