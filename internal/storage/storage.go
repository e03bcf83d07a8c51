// Package storage defines the persistence interface for documents and chunks.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/kotae/internal/models"
)

// ErrNotFound is returned when a requested document or chunk does not exist.
var ErrNotFound = errors.New("not found")

// Storage defines document and chunk persistence operations. Chunks are
// stored with their embeddings so an index rebuild never re-embeds.
type Storage interface {
	// Document operations
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	UpdateDocument(ctx context.Context, doc *models.Document) error
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error)

	// ReplaceDocument atomically swaps a document and its chunks: the
	// previous version (if any) is deleted and the new document and chunks
	// are inserted in a single transaction, so a failure leaves the previous
	// version intact.
	ReplaceDocument(ctx context.Context, doc *models.Document, chunks []*models.DocumentChunk) error

	// Chunk operations
	GetChunksByDocumentID(ctx context.Context, docID string) ([]*models.DocumentChunk, error)
	DeleteChunksByDocumentID(ctx context.Context, docID string) error
	BatchCreateChunks(ctx context.Context, chunks []*models.DocumentChunk) error

	// ListAllChunks returns every chunk with its embedding, ordered by
	// document ID then chunk index. The order is the index insertion order.
	ListAllChunks(ctx context.Context) ([]*models.DocumentChunk, error)

	// Stats
	CountDocuments(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)

	Close() error
}
