// Package models defines core data structures for documents, questions, and answers.
package models

import "time"

// Document represents an ingested document with metadata.
// Documents are immutable once stored; re-ingesting under the same ID
// replaces the document and its chunks.
type Document struct {
	ID        string                 `json:"id" db:"id"`
	Source    string                 `json:"source" db:"source"`
	Content   string                 `json:"content" db:"content"`
	Metadata  map[string]interface{} `json:"metadata" db:"metadata"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt time.Time              `json:"updated_at" db:"updated_at"`
}

// DocumentChunk is a bounded span of one document's text, the atomic unit of
// retrieval. Chunk IDs are deterministic ("<docID>_<index>") so re-ingesting
// an unchanged document yields the identical chunk set.
type DocumentChunk struct {
	ID         string    `json:"id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	Content    string    `json:"content" db:"content"`
	ChunkIndex int       `json:"chunk_index" db:"chunk_index"`
	Embedding  []float32 `json:"-" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// DocumentInput is the input for ingesting a document.
type DocumentInput struct {
	ID       string                 `json:"id,omitempty"`
	Source   string                 `json:"source,omitempty"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
