// Package ingest provides document chunking and the ingestion pipeline.
package ingest

import (
	"fmt"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

// Chunker splits text into overlapping word-based chunks. Chunking is
// deterministic: the same document ID and text always produce the same
// chunk IDs and contents.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in words).
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Chunk splits text into DocumentChunks with overlapping windows. Chunk IDs
// are docID plus the chunk ordinal. A trailing window shorter than the chunk
// size is kept. Empty or whitespace-only text yields nil.
func (c *Chunker) Chunk(docID, text string) []*models.DocumentChunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	chunks := make([]*models.DocumentChunk, 0)
	chunkIndex := 0
	step := c.chunkSize - c.chunkOverlap
	if step <= 0 {
		step = 1
	}
	for i := 0; i < len(words); i += step {
		end := i + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunkText := strings.Join(words[i:end], " ")
		chunk := &models.DocumentChunk{
			ID:         fmt.Sprintf("%s_%d", docID, chunkIndex),
			DocumentID: docID,
			Content:    chunkText,
			ChunkIndex: chunkIndex,
		}
		chunks = append(chunks, chunk)
		chunkIndex++
		if end >= len(words) {
			break
		}
	}
	return chunks
}
