// Package vector provides an immutable in-memory vector index snapshot
// with brute-force inner product search.
package vector

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hyperjump/kotae/internal/models"
)

// ErrDimensionMismatch is returned when a vector's dimensionality does not
// match the snapshot's.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Snapshot is an immutable view of the chunk index. Once built it is never
// mutated; readers may search a snapshot concurrently without locking.
// Updates produce a new snapshot.
type Snapshot struct {
	dimensions int
	chunks     []*models.DocumentChunk
	vectors    [][]float32
}

// Empty returns a snapshot with no entries.
func Empty(dimensions int) *Snapshot {
	return &Snapshot{dimensions: dimensions}
}

// Build constructs a snapshot from chunks. Every chunk must carry an
// embedding of the same dimensionality. Chunk order is preserved and
// determines tie-breaking in Search.
func Build(dimensions int, chunks []*models.DocumentChunk) (*Snapshot, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	s := &Snapshot{
		dimensions: dimensions,
		chunks:     make([]*models.DocumentChunk, 0, len(chunks)),
		vectors:    make([][]float32, 0, len(chunks)),
	}
	for _, chunk := range chunks {
		if len(chunk.Embedding) != dimensions {
			return nil, fmt.Errorf("chunk %s: %w: got %d, expected %d",
				chunk.ID, ErrDimensionMismatch, len(chunk.Embedding), dimensions)
		}
		vec := make([]float32, dimensions)
		copy(vec, chunk.Embedding)
		s.chunks = append(s.chunks, chunk)
		s.vectors = append(s.vectors, vec)
	}
	return s, nil
}

// Search returns up to k chunks ranked by inner product with query, highest
// first (cosine similarity for normalized vectors). Ties keep insertion
// order. An empty snapshot returns an empty slice.
func (s *Snapshot) Search(query []float32, k int) ([]*models.RetrievedChunk, error) {
	if len(query) != s.dimensions {
		return nil, fmt.Errorf("query: %w: got %d, expected %d", ErrDimensionMismatch, len(query), s.dimensions)
	}
	if k <= 0 || len(s.chunks) == 0 {
		return []*models.RetrievedChunk{}, nil
	}
	results := make([]*models.RetrievedChunk, len(s.chunks))
	for i, vec := range s.vectors {
		var dot float64
		for j := 0; j < s.dimensions; j++ {
			dot += float64(query[j] * vec[j])
		}
		results[i] = &models.RetrievedChunk{Chunk: s.chunks[i], Score: dot}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Size returns the number of chunks in the snapshot.
func (s *Snapshot) Size() int {
	return len(s.chunks)
}

// Dimensions returns the vector dimensionality of the snapshot.
func (s *Snapshot) Dimensions() int {
	return s.dimensions
}

// Chunks returns the snapshot's chunks in insertion order. Callers must not
// mutate the returned slice.
func (s *Snapshot) Chunks() []*models.DocumentChunk {
	return s.chunks
}
