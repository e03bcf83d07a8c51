// Package embedding provides text embedding via an HTTP backend, with caching.
package embedding

import (
	"context"
	"errors"
)

// Input validation errors. The caller decides whether to truncate, skip, or
// surface them.
var (
	ErrEmptyInput   = errors.New("embedding: input text is empty")
	ErrInputTooLong = errors.New("embedding: input text exceeds backend maximum")
)

// Embedder produces fixed-dimension vector embeddings for text.
// EmbedBatch must preserve input order in its output.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
