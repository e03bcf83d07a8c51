// Package answer runs retrieval-augmented question answering: embed the
// question, retrieve the closest chunks from the current index snapshot,
// and generate a grounded answer.
package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/index"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
)

// FallbackText is returned when the embedding or generation backend fails.
// The caller still gets a well-formed answer rather than an error page.
const FallbackText = "I'm sorry, I'm unable to answer right now. " +
	"Please try again shortly or contact customer support."

// Engine answers questions against the current index snapshot.
type Engine struct {
	embedder  embedding.Embedder
	manager   *index.Manager
	generator llm.Generator
	logger    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an answer engine with the given dependencies.
func NewEngine(embedder embedding.Embedder, manager *index.Manager, generator llm.Generator, opts ...Option) *Engine {
	e := &Engine{
		embedder:  embedder,
		manager:   manager,
		generator: generator,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Retrieve embeds the question and returns the top-k chunks from the current
// snapshot. Questions are lowercased to match the sanitized index content.
func (e *Engine) Retrieve(ctx context.Context, question string, k int) ([]*models.RetrievedChunk, error) {
	queryEmbedding, err := e.embedder.Embed(ctx, strings.ToLower(question))
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	results, err := e.manager.Current().Search(queryEmbedding, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return results, nil
}

// Ask answers the question using retrieved context. The request must already
// be validated. On backend failure the error is returned; callers that need
// a graceful degradation use Fallback.
func (e *Engine) Ask(ctx context.Context, req *models.AskRequest) (*models.Answer, error) {
	startTime := time.Now()

	retrieved, err := e.Retrieve(ctx, req.Question, req.TopK)
	if err != nil {
		return nil, err
	}

	prompt := BuildPrompt(req.Question, retrieved)
	text, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	answer := &models.Answer{
		Question:  req.Question,
		Text:      strings.TrimSpace(text),
		Context:   retrieved,
		Model:     e.generator.ModelName(),
		QueryTime: time.Since(startTime).Milliseconds(),
	}
	e.logger.Debug("question answered",
		zap.String("question", req.Question),
		zap.Int("context_chunks", len(retrieved)),
		zap.Int64("query_time_ms", answer.QueryTime))
	return answer, nil
}

// Fallback builds the degraded answer used when Ask fails.
func (e *Engine) Fallback(question string) *models.Answer {
	return &models.Answer{
		Question: question,
		Text:     FallbackText,
		Context:  []*models.RetrievedChunk{},
		Model:    e.generator.ModelName(),
		Fallback: true,
	}
}
