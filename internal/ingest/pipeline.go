package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/fileid"
	"github.com/hyperjump/kotae/internal/index"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/redact"
	"github.com/hyperjump/kotae/internal/storage"
)

// Pipeline runs documents through sanitization, chunking, embedding, and
// storage, then triggers an index rebuild so the new content becomes
// queryable.
type Pipeline struct {
	storage   storage.Storage
	embedder  embedding.Embedder
	manager   *index.Manager
	chunker   *Chunker
	extractor *extract.Extractor
	logger    *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithExtractor sets the content extractor used by IngestFile. When unset,
// files are read as plain text.
func WithExtractor(e *extract.Extractor) Option {
	return func(p *Pipeline) { p.extractor = e }
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(
	store storage.Storage,
	embedder embedding.Embedder,
	manager *index.Manager,
	chunkSize, chunkOverlap int,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		storage:  store,
		embedder: embedder,
		manager:  manager,
		chunker:  NewChunker(chunkSize, chunkOverlap),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IngestDocument stores a document and makes it queryable. It returns only
// after the rebuilt index containing the document has been published.
// Re-ingesting an existing ID replaces the previous version.
func (p *Pipeline) IngestDocument(ctx context.Context, input *models.DocumentInput) error {
	if err := p.storeDocument(ctx, input); err != nil {
		return err
	}
	return p.manager.Rebuild(ctx)
}

// storeDocument runs sanitize, chunk, embed, and persist without rebuilding
// the index. Embedding runs before any storage write, and the previous
// version is swapped out in a single transaction, so a failure anywhere
// leaves the previous version intact and searchable.
func (p *Pipeline) storeDocument(ctx context.Context, input *models.DocumentInput) error {
	if input.ID == "" {
		input.ID = uuid.New().String()
	}
	content := redact.EnforcePolicies(redact.Sanitize(Preprocess(input.Content)))
	if content == "" {
		return fmt.Errorf("document %s: no content after sanitization", input.ID)
	}

	doc := &models.Document{
		ID:       input.ID,
		Source:   input.Source,
		Content:  content,
		Metadata: input.Metadata,
	}
	chunks := p.chunker.Chunk(doc.ID, doc.Content)
	if len(chunks) == 0 {
		chunks = []*models.DocumentChunk{{
			ID:         doc.ID + "_0",
			DocumentID: doc.ID,
			Content:    doc.Content,
			ChunkIndex: 0,
		}}
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}
	embeddings, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	if err := p.storage.ReplaceDocument(ctx, doc, chunks); err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}
	p.logger.Debug("document stored",
		zap.String("id", doc.ID), zap.Int("chunks", len(chunks)))
	return nil
}

// IngestInitial ingests a batch of documents with a single rebuild at the
// end. A failing document is logged and skipped; it does not abort the
// batch. Returns the number of documents successfully stored.
func (p *Pipeline) IngestInitial(ctx context.Context, inputs []*models.DocumentInput) (int, error) {
	n := 0
	for _, input := range inputs {
		if err := p.storeDocument(ctx, input); err != nil {
			p.logger.Warn("skipping document",
				zap.String("id", input.ID), zap.Error(err))
			continue
		}
		n++
	}
	if err := p.manager.Rebuild(ctx); err != nil {
		return n, err
	}
	return n, nil
}

const (
	metaKeySourcePath  = "source_path"
	metaKeySourceMtime = "source_mtime"
	metaKeySourceSize  = "source_size"
)

// IngestFile extracts content from the file at path and ingests it. The
// document ID is derived from the absolute path so re-ingesting updates the
// same document. If allowedExts is non-empty, the file's extension must be
// in the list (case-insensitive). A file already ingested with the same
// mtime and size is skipped.
func (p *Pipeline) IngestFile(ctx context.Context, path string, allowedExts []string) error {
	input, err := p.prepareFile(ctx, path, allowedExts)
	if err != nil || input == nil {
		return err
	}
	return p.IngestDocument(ctx, input)
}

// IngestFileAsync is IngestFile with the rebuild deferred to the background
// loop. Used by the directory watcher so bursts of file events coalesce into
// a single rebuild.
func (p *Pipeline) IngestFileAsync(ctx context.Context, path string, allowedExts []string) error {
	input, err := p.prepareFile(ctx, path, allowedExts)
	if err != nil || input == nil {
		return err
	}
	if err := p.storeDocument(ctx, input); err != nil {
		return err
	}
	p.manager.RequestRebuild()
	return nil
}

// prepareFile validates path and builds a DocumentInput from its extracted
// content. Returns (nil, nil) when the file is unchanged since the last
// ingestion.
func (p *Pipeline) prepareFile(ctx context.Context, path string, allowedExts []string) (*models.DocumentInput, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(absPath))
	if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
		return nil, fmt.Errorf("extension %q not in allowed list", ext)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", absPath)
	}
	docID := fileid.FileDocID(absPath)
	if p.fileUnchanged(ctx, absPath, docID, info) {
		p.logger.Debug("skipping unchanged file", zap.String("path", absPath))
		return nil, nil
	}
	text, err := p.extractContent(absPath)
	if err != nil {
		return nil, fmt.Errorf("extract content: %w", err)
	}
	return &models.DocumentInput{
		ID:      docID,
		Source:  absPath,
		Content: text,
		Metadata: map[string]interface{}{
			metaKeySourcePath:  absPath,
			metaKeySourceMtime: strconv.FormatInt(info.ModTime().UnixNano(), 10),
			metaKeySourceSize:  strconv.FormatInt(info.Size(), 10),
		},
	}, nil
}

// fileUnchanged returns true if the file is already ingested with the same
// mtime and size.
func (p *Pipeline) fileUnchanged(ctx context.Context, absPath, docID string, info os.FileInfo) bool {
	doc, err := p.storage.GetDocument(ctx, docID)
	if err != nil || doc.Metadata == nil {
		return false
	}
	if doc.Metadata[metaKeySourcePath] != absPath {
		return false
	}
	// Values are stored as strings to avoid JSON float64 precision loss
	// (UnixNano exceeds 53 bits).
	return metadataInt64(doc.Metadata, metaKeySourceMtime) == info.ModTime().UnixNano() &&
		metadataInt64(doc.Metadata, metaKeySourceSize) == info.Size()
}

func metadataInt64(m map[string]interface{}, key string) int64 {
	v, ok := m[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case string:
		x, _ := strconv.ParseInt(n, 10, 64)
		return x
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// IngestDirectory walks dir recursively and ingests each regular file whose
// extension is in allowedExts (if non-empty; otherwise all files), with a
// single rebuild at the end. A failing file is logged and skipped. Returns
// the number of files stored.
func (p *Pipeline) IngestDirectory(ctx context.Context, dir string, allowedExts []string) (int, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}
	n := 0
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
			return nil
		}
		// Resolve symlinks so we only ingest regular files.
		finfo, statErr := os.Stat(path)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		input, prepErr := p.prepareFile(ctx, path, allowedExts)
		if prepErr != nil {
			p.logger.Warn("skipping file", zap.String("path", path), zap.Error(prepErr))
			return nil
		}
		if input == nil {
			return nil
		}
		if storeErr := p.storeDocument(ctx, input); storeErr != nil {
			p.logger.Warn("skipping file", zap.String("path", path), zap.Error(storeErr))
			return nil
		}
		n++
		return nil
	})
	if err != nil {
		return n, err
	}
	return n, p.manager.Rebuild(ctx)
}

func (p *Pipeline) extractContent(path string) (string, error) {
	if p.extractor != nil {
		return p.extractor.Extract(path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}

// DeleteDocument removes a document and its chunks, then rebuilds the index.
func (p *Pipeline) DeleteDocument(ctx context.Context, id string) error {
	if err := p.storage.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	p.logger.Debug("document deleted", zap.String("id", id))
	return p.manager.Rebuild(ctx)
}

// DeleteFileAsync removes the document derived from path and defers the
// rebuild to the background loop. Used by the directory watcher.
func (p *Pipeline) DeleteFileAsync(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	docID := fileid.FileDocID(absPath)
	if err := p.storage.DeleteDocument(ctx, docID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	p.manager.RequestRebuild()
	return nil
}
