package rag

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"DocAnalystAI/app/models"
	"DocAnalystAI/app/utils"
)

const (
	defaultChunkSize = 1000
	defaultOverlap   = 150
)

type Extractor func(path string) ([]Page, error)

type Option func(*Client)

func WithChunking(size, overlap int) Option {
	return func(c *Client) {
		if size > 0 && overlap >= 0 && overlap < size {
			c.chunkSize, c.overlap = size, overlap
		}
	}
}

func WithExtractor(extract Extractor) Option {
	return func(c *Client) { c.extract = extract }
}

var _ Interface = &Client{}

// Client is the knowledge store: it turns documents into embedded chunks and answers similarity queries.
type Client struct {
	vectors   VectorStore
	model     models.Interface
	extract   Extractor
	chunkSize int
	overlap   int
	ready     bool
}

func NewClient(model models.Interface, vectors VectorStore, opts ...Option) *Client {
	c := &Client{
		model:     model,
		vectors:   vectors,
		extract:   ExtractPDF,
		chunkSize: defaultChunkSize,
		overlap:   defaultOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Search(ctx context.Context, text string, filters map[string]string, k int) ([]VectorDoc, error) {
	vec, err := c.model.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if err = c.ensureContext(ctx, len(vec)); err != nil {
		return nil, err
	}
	return c.vectors.Query(ctx, vec, filters, k)
}

// InsertDocument indexes one document. With skipIfExists, a document whose name and content hash are
// already stored is left untouched. A changed document replaces its previous chunks.
func (c *Client) InsertDocument(ctx context.Context, path string, skipIfExists bool) (InsertResult, error) {
	source := filepath.Base(path)
	result := InsertResult{Source: source}

	hash, err := utils.HashFile(path)
	if err != nil {
		return result, fmt.Errorf("hash %s: %w", source, err)
	}

	if skipIfExists {
		exists, err := c.vectors.HasSource(ctx, source, hash)
		if err != nil {
			return result, fmt.Errorf("lookup %s: %w", source, err)
		}
		if exists {
			result.Skipped = true
			return result, nil
		}
	}

	pages, err := c.extract(path)
	if err != nil {
		return result, fmt.Errorf("extract %s: %w", source, err)
	}
	if len(pages) == 0 {
		return result, fmt.Errorf("%s: %w", source, ErrNoText)
	}

	var batch []VectorDoc
	for _, page := range pages {
		for i, ch := range ChunkText(page.Text, c.chunkSize, c.overlap) {
			vec, err := c.model.EmbedText(ctx, ch)
			if err != nil {
				return result, fmt.Errorf("embed %s page %d: %w", source, page.Number, err)
			}
			batch = append(batch, VectorDoc{
				ID:      uuid.New().String(),
				Content: ch,
				Metadata: map[string]any{
					metaSource: source,
					metaHash:   hash,
					metaPage:   page.Number,
					metaChunk:  i,
				},
				Vector: vec,
			})
		}
	}
	if len(batch) == 0 {
		return result, fmt.Errorf("%s: %w", source, ErrNoText)
	}

	if err = c.ensureContext(ctx, len(batch[0].Vector)); err != nil {
		return result, err
	}
	if err = c.vectors.DeleteSource(ctx, source); err != nil {
		return result, fmt.Errorf("drop stale chunks of %s: %w", source, err)
	}
	if err = c.vectors.UpsertBatch(ctx, batch); err != nil {
		return result, fmt.Errorf("upsert %s: %w", source, err)
	}

	slog.Debug("📦 Chunks stored", "source", source, "pages", len(pages), "chunks", len(batch))
	result.Chunks = len(batch)
	return result, nil
}

func (c *Client) ensureContext(ctx context.Context, vectorSize int) error {
	if c.ready {
		return nil
	}
	if _, err := c.vectors.InitContext(ctx, vectorSize); err != nil {
		return fmt.Errorf("init vector store: %w", err)
	}
	c.ready = true
	return nil
}

func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	var chunks []string

	for start := 0; start < len(runes); start += size - overlap {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}

	return chunks
}
