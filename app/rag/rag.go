package rag

import (
	"context"
	"errors"
)

var ErrNoText = errors.New("document has no extractable text")

type VectorDoc struct {
	ID       string
	Content  string
	Metadata map[string]any
	Vector   []float32
	Score    float32
}

// Source returns the document name the chunk was cut from.
func (d VectorDoc) Source() string {
	s, _ := d.Metadata[metaSource].(string)
	return s
}

type Page struct {
	Number int
	Text   string
}

type InsertResult struct {
	Source  string
	Skipped bool
	Chunks  int
}

type Interface interface {
	InsertDocument(ctx context.Context, path string, skipIfExists bool) (InsertResult, error)
	Search(ctx context.Context, text string, filters map[string]string, k int) ([]VectorDoc, error)
}

type VectorStore interface {
	InitContext(ctx context.Context, vectorSize int) (bool, error)
	UpsertBatch(ctx context.Context, docs []VectorDoc) error
	Query(ctx context.Context, vector []float32, filters map[string]string, k int) ([]VectorDoc, error)
	HasSource(ctx context.Context, source, hash string) (bool, error)
	DeleteSource(ctx context.Context, source string) error
	Close() error
}

const (
	metaText   = "text"
	metaSource = "source"
	metaHash   = "hash"
	metaPage   = "page"
	metaChunk  = "chunk"
)
