package rag

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

const (
	defaultQdrantHost = "localhost"
	defaultQdrantPort = 6334
)

// QdrantStore keeps chunk vectors in a Qdrant collection named after the knowledge table.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
}

func NewQdrantStore(host string, port int, collection string) (*QdrantStore, error) {
	if host == "" {
		host = defaultQdrantHost
	}
	if port == 0 {
		port = defaultQdrantPort
	}
	client, err := qdrant.NewClient(&qdrant.Config{Host: host, Port: port})
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant at %s:%d: %w", host, port, err)
	}
	return &QdrantStore{client: client, collection: collection}, nil
}

// InitContext creates the collection on first use and reports whether it was already there.
func (s *QdrantStore) InitContext(ctx context.Context, vectorSize int) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil || exists {
		return exists, err
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(vectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return false, fmt.Errorf("create collection %s: %w", s.collection, err)
	}

	// Source lookups run on every document, so both filter keys get a keyword index.
	for _, field := range []string{metaSource, metaHash} {
		if _, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: s.collection,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		}); err != nil {
			return false, fmt.Errorf("index %s.%s: %w", s.collection, field, err)
		}
	}
	return false, nil
}

func (s *QdrantStore) Close() error {
	return s.client.Close()
}

func (s *QdrantStore) UpsertBatch(ctx context.Context, docs []VectorDoc) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(docs))
	for _, d := range docs {
		id := d.ID
		if id == "" {
			id = uuid.NewString()
		}
		payload := map[string]any{metaText: d.Content}
		for k, v := range d.Metadata {
			payload[k] = v
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(id),
			Vectors: qdrant.NewVectors(d.Vector...),
			Payload: qdrant.NewValueMap(payload),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upsert %d chunk(s) into %s: %w", len(points), s.collection, err)
	}
	return nil
}

func (s *QdrantStore) Query(ctx context.Context, vector []float32, filters map[string]string, k int) ([]VectorDoc, error) {
	limit := uint64(k)
	hits, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Filter:         keywordFilter(filters),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.collection, err)
	}

	docs := make([]VectorDoc, 0, len(hits))
	for _, h := range hits {
		d := chunkFromPayload(h.Payload)
		d.ID = h.GetId().GetUuid()
		d.Score = h.Score
		docs = append(docs, d)
	}
	return docs, nil
}

func (s *QdrantStore) HasSource(ctx context.Context, source, hash string) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil || !exists {
		return false, err
	}
	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Filter:         keywordFilter(map[string]string{metaSource: source, metaHash: hash}),
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return false, fmt.Errorf("count chunks of %s: %w", source, err)
	}
	return n > 0, nil
}

func (s *QdrantStore) DeleteSource(ctx context.Context, source string) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil || !exists {
		return err
	}
	_, err = s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelectorFilter(keywordFilter(map[string]string{metaSource: source})),
	})
	if err != nil {
		return fmt.Errorf("delete chunks of %s: %w", source, err)
	}
	return nil
}

func keywordFilter(filters map[string]string) *qdrant.Filter {
	if len(filters) == 0 {
		return nil
	}
	conds := make([]*qdrant.Condition, 0, len(filters))
	for key, value := range filters {
		conds = append(conds, qdrant.NewMatchKeyword(key, value))
	}
	return &qdrant.Filter{Must: conds}
}

// chunkFromPayload reads back the fields written by the knowledge client. Unknown keys are ignored.
func chunkFromPayload(payload map[string]*qdrant.Value) VectorDoc {
	d := VectorDoc{Metadata: make(map[string]any, len(payload))}
	for key, v := range payload {
		switch key {
		case metaText:
			d.Content = v.GetStringValue()
			d.Metadata[key] = d.Content
		case metaSource, metaHash:
			d.Metadata[key] = v.GetStringValue()
		case metaPage, metaChunk:
			d.Metadata[key] = int(v.GetIntegerValue())
		}
	}
	return d
}
