// Package vectorstore implements the Embedding + Vector Store (C3): text
// embedding via the LLM Gateway and nearest-neighbour search over
// documentation chunks and messages, backed by Qdrant.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/lionscraft/docpythia/pkg/config"
)

// Embedder is the subset of the LLM Gateway the vector store depends on.
// Embed calls go through the gateway so they share its provider client,
// transport, and retry semantics rather than duplicating them here.
type Embedder interface {
	Embed(ctx context.Context, model, text string) ([]float32, error)
}

// Point is one upserted vector, keyed by the logical (tenant_id, source, key) triple.
type Point struct {
	TenantID string
	Source   string
	Key      string
	Vector   []float32
	Metadata map[string]any
}

// Result is one nearest-neighbour hit.
type Result struct {
	TenantID string
	Source   string
	Key      string
	Score    float64
	Metadata map[string]any
}

// Store wraps a Qdrant collection per tenant.
type Store struct {
	client         *qdrant.Client
	embedder       Embedder
	embeddingModel string
	vectorSize     uint64
	collectionBase string
}

// New connects to Qdrant and returns a Store. Collections are created
// lazily per tenant on first use, not eagerly here.
func New(cfg config.VectorStoreConfig, embedder Embedder, embeddingModel, apiKey string) (*Store, error) {
	clientParams := &qdrant.Config{
		Host: cfg.Host,
		Port: cfg.Port,
	}
	if apiKey != "" {
		clientParams.APIKey = apiKey
	}
	clientParams.UseTLS = cfg.UseTLS

	client, err := qdrant.NewClient(clientParams)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: failed to connect to qdrant: %w", err)
	}

	return &Store{
		client:         client,
		embedder:       embedder,
		embeddingModel: embeddingModel,
		vectorSize:     uint64(cfg.VectorSize),
		collectionBase: cfg.CollectionName,
	}, nil
}

func (s *Store) collectionName(tenantID string) string {
	return fmt.Sprintf("%s_%s", s.collectionBase, tenantID)
}

// ensureCollection creates the tenant's collection if it does not exist,
// using Qdrant's native HNSW index with cosine distance — the index type
// named as acceptable for the ≥10k-vectors/<50ms latency requirement.
func (s *Store) ensureCollection(ctx context.Context, tenantID string) error {
	name := s.collectionName(tenantID)

	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("vectorstore: failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("vectorstore: failed to create collection %s: %w", name, err)
	}
	return nil
}

// Embed delegates to the LLM Gateway's embedding tier, per the contract
// that embedding calls are cached and retried identically to any other
// LLM call rather than hitting the provider a second, uncached way.
func (s *Store) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.embedder.Embed(ctx, s.embeddingModel, text)
}

// Upsert writes or replaces points, deriving each point's Qdrant ID
// deterministically from (tenant_id, source, key) so a re-upsert of the
// same logical key overwrites rather than duplicates.
func (s *Store) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	tenantID := points[0].TenantID
	if err := s.ensureCollection(ctx, tenantID); err != nil {
		return err
	}

	wait := true
	upsert := &qdrant.UpsertPoints{
		CollectionName: s.collectionName(tenantID),
		Wait:           &wait,
	}

	for _, p := range points {
		payload, err := qdrant.TryValueMap(mergeMetadata(p))
		if err != nil {
			return fmt.Errorf("vectorstore: failed to convert metadata: %w", err)
		}
		upsert.Points = append(upsert.Points, &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID(p.Source, p.Key)),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: payload,
		})
	}

	if _, err := s.client.Upsert(ctx, upsert); err != nil {
		return fmt.Errorf("vectorstore: failed to upsert %d points: %w", len(upsert.Points), err)
	}
	return nil
}

// Search returns the top-k nearest neighbours to vec, optionally filtered
// by source, scored by cosine similarity.
func (s *Store) Search(ctx context.Context, tenantID string, vec []float32, topK int, source string) ([]Result, error) {
	if err := s.ensureCollection(ctx, tenantID); err != nil {
		return nil, err
	}

	limit := uint64(topK)
	query := &qdrant.QueryPoints{
		CollectionName: s.collectionName(tenantID),
		Query:          qdrant.NewQuery(vec...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if source != "" {
		query.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatchKeyword("source", source),
			},
		}
	}

	scored, err := s.client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: query failed: %w", err)
	}

	results := make([]Result, 0, len(scored))
	for _, pt := range scored {
		payload := convertPayload(pt.GetPayload())
		results = append(results, Result{
			TenantID: tenantID,
			Source:   stringField(payload, "source"),
			Key:      stringField(payload, "key"),
			Score:    float64(pt.GetScore()),
			Metadata: payload,
		})
	}
	return results, nil
}

// Delete removes a point by its logical key.
func (s *Store) Delete(ctx context.Context, tenantID, source, key string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatchKeyword("source", source),
			qdrant.NewMatchKeyword("key", key),
		},
	}
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collectionName(tenantID),
		Points:         qdrant.NewPointsSelectorFilter(filter),
	})
	if err != nil {
		return fmt.Errorf("vectorstore: failed to delete point %s/%s: %w", source, key, err)
	}
	return nil
}

// Close closes the underlying Qdrant connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func mergeMetadata(p Point) map[string]any {
	m := make(map[string]any, len(p.Metadata)+2)
	for k, v := range p.Metadata {
		m[k] = v
	}
	m["source"] = p.Source
	m["key"] = p.Key
	return m
}

func pointID(source, key string) string {
	return fmt.Sprintf("%s:%s", source, key)
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func convertPayload(payload map[string]*qdrant.Value) map[string]any {
	if payload == nil {
		return nil
	}
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		result[k] = convertValue(v)
	}
	return result
}

func convertValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch kind := v.Kind.(type) {
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	default:
		return nil
	}
}
