package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/ent/docindexcache"
)

// DocIndexService manages the single cached doc-tree index per tenant,
// rebuilt by the Doc-Index Generator (C4) whenever content_hash changes.
type DocIndexService struct {
	client *ent.Client
}

// NewDocIndexService creates a new DocIndexService.
func NewDocIndexService(client *ent.Client) *DocIndexService {
	return &DocIndexService{client: client}
}

// Get returns the cached index for a tenant, or ErrNotFound if the
// index has never been built.
func (s *DocIndexService) Get(ctx context.Context, tenantID string) (*ent.DocIndexCache, error) {
	row, err := s.client.DocIndexCache.Get(ctx, tenantID)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get doc index cache: %w", err)
	}
	return row, nil
}

// Upsert replaces a tenant's cached doc-tree index.
func (s *DocIndexService) Upsert(ctx context.Context, tenantID, contentHash string, index []map[string]interface{}) error {
	err := s.client.DocIndexCache.Create().
		SetID(tenantID).
		SetContentHash(contentHash).
		SetIndexJSON(index).
		OnConflictColumns(docindexcache.FieldID).
		UpdateContentHash().
		UpdateIndexJSON().
		SetBuiltAt(time.Now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert doc index cache: %w", err)
	}
	return nil
}
