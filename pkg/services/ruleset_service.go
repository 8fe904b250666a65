package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/ent/tenantruleset"
)

// RulesetService manages TenantRuleset rows: each tenant's markdown
// ruleset document consumed by the Ruleset Engine (C9). A missing row
// is a valid, empty, no-op ruleset — callers should not treat
// ErrNotFound as an error condition here.
type RulesetService struct {
	client *ent.Client
}

// NewRulesetService creates a new RulesetService.
func NewRulesetService(client *ent.Client) *RulesetService {
	return &RulesetService{client: client}
}

// Get returns a tenant's ruleset document, or an empty string if the
// tenant has never configured one.
func (s *RulesetService) Get(ctx context.Context, tenantID string) (string, error) {
	row, err := s.client.TenantRuleset.Query().
		Where(tenantruleset.TenantIDEQ(tenantID)).
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get ruleset: %w", err)
	}
	return row.Document, nil
}

// Upsert replaces a tenant's ruleset document.
func (s *RulesetService) Upsert(ctx context.Context, tenantID, document string) error {
	err := s.client.TenantRuleset.Create().
		SetTenantID(tenantID).
		SetDocument(document).
		OnConflictColumns(tenantruleset.FieldTenantID).
		UpdateDocument().
		SetUpdatedAt(time.Now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert ruleset: %w", err)
	}
	return nil
}
