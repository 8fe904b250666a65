package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/ent/llmcacheentry"
)

// LLMCacheService manages LLMCacheEntry rows, the persisted side of the
// LLM Gateway's (C2) canonical-prompt cache.
type LLMCacheService struct {
	client *ent.Client
}

// NewLLMCacheService creates a new LLMCacheService.
func NewLLMCacheService(client *ent.Client) *LLMCacheService {
	return &LLMCacheService{client: client}
}

// Get looks up a cached response by its canonical-prompt hash and, on a
// hit, bumps last_hit_at so the entry reads as recently used.
func (s *LLMCacheService) Get(ctx context.Context, promptHash string) (*ent.LLMCacheEntry, error) {
	row, err := s.client.LLMCacheEntry.Get(ctx, promptHash)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}

	_ = s.client.LLMCacheEntry.UpdateOneID(promptHash).
		SetLastHitAt(time.Now()).
		Exec(ctx)

	return row, nil
}

// Put writes a new cache entry. A concurrent writer racing on the same
// hash is harmless: both wrote the same response for the same prompt.
// messageID is optional cache provenance — the UnifiedMessage or
// conversation id a call was made on behalf of — and is blank for calls
// with no single originating message (e.g. a whole-batch classify call).
func (s *LLMCacheService) Put(ctx context.Context, promptHash, modelTier, messageID, prompt, response string, promptTokens, completionTokens int) error {
	create := s.client.LLMCacheEntry.Create().
		SetID(promptHash).
		SetModelTier(modelTier).
		SetPrompt(prompt).
		SetResponse(response).
		SetPromptTokens(promptTokens).
		SetCompletionTokens(completionTokens)
	if messageID != "" {
		create = create.SetMessageID(messageID)
	}

	err := create.
		OnConflictColumns(llmcacheentry.FieldID).
		UpdateLastHitAt().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to put cache entry: %w", err)
	}
	return nil
}

// SearchByText returns every cache entry whose prompt or response
// contains query, grouped by message_id so a caller can show "every
// cached call for this message" rather than a flat result list.
// Entries with no message_id (whole-batch calls) are grouped under the
// empty string key.
func (s *LLMCacheService) SearchByText(ctx context.Context, query string) (map[string][]*ent.LLMCacheEntry, error) {
	rows, err := s.client.LLMCacheEntry.Query().
		Where(llmcacheentry.Or(
			llmcacheentry.PromptContainsFold(query),
			llmcacheentry.ResponseContainsFold(query),
		)).
		Order(ent.Desc(llmcacheentry.FieldLastHitAt)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search cache entries: %w", err)
	}

	grouped := make(map[string][]*ent.LLMCacheEntry)
	for _, row := range rows {
		key := ""
		if row.MessageID != nil {
			key = *row.MessageID
		}
		grouped[key] = append(grouped[key], row)
	}
	return grouped, nil
}
