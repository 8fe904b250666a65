package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LLMCacheEntry holds the schema definition for a cached LLM response,
// keyed by the SHA-256 hash of model + purpose + canonical prompt (system
// prompt, user prompt, history, response-schema hash). See pkg/llmgateway
// for the hashing.
type LLMCacheEntry struct {
	ent.Schema
}

// Fields of the LLMCacheEntry.
func (LLMCacheEntry) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("prompt_hash").
			Unique().
			Immutable().
			Comment("hex-encoded SHA-256 of the canonical prompt"),
		field.String("model_tier").
			Immutable(),
		field.String("message_id").
			Optional().
			Nillable().
			Immutable().
			Comment("originating UnifiedMessage or conversation id, for the cache search endpoint's group-by-message view"),
		field.Text("prompt").
			Immutable().
			Comment("canonical prompt text, stored so /llm-cache?query= can text-match it"),
		field.Text("response").
			Immutable(),
		field.Int("prompt_tokens").
			Immutable(),
		field.Int("completion_tokens").
			Immutable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("last_hit_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

// Indexes of the LLMCacheEntry.
func (LLMCacheEntry) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("model_tier"),
		index.Fields("message_id"),
	}
}
