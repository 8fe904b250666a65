package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// MessageRagContext holds the schema definition for the retrieved-docs
// context gathered once per conversation during the enrich(RAG) step.
type MessageRagContext struct {
	ent.Schema
}

// Fields of the MessageRagContext.
func (MessageRagContext) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id").
			Unique().
			Immutable(),
		field.String("conversation_id").
			Immutable(),
		field.JSON("retrieved_docs_json", []map[string]interface{}{}).
			Comment("[{path, score, snippet}] from the vector store search"),
		field.Int("total_tokens"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Indexes of the MessageRagContext.
func (MessageRagContext) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("conversation_id").
			Unique(),
	}
}
