package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// MessageClassification holds the schema definition for the FAST-tier
// classification result of one message within one batch.
type MessageClassification struct {
	ent.Schema
}

// Fields of the MessageClassification.
func (MessageClassification) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id").
			Unique().
			Immutable(),
		field.Int("message_id").
			Immutable(),
		field.String("batch_id").
			Immutable(),
		field.Enum("category").
			Values("information", "troubleshooting", "update", "announcement", "tutorial", "question_with_answer"),
		field.Text("doc_value_reason"),
		field.String("suggested_doc_page").
			Optional().
			Nillable(),
		field.JSON("rag_search_criteria_json", []string{}).
			Comment("3 to 6 search terms used to drive RAG retrieval"),
		field.String("model_used"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Indexes of the MessageClassification.
func (MessageClassification) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("message_id").
			Unique(),
		index.Fields("batch_id"),
	}
}
