package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// UnifiedMessage holds the schema definition for a normalised message from
// any stream adapter. Immutable once written except for processing_status,
// failure_count, last_error, and embedding (SPEC_FULL.md §3, invariant a).
type UnifiedMessage struct {
	ent.Schema
}

// Fields of the UnifiedMessage.
func (UnifiedMessage) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id").
			Unique().
			Immutable(),
		field.String("tenant_id").
			Immutable(),
		field.String("stream_id").
			Immutable(),
		field.String("message_id").
			Immutable().
			Comment("Source-native id; unique together with stream_id"),
		field.Time("timestamp").
			Immutable(),
		field.String("author").
			Immutable(),
		field.Text("content").
			Immutable(),
		field.String("channel").
			Optional().
			Nillable().
			Immutable(),
		field.Text("raw_data").
			Immutable().
			Comment("Original source payload, verbatim"),
		field.JSON("metadata_json", map[string]interface{}{}).
			Immutable().
			Comment("chat_id, topic, reply_to_message_id, thread_id, and source-specific extras"),
		field.String("conversation_id").
			Optional().
			Nillable().
			Comment("hash(stream_id, channel, topic?, time_bucket, parent_thread?); set during batching"),
		field.JSON("embedding", []float32{}).
			Optional(),
		field.Enum("processing_status").
			Values("PENDING", "PROCESSING", "COMPLETED", "FAILED").
			Default("PENDING"),
		field.Int("failure_count").
			Default(0),
		field.String("last_error").
			Optional().
			Nillable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Indexes of the UnifiedMessage.
func (UnifiedMessage) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("stream_id", "message_id").
			Unique(),
		index.Fields("stream_id", "timestamp"),
		index.Fields("conversation_id"),
		index.Fields("processing_status"),
	}
}

// Annotations enable the GIN full-text index created in the migration
// hook (pkg/database/migrations.go), mirroring the teacher's approach to
// PostgreSQL-specific indexes that Ent's schema DSL cannot express.
func (UnifiedMessage) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{},
	}
}
