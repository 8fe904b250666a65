package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// StreamConfig holds the schema definition for a registered stream adapter.
type StreamConfig struct {
	ent.Schema
}

// Fields of the StreamConfig.
func (StreamConfig) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id").
			Unique().
			Immutable(),
		field.String("tenant_id").
			Immutable(),
		field.String("stream_id").
			Comment("Unique within tenant"),
		field.Enum("adapter_type").
			Values("file_drop", "pollable_chat", "bot_push_chat"),
		field.JSON("config_json", map[string]interface{}{}).
			Comment("Adapter-specific configuration, validated at registration"),
		field.Bool("enabled").
			Default(true),
		field.String("schedule").
			Optional().
			Nillable().
			Comment("Cron expression; nil means manual RunOnce only"),
		field.Int("consecutive_failures").
			Default(0),
		field.String("last_failure_reason").
			Optional().
			Nillable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

// Indexes of the StreamConfig.
func (StreamConfig) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("tenant_id", "stream_id").
			Unique(),
		index.Fields("enabled"),
	}
}
