package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ImportWatermark holds the schema definition for the per-(stream,resource)
// high-water mark recording what a Stream Adapter has already fetched.
type ImportWatermark struct {
	ent.Schema
}

// Fields of the ImportWatermark.
func (ImportWatermark) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id").
			Unique().
			Immutable(),
		field.String("stream_id").
			Immutable(),
		field.String("resource_id").
			Optional().
			Immutable().
			Comment("filename, channel/topic, or chat id depending on adapter kind"),
		field.Time("last_imported_time"),
		field.String("last_imported_id").
			Optional().
			Nillable().
			Comment("Breaks ties at equal timestamps; provider-specific monotonic id, row hash, or row index"),
		field.Bool("import_complete").
			Default(false),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

// Indexes of the ImportWatermark.
func (ImportWatermark) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("stream_id", "resource_id").
			Unique(),
	}
}
