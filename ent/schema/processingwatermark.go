package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// ProcessingWatermark holds the schema definition for the mandatory
// one-row-per-stream analysis high-water mark. A global watermark is a
// design bug (see SPEC_FULL.md §9); this schema enforces per-stream
// uniqueness via the "stream_id" primary key itself.
type ProcessingWatermark struct {
	ent.Schema
}

// Fields of the ProcessingWatermark.
func (ProcessingWatermark) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("stream_id").
			Unique().
			Immutable(),
		field.Time("watermark_time"),
		field.String("last_processed_batch").
			Optional().
			Nillable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}
