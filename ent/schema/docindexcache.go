package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// DocIndexCache holds the schema definition for the last built snapshot
// of the documentation tree's heading/section index, refreshed by the
// Doc-Index Generator (C4) whenever the doc root's content hash changes.
type DocIndexCache struct {
	ent.Schema
}

// Fields of the DocIndexCache.
func (DocIndexCache) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("tenant_id").
			Unique().
			Immutable(),
		field.String("content_hash").
			Comment("SHA-256 over the doc tree's file paths and contents; gates rebuilds"),
		field.JSON("index_json", []map[string]interface{}{}).
			Comment("[{path, headings: [...]}] flattened heading index"),
		field.Time("built_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}
