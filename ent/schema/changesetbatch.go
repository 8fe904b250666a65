package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ChangesetBatch holds the schema definition for a group of approved
// DocProposal rows aggregated for a single draft-PR submission.
type ChangesetBatch struct {
	ent.Schema
}

// Fields of the ChangesetBatch.
func (ChangesetBatch) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("tenant_id").
			Immutable(),
		field.JSON("affected_files_json", []string{}).
			Comment("Doc paths touched by the batch's proposals"),
		field.Enum("status").
			Values("pending", "submitted", "failed").
			Default("pending"),
		field.String("pr_url").
			Optional().
			Nillable(),
		field.Text("submission_error").
			Optional().
			Nillable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("submitted_at").
			Optional().
			Nillable(),
	}
}

// Indexes of the ChangesetBatch.
func (ChangesetBatch) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("tenant_id", "status"),
	}
}
