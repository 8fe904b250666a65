package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// DocProposal holds the schema definition for a single reviewable
// documentation change surfaced by the pipeline. Once batch_id is set
// the row is frozen: services.ErrFrozen (E_FROZEN) must be
// returned for any further mutation attempt (SPEC_FULL.md §3, invariant c).
type DocProposal struct {
	ent.Schema
}

// Fields of the DocProposal.
func (DocProposal) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id").
			Unique().
			Immutable(),
		field.String("tenant_id").
			Immutable(),
		field.String("conversation_id").
			Immutable(),
		field.JSON("message_ids_json", []int{}).
			Immutable().
			Comment("Source messages this proposal was generated from"),
		field.String("page").
			Comment("Doc path this proposal targets, relative to the doc root"),
		field.Enum("update_type").
			Values("INSERT", "UPDATE", "DELETE", "NONE"),
		field.String("section").
			Optional().
			Nillable(),
		field.JSON("location_json", map[string]interface{}{}).
			Optional().
			Comment("{after_heading?, character_range?, line_start?, line_end?}"),
		field.Text("suggested_text"),
		field.Text("edited_text").
			Optional().
			Nillable(),
		field.Text("reasoning"),
		field.Float("confidence").
			Comment("0.0 to 1.0"),
		field.Enum("status").
			Values("pending", "approved", "ignored").
			Default("pending"),
		field.String("discard_reason").
			Optional().
			Nillable(),
		field.JSON("enrichment_json", map[string]interface{}{}).
			Optional().
			Comment("RAG-derived context attached during the context-enrich step"),
		field.JSON("quality_flags_json", []string{}).
			Optional().
			Comment("Flags raised by the ruleset engine's quality-gates section"),
		field.String("batch_id").
			Optional().
			Nillable().
			Comment("Non-nil once aggregated into a ChangesetBatch; freezes the row"),
		field.String("pr_application_status").
			Optional().
			Nillable(),
		field.Text("pr_application_error").
			Optional().
			Nillable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("reviewed_at").
			Optional().
			Nillable(),
		field.String("reviewed_by").
			Optional().
			Nillable(),
		field.Time("edited_at").
			Optional().
			Nillable(),
		field.String("edited_by").
			Optional().
			Nillable(),
	}
}

// Indexes of the DocProposal.
func (DocProposal) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("tenant_id", "status"),
		index.Fields("conversation_id"),
		index.Fields("batch_id"),
		index.Fields("page"),
	}
}
