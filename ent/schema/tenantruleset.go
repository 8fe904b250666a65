package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// TenantRuleset holds the schema definition for a tenant's markdown
// ruleset document, parsed into its four fixed sections by pkg/ruleset
// (PROMPT_CONTEXT, REVIEW_MODIFICATIONS, REJECTION_RULES, QUALITY_GATES).
type TenantRuleset struct {
	ent.Schema
}

// Fields of the TenantRuleset.
func (TenantRuleset) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id").
			Unique().
			Immutable(),
		field.String("tenant_id").
			Unique(),
		field.Text("document").
			Comment("Raw markdown; empty document is a valid no-op ruleset"),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

// Indexes of the TenantRuleset.
func (TenantRuleset) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("tenant_id").
			Unique(),
	}
}
