package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// PipelineRunLog holds the schema definition for a single recorded step
// of one Pipeline Orchestrator (C8) run. Each named step of a batch run
// (filter, classify, enrich, generate, context-enrich, ruleset-review,
// validate, condense) writes exactly one row.
type PipelineRunLog struct {
	ent.Schema
}

// Fields of the PipelineRunLog.
func (PipelineRunLog) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id").
			Unique().
			Immutable(),
		field.String("run_id").
			Immutable().
			Comment("Groups every step row belonging to one orchestrator run"),
		field.String("tenant_id").
			Immutable(),
		field.String("stream_id").
			Immutable(),
		field.String("step").
			Immutable(),
		field.Enum("status").
			Values("started", "succeeded", "failed"),
		field.Int("input_count").
			Default(0),
		field.Int("output_count").
			Default(0),
		field.Text("error_detail").
			Optional().
			Nillable(),
		field.Time("started_at").
			Immutable(),
		field.Time("finished_at").
			Optional().
			Nillable(),
	}
}

// Indexes of the PipelineRunLog.
func (PipelineRunLog) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("run_id"),
		index.Fields("stream_id", "started_at"),
	}
}
