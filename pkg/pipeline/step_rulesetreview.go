package pipeline

import (
	"context"
	"fmt"
)

// stepRulesetReview delegates to the Ruleset Engine (C9), applying a
// tenant's ruleset in the fixed order modifications, then rejection,
// then quality gates. Every phase is a no-op when its section is blank,
// so an empty ruleset costs nothing beyond the Parse already done at
// run setup.
func stepRulesetReview(ctx context.Context, o *Orchestrator, st *State) error {
	if st.Ruleset.Empty() {
		return nil
	}

	for _, d := range st.Drafts {
		modified, err := o.rulesetEngine.ReviewModifications(ctx, st.Ruleset, d.Proposal)
		if err != nil {
			return fmt.Errorf("pipeline: ruleset review_modifications failed: %w", err)
		}
		d.Proposal = modified

		reject, reason, err := o.rulesetEngine.CheckRejection(ctx, st.Ruleset, d.Proposal)
		if err != nil {
			return fmt.Errorf("pipeline: ruleset rejection check failed: %w", err)
		}
		if reject {
			d.Rejected = true
			d.RejectReason = reason
			continue
		}

		flags, err := o.rulesetEngine.QualityFlags(ctx, st.Ruleset, d.Proposal)
		if err != nil {
			return fmt.Errorf("pipeline: ruleset quality gates failed: %w", err)
		}
		d.QualityFlags = flags
	}

	return nil
}
