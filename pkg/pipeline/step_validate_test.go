package pipeline

import (
	"testing"

	"github.com/lionscraft/docpythia/pkg/ruleset"
	"github.com/stretchr/testify/require"
)

func TestValidationFailureEmptyText(t *testing.T) {
	d := &proposalDraft{Proposal: ruleset.Proposal{Page: "guide.md", Confidence: 0.9}}
	pages := map[string]bool{"guide.md": true}
	require.Equal(t, "suggested_text is empty", validationFailure(d, pages, 0.5))
}

func TestValidationFailureConfidenceOutOfRange(t *testing.T) {
	d := &proposalDraft{Proposal: ruleset.Proposal{Page: "guide.md", SuggestedText: "x", Confidence: 1.5}}
	pages := map[string]bool{"guide.md": true}
	require.Equal(t, "confidence out of range", validationFailure(d, pages, 0.5))
}

func TestValidationFailureBelowFloor(t *testing.T) {
	d := &proposalDraft{Proposal: ruleset.Proposal{Page: "guide.md", SuggestedText: "x", Confidence: 0.4}}
	pages := map[string]bool{"guide.md": true}
	require.Equal(t, "confidence below tenant floor", validationFailure(d, pages, 0.5))
}

func TestValidationFailureImplausiblePage(t *testing.T) {
	d := &proposalDraft{Proposal: ruleset.Proposal{Page: "../../etc/passwd", SuggestedText: "x", Confidence: 0.9}}
	pages := map[string]bool{}
	require.Equal(t, "page does not exist and is not a plausible new page", validationFailure(d, pages, 0.5))
}

func TestValidationFailurePlausibleNewPage(t *testing.T) {
	d := &proposalDraft{Proposal: ruleset.Proposal{Page: "new-guide.md", SuggestedText: "x", Confidence: 0.9}}
	pages := map[string]bool{}
	require.Empty(t, validationFailure(d, pages, 0.5))
}

func TestValidationFailureBadLocation(t *testing.T) {
	d := &proposalDraft{Proposal: ruleset.Proposal{
		Page: "guide.md", SuggestedText: "x", Confidence: 0.9,
		Location: map[string]interface{}{"line_start": -1.0},
	}}
	pages := map[string]bool{"guide.md": true}
	require.Equal(t, "location does not resolve", validationFailure(d, pages, 0.5))
}

func TestStepValidateSkipsRejectedDrafts(t *testing.T) {
	d := &proposalDraft{Rejected: true}
	st := &State{Drafts: []*proposalDraft{d}}
	require.NoError(t, stepValidate(nil, &Orchestrator{}, st))
	require.False(t, d.Invalid)
}
