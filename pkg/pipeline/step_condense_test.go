package pipeline

import (
	"testing"

	"github.com/lionscraft/docpythia/pkg/ruleset"
	"github.com/stretchr/testify/require"
)

func TestCondenseCollapsesWhitespace(t *testing.T) {
	in := "line one   \nline two\n\n\n\nline three  \n"
	require.Equal(t, "line one\nline two\n\nline three", condense(in))
}

func TestStepCondenseSkipsRejectedAndInvalidDrafts(t *testing.T) {
	rejected := &proposalDraft{Rejected: true, Proposal: ruleset.Proposal{SuggestedText: "a   \nb"}}
	invalid := &proposalDraft{Invalid: true, Proposal: ruleset.Proposal{SuggestedText: "c   \nd"}}
	ok := &proposalDraft{Proposal: ruleset.Proposal{SuggestedText: "e   \nf"}}

	st := &State{Drafts: []*proposalDraft{rejected, invalid, ok}}
	require.NoError(t, stepCondense(nil, nil, st))

	require.Equal(t, "a   \nb", rejected.Proposal.SuggestedText)
	require.Equal(t, "c   \nd", invalid.Proposal.SuggestedText)
	require.Equal(t, "e\nf", ok.Proposal.SuggestedText)
}
