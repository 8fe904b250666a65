package pipeline

import (
	"context"
	"regexp"
	"strings"
)

var (
	trailingSpacePattern = regexp.MustCompile(`[ \t]+\n`)
	blankRunPattern      = regexp.MustCompile(`\n{3,}`)
)

// stepCondense applies deterministic whitespace normalization to every
// surviving proposal's suggested_text. No ruleset section currently
// requests LLM-driven condensing, so this step never calls the gateway.
func stepCondense(_ context.Context, _ *Orchestrator, st *State) error {
	for _, d := range st.Drafts {
		if d.Rejected || d.Invalid {
			continue
		}
		d.Proposal.SuggestedText = condense(d.Proposal.SuggestedText)
	}
	return nil
}

func condense(text string) string {
	text = trailingSpacePattern.ReplaceAllString(text, "\n")
	text = blankRunPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
