// Package ruleset implements the Ruleset Engine (C9): parsing a tenant's
// markdown ruleset document into its four named sections and applying
// them to a generated proposal, in the order modifications, then
// rejection, then quality gates.
package ruleset

import (
	"bufio"
	"strings"
)

// section names a case-insensitive top-level heading in a ruleset
// document. Unrecognized headings are ignored rather than rejected, so
// operators can annotate their ruleset freely.
type section int

const (
	sectionNone section = iota
	sectionPromptContext
	sectionReviewModifications
	sectionRejectionRules
	sectionQualityGates
)

// Ruleset is a tenant's parsed ruleset document. A zero-value Ruleset
// (every field empty) is a valid, fully no-op ruleset.
type Ruleset struct {
	PromptContext       string
	ReviewModifications string
	RejectionRules      string
	QualityGates        string
}

// Empty reports whether every section of the ruleset is blank, the
// signal the Pipeline Orchestrator (C8) uses to skip the ruleset-review
// step's LLM calls entirely.
func (r Ruleset) Empty() bool {
	return strings.TrimSpace(r.PromptContext) == "" &&
		strings.TrimSpace(r.ReviewModifications) == "" &&
		strings.TrimSpace(r.RejectionRules) == "" &&
		strings.TrimSpace(r.QualityGates) == ""
}

// Parse scans a ruleset markdown document as a small state machine over
// H1/H2 headings, collecting the body text under each recognized
// section name. A missing section is left blank, which Engine treats as
// a no-op for that phase.
func Parse(document string) Ruleset {
	var r Ruleset
	current := sectionNone
	var buf strings.Builder

	flush := func() {
		text := strings.TrimSpace(buf.String())
		switch current {
		case sectionPromptContext:
			r.PromptContext = text
		case sectionReviewModifications:
			r.ReviewModifications = text
		case sectionRejectionRules:
			r.RejectionRules = text
		case sectionQualityGates:
			r.QualityGates = text
		}
		buf.Reset()
	}

	scanner := bufio.NewScanner(strings.NewReader(document))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if heading, ok := headingText(trimmed); ok {
			if next := matchSection(heading); next != sectionNone {
				flush()
				current = next
				continue
			}
			// Unrecognized heading: treat as sub-heading content of the
			// current section rather than starting a new one.
		}

		if current != sectionNone {
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}
	flush()

	return r
}

// headingText returns the text of a Markdown H1 or H2 line.
func headingText(line string) (string, bool) {
	for _, prefix := range []string{"## ", "# "} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line[len(prefix):]), true
		}
	}
	return "", false
}

func matchSection(heading string) section {
	switch strings.ToUpper(strings.TrimSpace(heading)) {
	case "PROMPT_CONTEXT":
		return sectionPromptContext
	case "REVIEW_MODIFICATIONS":
		return sectionReviewModifications
	case "REJECTION_RULES":
		return sectionRejectionRules
	case "QUALITY_GATES":
		return sectionQualityGates
	default:
		return sectionNone
	}
}
