package ruleset

import "testing"

func TestParseExtractsAllFourSections(t *testing.T) {
	doc := `# Ignored intro

## PROMPT_CONTEXT
Write in a formal tone.

## REVIEW_MODIFICATIONS
Never suggest deleting the Quickstart page.

## REJECTION_RULES
Reject anything about internal tooling.

## QUALITY_GATES
Flag any proposal touching the Security page.
`
	rs := Parse(doc)

	if rs.PromptContext != "Write in a formal tone." {
		t.Errorf("PromptContext = %q", rs.PromptContext)
	}
	if rs.ReviewModifications != "Never suggest deleting the Quickstart page." {
		t.Errorf("ReviewModifications = %q", rs.ReviewModifications)
	}
	if rs.RejectionRules != "Reject anything about internal tooling." {
		t.Errorf("RejectionRules = %q", rs.RejectionRules)
	}
	if rs.QualityGates != "Flag any proposal touching the Security page." {
		t.Errorf("QualityGates = %q", rs.QualityGates)
	}
	if rs.Empty() {
		t.Error("expected non-empty ruleset")
	}
}

func TestParseCaseInsensitiveHeadings(t *testing.T) {
	doc := "# prompt_context\nbe terse\n"
	rs := Parse(doc)
	if rs.PromptContext != "be terse" {
		t.Errorf("PromptContext = %q", rs.PromptContext)
	}
}

func TestParseMissingSectionsAreBlank(t *testing.T) {
	rs := Parse("## PROMPT_CONTEXT\nsome context\n")
	if rs.ReviewModifications != "" || rs.RejectionRules != "" || rs.QualityGates != "" {
		t.Error("expected unmentioned sections to stay blank")
	}
}

func TestEmptyRulesetIsNoOp(t *testing.T) {
	rs := Parse("")
	if !rs.Empty() {
		t.Error("expected blank document to parse to an empty ruleset")
	}
}

func TestParseIgnoresUnrecognizedHeadings(t *testing.T) {
	doc := "## Some Other Heading\nnot a rule section\n## QUALITY_GATES\nflag it\n"
	rs := Parse(doc)
	if rs.QualityGates != "flag it" {
		t.Errorf("QualityGates = %q", rs.QualityGates)
	}
}
