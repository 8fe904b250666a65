package ruleset

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/lionscraft/docpythia/pkg/llmgateway"
)

type stubGateway struct {
	response json.RawMessage
	calls    int
}

func (g *stubGateway) Call(_ context.Context, _ llmgateway.CallRequest) (*llmgateway.CallResult, error) {
	g.calls++
	return &llmgateway.CallResult{ParsedJSON: g.response}, nil
}

func TestReviewModificationsNoOpOnBlankSection(t *testing.T) {
	gw := &stubGateway{}
	e := New(gw)

	p := Proposal{Page: "guide.md", UpdateType: "UPDATE", SuggestedText: "original"}
	out, err := e.ReviewModifications(context.Background(), Ruleset{}, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.SuggestedText != p.SuggestedText || out.Page != p.Page || out.UpdateType != p.UpdateType {
		t.Errorf("expected proposal unchanged, got %+v", out)
	}
	if gw.calls != 0 {
		t.Error("expected no gateway call for a blank section")
	}
}

func TestReviewModificationsRewritesProposal(t *testing.T) {
	gw := &stubGateway{response: json.RawMessage(`{
		"page": "guide.md",
		"update_type": "UPDATE",
		"section": "Setup",
		"suggested_text": "rewritten",
		"reasoning": "matched rule",
		"confidence": 0.9
	}`)}
	e := New(gw)

	p := Proposal{Page: "guide.md", UpdateType: "UPDATE", SuggestedText: "original", Location: map[string]interface{}{"line_start": 1}}
	out, err := e.ReviewModifications(context.Background(), Ruleset{ReviewModifications: "rewrite it"}, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.SuggestedText != "rewritten" {
		t.Errorf("SuggestedText = %q", out.SuggestedText)
	}
	if out.Location["line_start"] != 1 {
		t.Errorf("expected location preserved when response omits it, got %+v", out.Location)
	}
}

func TestCheckRejectionNoOpOnBlankSection(t *testing.T) {
	gw := &stubGateway{}
	e := New(gw)

	reject, reason, err := e.CheckRejection(context.Background(), Ruleset{}, Proposal{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reject || reason != "" {
		t.Error("expected no rejection on a blank section")
	}
}

func TestCheckRejectionParsesVerdict(t *testing.T) {
	gw := &stubGateway{response: json.RawMessage(`{"reject": true, "reason": "mentions internal tooling"}`)}
	e := New(gw)

	reject, reason, err := e.CheckRejection(context.Background(), Ruleset{RejectionRules: "no internal tooling"}, Proposal{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reject || reason != "mentions internal tooling" {
		t.Errorf("reject=%v reason=%q", reject, reason)
	}
}

func TestQualityFlagsNoOpOnBlankSection(t *testing.T) {
	gw := &stubGateway{}
	e := New(gw)

	flags, err := e.QualityFlags(context.Background(), Ruleset{}, Proposal{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(flags) != 0 {
		t.Errorf("expected no flags, got %v", flags)
	}
}

func TestQualityFlagsReturnsFlagList(t *testing.T) {
	gw := &stubGateway{response: json.RawMessage(`{"flags": ["touches_security_page"]}`)}
	e := New(gw)

	flags, err := e.QualityFlags(context.Background(), Ruleset{QualityGates: "flag security page edits"}, Proposal{Page: "security.md"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(flags) != 1 || flags[0] != "touches_security_page" {
		t.Errorf("flags = %v", flags)
	}
}
