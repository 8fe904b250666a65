package pipeline

import (
	"context"
	"strings"
)

// stepValidate applies structural checks spec.md requires before a
// proposal is allowed to reach a reviewer: the target page exists (or
// is a plausible new page), any location hint resolves to something
// sane, suggested_text is non-empty, and confidence clears both the
// [0, 1] range and the tenant's configured floor.
func stepValidate(_ context.Context, o *Orchestrator, st *State) error {
	pages := make(map[string]bool, len(st.DocIndex.Pages))
	for _, p := range st.DocIndex.Pages {
		pages[p.Path] = true
	}

	for _, d := range st.Drafts {
		if d.Rejected {
			continue
		}

		if reason := validationFailure(d, pages, o.cfg.MinConfidence); reason != "" {
			d.Invalid = true
			d.InvalidReason = reason
		}
	}

	return nil
}

func validationFailure(d *proposalDraft, pages map[string]bool, minConfidence float64) string {
	p := d.Proposal

	if strings.TrimSpace(p.SuggestedText) == "" {
		return "suggested_text is empty"
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return "confidence out of range"
	}
	if p.Confidence < minConfidence {
		return "confidence below tenant floor"
	}
	if !isPlausiblePage(p.Page, pages) {
		return "page does not exist and is not a plausible new page"
	}
	if !locationResolves(p.Location) {
		return "location does not resolve"
	}
	return ""
}

func isPlausiblePage(page string, pages map[string]bool) bool {
	if page == "" {
		return false
	}
	if pages[page] {
		return true
	}
	if strings.Contains(page, "..") || strings.HasPrefix(page, "/") {
		return false
	}
	return strings.HasSuffix(strings.ToLower(page), ".md")
}

func locationResolves(loc map[string]interface{}) bool {
	if loc == nil {
		return true
	}
	if v, ok := loc["line_start"]; ok {
		if n, ok := v.(float64); !ok || n < 0 {
			return false
		}
	}
	if v, ok := loc["line_end"]; ok {
		if n, ok := v.(float64); !ok || n < 0 {
			return false
		}
	}
	return true
}
