package api

import (
	"time"

	"github.com/lionscraft/docpythia/ent"
)

const timeLayout = time.RFC3339

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func strPtr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toProposalView(p *ent.DocProposal) proposalView {
	return proposalView{
		ID:                  p.ID,
		TenantID:            p.TenantID,
		ConversationID:      p.ConversationID,
		MessageIDs:          p.MessageIdsJSON,
		Page:                p.Page,
		UpdateType:          string(p.UpdateType),
		Section:             strPtr(p.Section),
		Location:            p.LocationJSON,
		SuggestedText:       p.SuggestedText,
		EditedText:          strPtr(p.EditedText),
		Reasoning:           p.Reasoning,
		Confidence:          p.Confidence,
		Status:              string(p.Status),
		DiscardReason:       strPtr(p.DiscardReason),
		Enrichment:          p.EnrichmentJSON,
		QualityFlags:        p.QualityFlagsJSON,
		BatchID:             strPtr(p.BatchID),
		PRApplicationStatus: strPtr(p.PrApplicationStatus),
		CreatedAt:           formatTime(p.CreatedAt),
		ReviewedAt:          formatTimePtr(p.ReviewedAt),
		ReviewedBy:          strPtr(p.ReviewedBy),
	}
}

func toBatchView(b *ent.ChangesetBatch) batchView {
	return batchView{
		ID:              b.ID,
		TenantID:        b.TenantID,
		Status:          string(b.Status),
		AffectedFiles:   b.AffectedFilesJSON,
		PRURL:           strPtr(b.PrURL),
		SubmissionError: strPtr(b.SubmissionError),
		CreatedAt:       formatTime(b.CreatedAt),
		SubmittedAt:     formatTimePtr(b.SubmittedAt),
	}
}

func toCacheEntryView(e *ent.LLMCacheEntry) cacheEntryView {
	return cacheEntryView{
		PromptHash:       e.ID,
		ModelTier:        e.ModelTier,
		Prompt:           e.Prompt,
		Response:         e.Response,
		PromptTokens:     e.PromptTokens,
		CompletionTokens: e.CompletionTokens,
		CreatedAt:        formatTime(e.CreatedAt),
		LastHitAt:        formatTime(e.LastHitAt),
	}
}
