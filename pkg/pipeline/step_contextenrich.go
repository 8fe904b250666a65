package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/lionscraft/docpythia/pkg/batch"
	"github.com/lionscraft/docpythia/pkg/config"
	"github.com/lionscraft/docpythia/pkg/llmgateway"
)

// duplicationThreshold is the cosine similarity above which a proposal
// is flagged as likely duplicating existing page content.
const duplicationThreshold = 0.92

var codeFencePattern = regexp.MustCompile("```")
var listItemPattern = regexp.MustCompile(`(?m)^\s*[-*]\s`)

// stepContextEnrich attaches enrichment_json to every surviving draft:
// related docs, a duplication warning, a style analysis, change-impact
// metrics, and a short FAST-tier summary of the source conversation.
func stepContextEnrich(ctx context.Context, o *Orchestrator, st *State) error {
	pending, err := o.proposals.ListPending(ctx, st.TenantID)
	if err != nil {
		return fmt.Errorf("pipeline: failed to list pending proposals for change-impact: %w", err)
	}
	pendingByPage := make(map[string]int, len(pending))
	for _, p := range pending {
		pendingByPage[p.Page]++
	}

	for _, d := range st.Drafts {
		vec, err := o.vectors.Embed(ctx, d.Proposal.SuggestedText)
		if err != nil {
			return fmt.Errorf("pipeline: failed to embed proposal text: %w", err)
		}

		hits, err := o.vectors.Search(ctx, st.TenantID, vec, 3, "docpage")
		if err != nil {
			return fmt.Errorf("pipeline: related-docs search failed: %w", err)
		}

		relatedDocs := make([]map[string]interface{}, 0, len(hits))
		duplication := false
		var topScore float64
		for i, h := range hits {
			if i == 0 {
				topScore = h.Score
			}
			if h.Score >= duplicationThreshold {
				duplication = true
			}
			path, _ := h.Metadata["path"].(string)
			if path == "" {
				path = h.Key
			}
			relatedDocs = append(relatedDocs, map[string]interface{}{"path": path, "score": h.Score})
		}

		summary, err := o.summarizeConversation(ctx, st, d)
		if err != nil {
			return err
		}

		d.Enrichment = map[string]interface{}{
			"related_docs":        relatedDocs,
			"duplication_warning": duplication,
			"duplication_score":   topScore,
			"style":               styleAnalysis(d.Proposal.SuggestedText),
			"change_impact": map[string]interface{}{
				"suggested_text_length": len(d.Proposal.SuggestedText),
				"other_pending_on_page": pendingByPage[d.Proposal.Page],
			},
			"source_summary": summary,
		}
	}

	return nil
}

func (o *Orchestrator) summarizeConversation(ctx context.Context, st *State, d *proposalDraft) (string, error) {
	conv := findConversation(st.Input.Conversations, d.ConversationID)
	if conv == nil {
		return "", nil
	}

	result, err := o.gateway.Call(ctx, llmgateway.CallRequest{
		Purpose:        llmgateway.PurposeAnalysis,
		Tier:           config.ModelTierFast,
		SystemPrompt:   "Summarize the source conversation behind a proposed documentation change in one or two sentences.",
		UserPrompt:     formatMessagesWithIDs(conv.Messages),
		ResponseSchema: []byte(summarySchema),
		MessageID:      d.ConversationID,
	})
	if err != nil {
		return "", fmt.Errorf("pipeline: conversation summary call failed: %w", err)
	}

	var resp summaryResponse
	if err := json.Unmarshal(result.ParsedJSON, &resp); err != nil {
		return "", fmt.Errorf("pipeline: failed to parse summary response: %w", err)
	}
	return resp.Summary, nil
}

func findConversation(convs []batch.Conversation, id string) *batch.Conversation {
	for i := range convs {
		if convs[i].ID == id {
			return &convs[i]
		}
	}
	return nil
}

// styleAnalysis computes cheap heuristics over suggested_text rather
// than spending an LLM call on style classification.
func styleAnalysis(text string) map[string]interface{} {
	sentences := strings.FieldsFunc(text, func(r rune) bool { return r == '.' || r == '!' || r == '?' })
	wordCount := 0
	for _, s := range sentences {
		wordCount += len(strings.Fields(s))
	}
	avgSentenceLength := 0.0
	if len(sentences) > 0 {
		avgSentenceLength = float64(wordCount) / float64(len(sentences))
	}

	var patterns []string
	if codeFencePattern.MatchString(text) {
		patterns = append(patterns, "code_block")
	}
	if listItemPattern.MatchString(text) {
		patterns = append(patterns, "bulleted_list")
	}

	depth := "general"
	switch {
	case codeFencePattern.MatchString(text):
		depth = "technical"
	case avgSentenceLength > 0 && avgSentenceLength < 12:
		depth = "introductory"
	}

	return map[string]interface{}{
		"avg_sentence_length": avgSentenceLength,
		"format_patterns":     patterns,
		"technical_depth":     depth,
	}
}
