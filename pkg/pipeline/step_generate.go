package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lionscraft/docpythia/pkg/batch"
	"github.com/lionscraft/docpythia/pkg/config"
	"github.com/lionscraft/docpythia/pkg/llmgateway"
	"github.com/lionscraft/docpythia/pkg/ruleset"
)

// stepGenerate makes one STRONG-tier call per conversation that survived
// classification and RAG retrieval, producing candidate proposals. The
// tenant ruleset's PROMPT_CONTEXT section, if any, is appended verbatim
// to the system prompt.
func stepGenerate(ctx context.Context, o *Orchestrator, st *State) error {
	conv := st.Input.Conversations
	byID := make(map[string]int, len(conv))
	for i, c := range conv {
		byID[c.ID] = i
	}

	for convID, classified := range st.ValuableByConversation {
		idx, ok := byID[convID]
		if !ok {
			continue
		}
		conversation := conv[idx]

		systemPrompt := generateSystemPrompt(st)
		userPrompt := generateUserPrompt(st, conversation, classified, o.replyDepth())

		result, err := o.gateway.Call(ctx, llmgateway.CallRequest{
			Purpose:        llmgateway.PurposeChangeGen,
			Tier:           config.ModelTierStrong,
			SystemPrompt:   systemPrompt,
			UserPrompt:     userPrompt,
			ResponseSchema: []byte(generateSchema),
			MessageID:      convID,
		})
		if err != nil {
			return fmt.Errorf("pipeline: generate call failed for conversation %s: %w", convID, err)
		}

		var resp generateResponse
		if err := json.Unmarshal(result.ParsedJSON, &resp); err != nil {
			return fmt.Errorf("pipeline: failed to parse generate response for conversation %s: %w", convID, err)
		}

		ids := make([]int, len(classified))
		for i, c := range classified {
			ids[i] = c.Message.ID
		}

		for _, item := range resp.Proposals {
			st.Drafts = append(st.Drafts, &proposalDraft{
				ConversationID: convID,
				MessageIDs:     ids,
				Proposal: draftFromItem(item),
			})
		}
	}

	return nil
}

func generateSystemPrompt(st *State) string {
	var sb strings.Builder
	sb.WriteString("You draft documentation changes from a chat conversation that a classifier has already judged worth documenting. Only propose changes that are directly supported by the conversation. Respond with a list of proposals, each targeting one page.")
	if st.TenantCfg.DocPurpose != "" {
		fmt.Fprintf(&sb, " Documentation purpose: %s.", st.TenantCfg.DocPurpose)
	}
	if st.TenantCfg.TargetAudience != "" {
		fmt.Fprintf(&sb, " Target audience: %s.", st.TenantCfg.TargetAudience)
	}
	if st.TenantCfg.StyleGuide != "" {
		fmt.Fprintf(&sb, " Style guide: %s.", st.TenantCfg.StyleGuide)
	}
	if st.Ruleset.PromptContext != "" {
		sb.WriteString("\n\n")
		sb.WriteString(st.Ruleset.PromptContext)
	}
	return sb.String()
}

func generateUserPrompt(st *State, conversation batch.Conversation, classified []classifiedMessage, maxReplyDepth int) string {
	var sb strings.Builder
	sb.WriteString("Documentation index:\n")
	sb.WriteString(st.DocIndex.CompactText(docIndexFilter))
	sb.WriteString("\n\nConversation:\n")
	sb.WriteString(formatConversation(conversation, maxReplyDepth))

	if rag, ok := st.RAGByConversation[conversation.ID]; ok && len(rag.Docs) > 0 {
		sb.WriteString("\n\nRetrieved documentation:\n")
		for _, d := range rag.Docs {
			fmt.Fprintf(&sb, "- %s (score %.2f): %s\n", d.Path, d.Score, d.Snippet)
		}
	}

	sb.WriteString("\n\nClassifier reasoning:\n")
	for _, c := range classified {
		fmt.Fprintf(&sb, "- [id=%d] %s: %s\n", c.Message.ID, c.Classification.Category, c.Classification.DocValueReason)
	}

	return sb.String()
}

func draftFromItem(item generateItem) ruleset.Proposal {
	return ruleset.Proposal{
		Page:          item.Page,
		UpdateType:    item.UpdateType,
		Section:       item.Section,
		Location:      item.Location,
		SuggestedText: item.SuggestedText,
		Reasoning:     item.Reasoning,
		Confidence:    item.Confidence,
	}
}
