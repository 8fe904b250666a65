package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/ent/messageclassification"
	"github.com/lionscraft/docpythia/pkg/config"
	"github.com/lionscraft/docpythia/pkg/llmgateway"
	"github.com/lionscraft/docpythia/pkg/services"
)

// stepClassify makes a single FAST-tier call over the whole batch,
// classifying every filtered message's documentation value. Context
// messages are included in the prompt for continuity but are never
// reclassified — they already carry a classification from the run that
// first processed them.
func stepClassify(ctx context.Context, o *Orchestrator, st *State) error {
	if len(st.ToClassify) == 0 {
		return nil
	}

	systemPrompt := "You triage chat messages for a documentation team. For each numbered message, decide whether it carries information worth reflecting in the documentation, and if so, what kind. Use the compact doc index to judge whether a page already covers the topic."
	userPrompt := fmt.Sprintf(
		"Documentation index:\n%s\n\nRecent context (already processed, for continuity only):\n%s\n\nMessages to classify:\n%s",
		st.DocIndex.CompactText(docIndexFilter),
		formatMessagesWithIDs(st.Input.ContextMessages),
		formatMessagesWithIDs(st.ToClassify),
	)

	result, err := o.gateway.Call(ctx, llmgateway.CallRequest{
		Purpose:        llmgateway.PurposeAnalysis,
		Tier:           config.ModelTierFast,
		SystemPrompt:   systemPrompt,
		UserPrompt:     userPrompt,
		ResponseSchema: []byte(classifySchema),
		MessageID:      st.RunID,
	})
	if err != nil {
		return fmt.Errorf("pipeline: classify call failed: %w", err)
	}

	var resp classifyResponse
	if err := json.Unmarshal(result.ParsedJSON, &resp); err != nil {
		return fmt.Errorf("pipeline: failed to parse classify response: %w", err)
	}

	byID := make(map[int]bool, len(st.ToClassify))
	for _, m := range st.ToClassify {
		byID[m.ID] = true
	}

	valuable := make(map[messageclassification.Category]bool, len(services.DocValueCategories))
	for _, c := range services.DocValueCategories {
		valuable[c] = true
	}

	for _, item := range resp.Classifications {
		msg := findMessage(st.ToClassify, item.MessageID)
		if msg == nil {
			o.logger.Warn("classify response referenced unknown message id", "message_id", item.MessageID)
			continue
		}

		category := messageclassification.Category(item.Category)
		cm := classifiedMessage{
			Message: msg,
			Classification: services.NewClassification{
				MessageID:         msg.ID,
				BatchID:           st.RunID,
				Category:          category,
				DocValueReason:    item.DocValueReason,
				SuggestedDocPage:  item.SuggestedDocPage,
				RAGSearchCriteria: item.RAGSearchCriteria,
				ModelUsed:         string(config.ModelTierFast),
			},
		}
		st.Classified = append(st.Classified, cm)

		if valuable[category] {
			convID := st.conversationOf(msg.ID)
			if convID != "" {
				st.ValuableByConversation[convID] = append(st.ValuableByConversation[convID], cm)
			}
		}
	}

	return nil
}

func findMessage(msgs []*ent.UnifiedMessage, id int) *ent.UnifiedMessage {
	for _, m := range msgs {
		if m.ID == id {
			return m
		}
	}
	return nil
}
