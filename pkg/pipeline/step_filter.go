package pipeline

import (
	"context"
	"strings"

	"github.com/lionscraft/docpythia/ent"
)

// stepFilter drops messages with no content and bot-echoed system
// messages before any LLM call is spent on them. Pure function over
// Input.BatchMessages; nothing here touches the network or database.
func stepFilter(_ context.Context, _ *Orchestrator, st *State) error {
	for _, m := range st.Input.BatchMessages {
		if isFilteredOut(m) {
			st.SkipIDs = append(st.SkipIDs, m.ID)
			continue
		}
		st.ToClassify = append(st.ToClassify, m)
	}
	return nil
}

func isFilteredOut(m *ent.UnifiedMessage) bool {
	if strings.TrimSpace(m.Content) == "" {
		return true
	}
	return isBotEcho(m)
}

// isBotEcho recognizes adapter-supplied bot markers in metadata_json
// rather than guessing from content, since each adapter (Telegram,
// Slack) already knows whether a message came from a bot account.
func isBotEcho(m *ent.UnifiedMessage) bool {
	if m.MetadataJSON == nil {
		return false
	}
	if v, ok := m.MetadataJSON["is_bot"].(bool); ok && v {
		return true
	}
	if v, ok := m.MetadataJSON["bot_id"].(string); ok && v != "" {
		return true
	}
	if v, ok := m.MetadataJSON["subtype"].(string); ok && v == "bot_message" {
		return true
	}
	return false
}
