package pipeline

import (
	"fmt"
	"strings"

	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/pkg/batch"
)

// formatMessagesWithIDs renders messages as one line each, tagged with
// their internal id so the classify step's response can reference them
// unambiguously.
func formatMessagesWithIDs(msgs []*ent.UnifiedMessage) string {
	var sb strings.Builder
	for _, m := range msgs {
		fmt.Fprintf(&sb, "[id=%d] %s: %s\n", m.ID, m.Author, oneLine(m.Content))
	}
	return sb.String()
}

// formatConversation renders a conversation as an indented transcript,
// using reply-chain depth to approximate thread structure in plain text.
func formatConversation(conv batch.Conversation, maxDepth int) string {
	depths := batch.ReplyDepths(conv, maxDepth)
	var sb strings.Builder
	for _, m := range conv.Messages {
		indent := strings.Repeat("  ", depths[m.ID])
		fmt.Fprintf(&sb, "%s[id=%d] %s: %s\n", indent, m.ID, m.Author, oneLine(m.Content))
	}
	return sb.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
