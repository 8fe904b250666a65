package batch

// ReplyDepths computes, for prompt rendering only, the indentation depth
// of each message in a conversation whose metadata's reply_to_message_id
// refers to another member of the same conversation. Depth is capped at
// maxDepth; messages replying outside the batch (to an id not present in
// the conversation) are rendered flat at depth 0.
func ReplyDepths(conv Conversation, maxDepth int) map[int]int {
	member := make(map[string]bool, len(conv.Messages))
	for _, m := range conv.Messages {
		member[m.MessageID] = true
	}

	replyTo := make(map[string]string, len(conv.Messages))
	for _, m := range conv.Messages {
		if parent := replyToOf(m); parent != "" && member[parent] {
			replyTo[m.MessageID] = parent
		}
	}

	depths := make(map[int]int, len(conv.Messages))
	for _, m := range conv.Messages {
		depths[m.ID] = depthOf(m.MessageID, replyTo, maxDepth, map[string]bool{})
	}
	return depths
}

func depthOf(messageID string, replyTo map[string]string, maxDepth int, visiting map[string]bool) int {
	parent, ok := replyTo[messageID]
	if !ok || visiting[messageID] {
		return 0
	}

	visiting[messageID] = true
	depth := 1 + depthOf(parent, replyTo, maxDepth, visiting)
	if depth > maxDepth {
		depth = maxDepth
	}
	return depth
}
