package batch

import (
	"testing"
	"time"

	"github.com/lionscraft/docpythia/ent"
)

func msgWithReply(id int, messageID, replyTo string, ts time.Time) *ent.UnifiedMessage {
	meta := map[string]interface{}{}
	if replyTo != "" {
		meta["reply_to_message_id"] = replyTo
	}
	return &ent.UnifiedMessage{
		ID:           id,
		MessageID:    messageID,
		Timestamp:    ts,
		MetadataJSON: meta,
	}
}

func TestReplyDepthsChain(t *testing.T) {
	base := time.Now()
	conv := Conversation{
		Messages: []*ent.UnifiedMessage{
			msgWithReply(1, "a", "", base),
			msgWithReply(2, "b", "a", base.Add(time.Minute)),
			msgWithReply(3, "c", "b", base.Add(2*time.Minute)),
		},
	}

	depths := ReplyDepths(conv, 5)
	if depths[1] != 0 {
		t.Errorf("root message depth = %d, want 0", depths[1])
	}
	if depths[2] != 1 {
		t.Errorf("reply depth = %d, want 1", depths[2])
	}
	if depths[3] != 2 {
		t.Errorf("nested reply depth = %d, want 2", depths[3])
	}
}

func TestReplyDepthsOutsideBatchRendersFlat(t *testing.T) {
	base := time.Now()
	conv := Conversation{
		Messages: []*ent.UnifiedMessage{
			msgWithReply(1, "a", "not-in-this-conversation", base),
		},
	}

	depths := ReplyDepths(conv, 5)
	if depths[1] != 0 {
		t.Errorf("reply to a message outside the conversation should render flat, got depth %d", depths[1])
	}
}

func TestReplyDepthsCappedAtMax(t *testing.T) {
	base := time.Now()
	var msgs []*ent.UnifiedMessage
	prev := ""
	for i := 0; i < 10; i++ {
		id := string(rune('a' + i))
		msgs = append(msgs, msgWithReply(i, id, prev, base.Add(time.Duration(i)*time.Minute)))
		prev = id
	}
	conv := Conversation{Messages: msgs}

	depths := ReplyDepths(conv, 5)
	if depths[9] != 5 {
		t.Errorf("depth should be capped at maxDepth=5, got %d", depths[9])
	}
}

func TestReplyDepthsCycleSafe(t *testing.T) {
	base := time.Now()
	conv := Conversation{
		Messages: []*ent.UnifiedMessage{
			msgWithReply(1, "a", "b", base),
			msgWithReply(2, "b", "a", base.Add(time.Minute)),
		},
	}

	done := make(chan map[int]int, 1)
	go func() { done <- ReplyDepths(conv, 5) }()

	select {
	case depths := <-done:
		if depths[1] > 5 || depths[2] > 5 {
			t.Errorf("expected bounded depths for a cycle, got %v", depths)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ReplyDepths did not terminate on a reply cycle")
	}
}
