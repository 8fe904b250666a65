package batch

import (
	"testing"
	"time"

	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/pkg/config"
)

func strPtr(s string) *string { return &s }

func msg(id int, messageID, channel string, ts time.Time, metadata map[string]interface{}) *ent.UnifiedMessage {
	return &ent.UnifiedMessage{
		ID:           id,
		MessageID:    messageID,
		Channel:      strPtr(channel),
		Timestamp:    ts,
		MetadataJSON: metadata,
	}
}

func TestGroupConversationsSplitsOnGap(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	msgs := []*ent.UnifiedMessage{
		msg(1, "m1", "general", base, nil),
		msg(2, "m2", "general", base.Add(time.Minute), nil),
		msg(3, "m3", "general", base.Add(20*time.Minute), nil),
	}

	convs := GroupConversations("stream-1", msgs, config.BatchingConfig{})
	if len(convs) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(convs))
	}
	if len(convs[0].Messages) != 2 {
		t.Errorf("expected first conversation to hold 2 messages, got %d", len(convs[0].Messages))
	}
	if len(convs[1].Messages) != 1 {
		t.Errorf("expected second conversation to hold 1 message, got %d", len(convs[1].Messages))
	}
}

func TestGroupConversationsSplitsOnMaxSize(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cfg := config.BatchingConfig{MaxConversationSize: 2}

	var msgs []*ent.UnifiedMessage
	for i := 0; i < 5; i++ {
		msgs = append(msgs, msg(i, "m"+string(rune('a'+i)), "general", base.Add(time.Duration(i)*time.Second), nil))
	}

	convs := GroupConversations("stream-1", msgs, cfg)
	if len(convs) != 3 {
		t.Fatalf("expected 3 conversations (2+2+1), got %d", len(convs))
	}
}

func TestGroupConversationsSeparatesChannelsAndTopics(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	msgs := []*ent.UnifiedMessage{
		msg(1, "m1", "general", base, map[string]interface{}{"topic": "infra"}),
		msg(2, "m2", "general", base.Add(time.Minute), map[string]interface{}{"topic": "billing"}),
		msg(3, "m3", "random", base.Add(2*time.Minute), nil),
	}

	convs := GroupConversations("stream-1", msgs, config.BatchingConfig{})
	if len(convs) != 3 {
		t.Fatalf("expected 3 conversations (distinct channel/topic keys), got %d", len(convs))
	}
}

func TestConversationIDDeterministic(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	first := msg(1, "m1", "general", base, nil)
	key := groupKey{channel: "general", topic: ""}

	id1 := conversationID("stream-1", key, first)
	id2 := conversationID("stream-1", key, first)
	if id1 != id2 {
		t.Errorf("expected deterministic conversation id, got %q and %q", id1, id2)
	}

	otherStream := conversationID("stream-2", key, first)
	if otherStream == id1 {
		t.Errorf("expected different stream to produce a different conversation id")
	}
}

func TestIntOrAndDurationOrFallback(t *testing.T) {
	if got := intOr(0, 20); got != 20 {
		t.Errorf("intOr(0, 20) = %d, want 20", got)
	}
	if got := intOr(5, 20); got != 5 {
		t.Errorf("intOr(5, 20) = %d, want 5", got)
	}
	if got := durationOr(0, 5*time.Minute); got != 5*time.Minute {
		t.Errorf("durationOr(0, 5m) = %v, want 5m", got)
	}
	if got := durationOr(time.Minute, 5*time.Minute); got != time.Minute {
		t.Errorf("durationOr(1m, 5m) = %v, want 1m", got)
	}
}
