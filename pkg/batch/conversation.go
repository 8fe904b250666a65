package batch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/pkg/config"
)

// Conversation groups messages sharing a (stream_id, channel, topic) key
// that fall within the same time-bucketed run, per spec.md §4.7's
// conversation grouping rules.
type Conversation struct {
	ID       string
	StreamID string
	Channel  string
	Topic    string
	Messages []*ent.UnifiedMessage
}

// groupKey identifies a channel within a stream. Topic is read out of
// metadata_json since only forum-style sources populate it.
type groupKey struct {
	channel string
	topic   string
}

// GroupConversations partitions a batch's messages into conversations:
// same (stream_id, channel, topic), consecutive within
// ConversationTimeWindow of the group's first message, split whenever a
// gap exceeds MinConversationGap, and hard-capped at
// MaxConversationSize.
func GroupConversations(streamID string, msgs []*ent.UnifiedMessage, cfg config.BatchingConfig) []Conversation {
	byKey := make(map[groupKey][]*ent.UnifiedMessage)
	for _, m := range msgs {
		key := groupKey{channel: channelOf(m), topic: topicOf(m)}
		byKey[key] = append(byKey[key], m)
	}

	keys := make([]groupKey, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].channel != keys[j].channel {
			return keys[i].channel < keys[j].channel
		}
		return keys[i].topic < keys[j].topic
	})

	var conversations []Conversation
	for _, key := range keys {
		group := byKey[key]
		sort.Slice(group, func(i, j int) bool {
			return group[i].Timestamp.Before(group[j].Timestamp)
		})
		conversations = append(conversations, splitGroup(streamID, key, group, cfg)...)
	}
	return conversations
}

func splitGroup(streamID string, key groupKey, msgs []*ent.UnifiedMessage, cfg config.BatchingConfig) []Conversation {
	var out []Conversation
	var current []*ent.UnifiedMessage

	flush := func() {
		if len(current) == 0 {
			return
		}
		out = append(out, Conversation{
			ID:       conversationID(streamID, key, current[0]),
			StreamID: streamID,
			Channel:  key.channel,
			Topic:    key.topic,
			Messages: current,
		})
		current = nil
	}

	for _, m := range msgs {
		if len(current) == 0 {
			current = append(current, m)
			continue
		}

		last := current[len(current)-1]
		first := current[0]
		gap := m.Timestamp.Sub(last.Timestamp)
		span := m.Timestamp.Sub(first.Timestamp)

		switch {
		case len(current) >= intOr(cfg.MaxConversationSize, 20):
			flush()
			current = append(current, m)
		case gap > durationOr(cfg.MinConversationGap, 5*time.Minute):
			flush()
			current = append(current, m)
		case span > durationOr(cfg.ConversationTimeWindow, 15*time.Minute):
			flush()
			current = append(current, m)
		default:
			current = append(current, m)
		}
	}
	flush()
	return out
}

func conversationID(streamID string, key groupKey, first *ent.UnifiedMessage) string {
	payload := fmt.Sprintf("%s|%s|%s|%d|%s", streamID, key.channel, key.topic,
		first.Timestamp.Unix(), first.MessageID)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

func channelOf(m *ent.UnifiedMessage) string {
	if m.Channel != nil {
		return *m.Channel
	}
	return ""
}

func replyToOf(m *ent.UnifiedMessage) string {
	if m.MetadataJSON == nil {
		return ""
	}
	if v, ok := m.MetadataJSON["reply_to_message_id"]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func topicOf(m *ent.UnifiedMessage) string {
	if m.MetadataJSON == nil {
		return ""
	}
	if v, ok := m.MetadataJSON["topic"]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func intOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return v
}
