package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/ent/unifiedmessage"
)

// MessageService manages UnifiedMessage rows: the normalized,
// adapter-agnostic record every Stream Adapter writes into before the
// Batch Processor groups them into conversations.
type MessageService struct {
	client *ent.Client
}

// NewMessageService creates a new MessageService.
func NewMessageService(client *ent.Client) *MessageService {
	return &MessageService{client: client}
}

// NewMessage carries the fields a Stream Adapter populates for one
// ingested message.
type NewMessage struct {
	TenantID     string
	StreamID     string
	MessageID    string
	Timestamp    time.Time
	Author       string
	Content      string
	Channel      string
	RawData      string
	MetadataJSON map[string]interface{}
}

// IngestMessages bulk-inserts messages, silently skipping any row whose
// (stream_id, message_id) already exists. Adapters are expected to
// re-fetch overlapping windows around their watermark to tolerate
// delivery gaps; this dedupe makes that safe to do repeatedly.
func (s *MessageService) IngestMessages(ctx context.Context, msgs []NewMessage) (int, error) {
	if len(msgs) == 0 {
		return 0, nil
	}

	builders := make([]*ent.UnifiedMessageCreate, 0, len(msgs))
	for _, m := range msgs {
		b := s.client.UnifiedMessage.Create().
			SetTenantID(m.TenantID).
			SetStreamID(m.StreamID).
			SetMessageID(m.MessageID).
			SetTimestamp(m.Timestamp).
			SetAuthor(m.Author).
			SetContent(m.Content).
			SetRawData(m.RawData)
		if m.Channel != "" {
			b = b.SetChannel(m.Channel)
		}
		if m.MetadataJSON != nil {
			b = b.SetMetadataJSON(m.MetadataJSON)
		}
		builders = append(builders, b)
	}

	err := s.client.UnifiedMessage.CreateBulk(builders...).
		OnConflictColumns(unifiedmessage.FieldStreamID, unifiedmessage.FieldMessageID).
		DoNothing().
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to ingest messages: %w", err)
	}

	return len(msgs), nil
}

// PendingInWindow returns messages on a stream between [from, to) that
// are still PENDING processing, the input set for one Batch Processor
// (C7) window.
func (s *MessageService) PendingInWindow(ctx context.Context, streamID string, from, to time.Time) ([]*ent.UnifiedMessage, error) {
	msgs, err := s.client.UnifiedMessage.Query().
		Where(
			unifiedmessage.StreamIDEQ(streamID),
			unifiedmessage.TimestampGTE(from),
			unifiedmessage.TimestampLT(to),
			unifiedmessage.ProcessingStatusEQ(unifiedmessage.ProcessingStatusPENDING),
		).
		Order(ent.Asc(unifiedmessage.FieldTimestamp)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending messages: %w", err)
	}
	return msgs, nil
}

// ContextWindow returns messages on a stream within [from, to), used to
// build the 24h context window around a batch without re-running
// classification on already-processed messages.
func (s *MessageService) ContextWindow(ctx context.Context, streamID string, from, to time.Time) ([]*ent.UnifiedMessage, error) {
	msgs, err := s.client.UnifiedMessage.Query().
		Where(
			unifiedmessage.StreamIDEQ(streamID),
			unifiedmessage.TimestampGTE(from),
			unifiedmessage.TimestampLT(to),
		).
		Order(ent.Asc(unifiedmessage.FieldTimestamp)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query context window: %w", err)
	}
	return msgs, nil
}

// EarliestTimestamp returns the timestamp of a stream's oldest message,
// the Batch Processor's (C7) fallback starting point when a stream has
// no ProcessingWatermark row yet.
func (s *MessageService) EarliestTimestamp(ctx context.Context, streamID string) (time.Time, error) {
	msg, err := s.client.UnifiedMessage.Query().
		Where(unifiedmessage.StreamIDEQ(streamID)).
		Order(ent.Asc(unifiedmessage.FieldTimestamp)).
		First(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, fmt.Errorf("failed to get earliest message timestamp: %w", err)
	}
	return msg.Timestamp, nil
}

// AssignConversation sets the conversation_id computed by the Batch
// Processor's grouping step for a set of messages.
func (s *MessageService) AssignConversation(ctx context.Context, tx *ent.Tx, messageIDs []int, conversationID string) error {
	client := s.client.UnifiedMessage
	if tx != nil {
		client = tx.UnifiedMessage
	}
	_, err := client.Update().
		Where(unifiedmessage.IDIn(messageIDs...)).
		SetConversationID(conversationID).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("failed to assign conversation: %w", err)
	}
	return nil
}

// SetEmbedding stores the embedding vector computed for a message.
func (s *MessageService) SetEmbedding(ctx context.Context, id int, embedding []float32) error {
	err := s.client.UnifiedMessage.UpdateOneID(id).
		SetEmbedding(embedding).
		Exec(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to set embedding: %w", err)
	}
	return nil
}

// MarkStatus transitions a message's processing_status, recording an
// error detail on failure.
func (s *MessageService) MarkStatus(ctx context.Context, tx *ent.Tx, id int, status unifiedmessage.ProcessingStatus, lastErr string) error {
	client := s.client.UnifiedMessage
	if tx != nil {
		client = tx.UnifiedMessage
	}

	builder := client.UpdateOneID(id).SetProcessingStatus(status)
	if status == unifiedmessage.ProcessingStatusFAILED {
		builder = builder.AddFailureCount(1).SetLastError(lastErr)
	}

	if err := builder.Exec(ctx); err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to mark message status: %w", err)
	}
	return nil
}

// ByConversation returns every message assigned to a conversation, in
// timestamp order, for reply-chain visualization and generation context.
func (s *MessageService) ByConversation(ctx context.Context, conversationID string) ([]*ent.UnifiedMessage, error) {
	msgs, err := s.client.UnifiedMessage.Query().
		Where(unifiedmessage.ConversationIDEQ(conversationID)).
		Order(ent.Asc(unifiedmessage.FieldTimestamp)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages by conversation: %w", err)
	}
	return msgs, nil
}
