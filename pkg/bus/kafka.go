// Package bus implements the optional Kafka fan-out that decouples Stream
// Adapter ingestion from the Batch Processor's cron tick, for streams whose
// source tolerates at-least-once, possibly out-of-order delivery.
package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/lionscraft/docpythia/pkg/adapters"
	"github.com/lionscraft/docpythia/pkg/config"
)

// KafkaPublisher writes every ingested message to a single configured
// topic, keyed by stream_id:message_id. The writer's LeastBytes balancer
// ignores the key when picking a partition, so one stream's messages can
// land on several partitions and no per-stream order is kept.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher builds a publisher from KafkaConfig. Callers should
// only construct one when cfg.Enabled is true.
func NewKafkaPublisher(cfg config.KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("bus: kafka enabled with no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("bus: kafka enabled with no topic configured")
	}

	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers...),
			Topic:    cfg.Topic,
			Balancer: &kafka.LeastBytes{},
		},
	}, nil
}

// envelope is the wire shape published to the bus topic.
type envelope struct {
	TenantID string                     `json:"tenant_id"`
	StreamID string                     `json:"stream_id"`
	Message  adapters.NormalizedMessage `json:"message"`
}

// Publish fans msgs out to the bus topic. A publish failure is reported to
// the caller but never reverses the Store write that already happened,
// since the bus is a decoupled side channel, not the ingestion path of
// record.
func (p *KafkaPublisher) Publish(ctx context.Context, tenantID, streamID string, msgs []adapters.NormalizedMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	records := make([]kafka.Message, len(msgs))
	for i, m := range msgs {
		payload, err := json.Marshal(envelope{TenantID: tenantID, StreamID: streamID, Message: m})
		if err != nil {
			return fmt.Errorf("bus: failed to encode message %s: %w", m.MessageID, err)
		}
		records[i] = kafka.Message{Key: []byte(streamID + ":" + m.MessageID), Value: payload}
	}

	return p.writer.WriteMessages(ctx, records...)
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
