package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lionscraft/docpythia/pkg/config"
)

func TestNewKafkaPublisherRequiresBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(config.KafkaConfig{Topic: "docpythia.messages"})
	assert.Error(t, err)
}

func TestNewKafkaPublisherRequiresTopic(t *testing.T) {
	_, err := NewKafkaPublisher(config.KafkaConfig{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)
}

func TestNewKafkaPublisherSucceedsWithBrokersAndTopic(t *testing.T) {
	p, err := NewKafkaPublisher(config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "docpythia.messages"})
	assert.NoError(t, err)
	assert.NotNil(t, p)
}

func TestPublishSkipsEmptyBatch(t *testing.T) {
	p, err := NewKafkaPublisher(config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "docpythia.messages"})
	assert.NoError(t, err)
	assert.NoError(t, p.Publish(t.Context(), "acme", "stream-1", nil))
}
