package adapters

import (
	"testing"

	goslack "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
)

func TestPollableChatValidateConfigRequiresTokenAndChannel(t *testing.T) {
	a := NewPollableChat("tenant-1", "stream-1", nil)

	assert.False(t, a.ValidateConfig(map[string]interface{}{}))
	assert.False(t, a.ValidateConfig(map[string]interface{}{"token": "xoxb-1"}))
	assert.True(t, a.ValidateConfig(map[string]interface{}{
		"token":      "xoxb-1",
		"channel_id": "C123",
	}))
}

func TestParseSlackTimestampExtractsUnixSeconds(t *testing.T) {
	assert.Equal(t, int64(1234567890), parseSlackTimestamp("1234567890.123456"))
	assert.Equal(t, int64(1234567890), parseSlackTimestamp("1234567890"))
}

func TestPollableChatNormalizeStoresTopicInMetadata(t *testing.T) {
	a := &PollableChat{cfg: PollableChatConfig{ChannelID: "C123", Topic: "releases"}}
	raw := goslack.Message{}
	raw.Timestamp = "1234567890.000100"
	raw.User = "U1"
	raw.Text = "shipped v2"
	msg := a.normalize(raw)

	assert.Equal(t, "1234567890.000100", msg.MessageID)
	assert.Equal(t, "shipped v2", msg.Content)
	assert.Equal(t, "releases", msg.MetadataJSON["topic"])
}
