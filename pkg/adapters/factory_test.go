package adapters

import (
	"testing"

	"github.com/lionscraft/docpythia/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConstructsEachAdapterKind(t *testing.T) {
	cases := []struct {
		kind config.AdapterType
		want interface{}
	}{
		{config.AdapterTypeFileDrop, &FileDrop{}},
		{config.AdapterTypePollableChat, &PollableChat{}},
		{config.AdapterTypeBotPushChat, &BotPushChat{}},
	}

	for _, tc := range cases {
		a, err := New(tc.kind, "tenant-1", "stream-1", nil)
		require.NoError(t, err)
		assert.IsType(t, tc.want, a)
	}
}

func TestNewRejectsUnknownKind(t *testing.T) {
	_, err := New(config.AdapterType("carrier_pigeon"), "tenant-1", "stream-1", nil)
	assert.Error(t, err)
}

func TestIsPushBasedOnlyTrueForBotPushChat(t *testing.T) {
	assert.True(t, IsPushBased(config.AdapterTypeBotPushChat))
	assert.False(t, IsPushBased(config.AdapterTypeFileDrop))
	assert.False(t, IsPushBased(config.AdapterTypePollableChat))
}
