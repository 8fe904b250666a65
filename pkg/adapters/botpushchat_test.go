package adapters

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestBotPushChatValidateConfigRequiresTokenAndChatID(t *testing.T) {
	a := NewBotPushChat("tenant-1", "stream-1", nil)

	assert.False(t, a.ValidateConfig(map[string]interface{}{}))
	assert.False(t, a.ValidateConfig(map[string]interface{}{"token": "abc"}))
	assert.True(t, a.ValidateConfig(map[string]interface{}{
		"token":   "abc",
		"chat_id": float64(123),
	}))
}

func TestAuthorNamePrefersUsername(t *testing.T) {
	assert.Equal(t, "", authorName(nil))
	assert.Equal(t, "alice", authorName(&tgbotapi.User{UserName: "alice", FirstName: "Alice"}))
	assert.Equal(t, "Alice", authorName(&tgbotapi.User{FirstName: "Alice"}))
}
