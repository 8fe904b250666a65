package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileDropValidateConfigRequiresWatchDirAndContentCol(t *testing.T) {
	a := NewFileDrop("tenant-1", "stream-1", nil)

	assert.False(t, a.ValidateConfig(map[string]interface{}{}))
	assert.False(t, a.ValidateConfig(map[string]interface{}{"watch_dir": "/tmp/in"}))
	assert.True(t, a.ValidateConfig(map[string]interface{}{
		"watch_dir":   "/tmp/in",
		"content_col": "message",
	}))
}

func TestFileDropNormalizeRowSkipsEmptyContent(t *testing.T) {
	a := &FileDrop{cfg: FileDropConfig{ContentCol: "content", AuthorCol: "author"}}
	colIndex := map[string]int{"content": 0, "author": 1}

	_, ok := a.normalizeRow("in.csv", colIndex, []string{"", "alice"}, 1)
	assert.False(t, ok)

	msg, ok := a.normalizeRow("in.csv", colIndex, []string{"hello", "alice"}, 1)
	assert.True(t, ok)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, "alice", msg.Author)
	assert.Equal(t, "in.csv:1", msg.MessageID)
}

func TestRowHashIsStableForSameLastRow(t *testing.T) {
	msgs := []NormalizedMessage{
		{MessageID: "a.csv:1", Content: "first"},
		{MessageID: "a.csv:2", Content: "second"},
	}
	h1 := rowHash(msgs)
	h2 := rowHash(msgs)
	assert.Equal(t, h1, h2)
	assert.NotEmpty(t, h1)

	assert.Empty(t, rowHash(nil))
}
