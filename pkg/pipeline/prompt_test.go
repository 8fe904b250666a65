package pipeline

import (
	"strings"
	"testing"

	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/pkg/batch"
	"github.com/stretchr/testify/require"
)

func TestFormatMessagesWithIDsOneLinePerMessage(t *testing.T) {
	msgs := []*ent.UnifiedMessage{
		{ID: 1, Author: "alice", Content: "hello\nworld"},
		{ID: 2, Author: "bob", Content: "  extra   spaces "},
	}
	out := formatMessagesWithIDs(msgs)
	require.Equal(t, "[id=1] alice: hello world\n[id=2] bob: extra spaces\n", out)
}

func TestFormatConversationIndentsByReplyDepth(t *testing.T) {
	root := &ent.UnifiedMessage{ID: 1, MessageID: "m1", Author: "alice", Content: "root", MetadataJSON: map[string]interface{}{}}
	reply := &ent.UnifiedMessage{ID: 2, MessageID: "m2", Author: "bob", Content: "reply", MetadataJSON: map[string]interface{}{"reply_to_message_id": "m1"}}
	conv := batch.Conversation{ID: "conv-a", Messages: []*ent.UnifiedMessage{root, reply}}

	out := formatConversation(conv, 5)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "[id=1]"))
	require.True(t, strings.HasPrefix(lines[1], "  [id=2]"))
}

func TestOneLineCollapsesWhitespace(t *testing.T) {
	require.Equal(t, "a b c", oneLine("a\n  b\t c "))
}
