package pipeline

import (
	"testing"

	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/pkg/batch"
	"github.com/stretchr/testify/require"
)

func TestNewStateBuildsConversationIndex(t *testing.T) {
	input := batch.BatchInput{
		BatchID: "run-1",
		Conversations: []batch.Conversation{
			{ID: "conv-a", Messages: []*ent.UnifiedMessage{{ID: 1}, {ID: 2}}},
			{ID: "conv-b", Messages: []*ent.UnifiedMessage{{ID: 3}}},
		},
	}

	st := newState(input, "acme")

	require.Equal(t, "acme", st.TenantID)
	require.Equal(t, "run-1", st.RunID)
	require.Equal(t, "conv-a", st.conversationOf(1))
	require.Equal(t, "conv-a", st.conversationOf(2))
	require.Equal(t, "conv-b", st.conversationOf(3))
	require.Equal(t, "", st.conversationOf(999))
}

func TestCountSurvivingAndCountValid(t *testing.T) {
	drafts := []*proposalDraft{
		{},
		{Rejected: true},
		{Invalid: true},
		{Rejected: true, Invalid: true},
	}
	require.Equal(t, 2, countSurviving(drafts))
	require.Equal(t, 1, countValid(drafts))
}
