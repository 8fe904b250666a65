package pipeline

import (
	"context"
	"testing"

	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/pkg/batch"
	"github.com/stretchr/testify/require"
)

func TestStepFilterDropsEmptyAndBotMessages(t *testing.T) {
	msgs := []*ent.UnifiedMessage{
		{ID: 1, Content: "hello there"},
		{ID: 2, Content: "   "},
		{ID: 3, Content: "ignored", MetadataJSON: map[string]interface{}{"is_bot": true}},
		{ID: 4, Content: "ignored too", MetadataJSON: map[string]interface{}{"subtype": "bot_message"}},
		{ID: 5, Content: "ignored three", MetadataJSON: map[string]interface{}{"bot_id": "B123"}},
		{ID: 6, Content: "kept", MetadataJSON: map[string]interface{}{"is_bot": false}},
	}

	st := newState(batch.BatchInput{BatchMessages: msgs}, "acme")
	require.NoError(t, stepFilter(context.Background(), nil, st))

	require.Len(t, st.ToClassify, 2)
	require.Equal(t, 1, st.ToClassify[0].ID)
	require.Equal(t, 6, st.ToClassify[1].ID)
	require.ElementsMatch(t, []int{2, 3, 4, 5}, st.SkipIDs)
}

func TestIsBotEchoNilMetadata(t *testing.T) {
	require.False(t, isBotEcho(&ent.UnifiedMessage{Content: "hi"}))
}
