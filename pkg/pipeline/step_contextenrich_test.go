package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStyleAnalysisDetectsCodeBlock(t *testing.T) {
	result := styleAnalysis("Run this:\n```go\nfmt.Println(\"hi\")\n```")
	require.Equal(t, "technical", result["technical_depth"])
	require.Contains(t, result["format_patterns"], "code_block")
}

func TestStyleAnalysisDetectsBulletedList(t *testing.T) {
	result := styleAnalysis("Steps:\n- one\n- two\n- three")
	require.Contains(t, result["format_patterns"], "bulleted_list")
}

func TestStyleAnalysisShortSentencesAreIntroductory(t *testing.T) {
	result := styleAnalysis("This is easy. It just works.")
	require.Equal(t, "introductory", result["technical_depth"])
}

func TestFindConversationReturnsNilWhenMissing(t *testing.T) {
	require.Nil(t, findConversation(nil, "missing"))
}
