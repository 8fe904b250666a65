package slack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareMessageIDOrdersNumerically(t *testing.T) {
	assert.Equal(t, 1, compareMessageID("1234567891.000001", "1234567890.999999"))
	assert.Equal(t, -1, compareMessageID("1234567890.000001", "1234567891.000001"))
	assert.Equal(t, 0, compareMessageID("1234567890.0", "1234567890.0"))
}

func TestCompareMessageIDFallsBackToLexicalOnParseFailure(t *testing.T) {
	assert.Equal(t, strings.Compare("abc", "abd"), compareMessageID("abc", "abd"))
}
