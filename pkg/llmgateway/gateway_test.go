package llmgateway

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, classTransient, classify(context.DeadlineExceeded))
	assert.Equal(t, classPermanent, classify(ErrSchemaMismatch))
	assert.Equal(t, classTransient, classify(&net.DNSError{IsTimeout: true}))
	assert.Equal(t, classPermanent, classify(errors.New("invalid api key")))
	assert.Equal(t, classTransient, classify(errors.New("unexpected EOF")))
}

func TestCanonicalPromptAndHashDeterminism(t *testing.T) {
	req := CallRequest{
		SystemPrompt: "system",
		UserPrompt:   "user",
		History:      []Message{{Role: "user", Content: "hi"}},
	}

	p1 := canonicalPrompt(req)
	p2 := canonicalPrompt(req)
	assert.Equal(t, p1, p2, "identical requests must canonicalize identically")

	h1 := promptHash("gpt-test", PurposeAnalysis, p1)
	h2 := promptHash("gpt-test", PurposeAnalysis, p2)
	assert.Equal(t, h1, h2, "identical (model, purpose, prompt) must hash identically")

	h3 := promptHash("gpt-test", PurposeReview, p1)
	assert.NotEqual(t, h1, h3, "different purpose must change the hash")
}

func TestCanonicalPromptIncludesSchemaHash(t *testing.T) {
	base := CallRequest{SystemPrompt: "s", UserPrompt: "u"}
	withSchema := base
	withSchema.ResponseSchema = []byte(`{"type":"object"}`)

	assert.NotEqual(t, canonicalPrompt(base), canonicalPrompt(withSchema))
}

func TestEncodeDecodeEmbeddingRoundTrip(t *testing.T) {
	vec := []float32{0.1, -0.5, 1.25}
	decoded, err := decodeEmbedding(encodeEmbedding(vec))
	assert.NoError(t, err)
	assert.Equal(t, vec, decoded)
}

func TestDecodeEmbeddingRejectsMalformedCache(t *testing.T) {
	_, err := decodeEmbedding("not json")
	assert.Error(t, err)
}

func TestRetryBackoffGrowsExponentially(t *testing.T) {
	var delays []time.Duration
	for attempt := 0; attempt < retryAttempts-1; attempt++ {
		delay := retryBaseDelay << uint(attempt) * 2
		delays = append(delays, delay)
	}
	assert.Equal(t, 4*time.Second, delays[0])
	assert.Equal(t, 8*time.Second, delays[1])
}
