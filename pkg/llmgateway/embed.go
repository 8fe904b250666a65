package llmgateway

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
)

// Embed produces a single embedding vector for text using the configured
// embedding model. It goes through the same provider client as chat calls
// but bypasses the cache and retry machinery used by Call: an embedding
// call that fails is retried by the caller (C3), since embeddings are keyed
// by content hash rather than by canonical prompt.
func (g *Gateway) Embed(ctx context.Context, model, text string) ([]float32, error) {
	resp, err := g.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: model,
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
	})
	if err != nil {
		return nil, fmt.Errorf("llm gateway: embedding call failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("llm gateway: embedding response contained no vectors")
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
