package llmgateway

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	tiktoken "github.com/pkoukk/tiktoken-go"

	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/pkg/config"
	"github.com/lionscraft/docpythia/pkg/services"
)

// Purpose names the kind of call being made, persisted alongside the cache
// entry so "every call for this message" queries can filter by it.
type Purpose string

const (
	PurposeIndex      Purpose = "index"
	PurposeEmbeddings Purpose = "embeddings"
	PurposeAnalysis   Purpose = "analysis"
	PurposeChangeGen  Purpose = "changegeneration"
	PurposeReview     Purpose = "review"
	PurposeGeneral    Purpose = "general"
)

// Message is one turn of conversation history included in a prompt.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CallRequest is the single entry point's input, mirroring the contract
// Call(purpose, model_tier, system_prompt, user_prompt, history?, response_schema?, message_id?).
type CallRequest struct {
	Purpose        Purpose
	Tier           config.ModelTier
	SystemPrompt   string
	UserPrompt     string
	History        []Message
	ResponseSchema json.RawMessage // JSON schema; nil means free-text response
	MessageID      string          // optional, for cache provenance
}

// CallResult is the gateway's output: either ParsedJSON (when a schema was
// requested) or Text, never both.
type CallResult struct {
	Text       string
	ParsedJSON json.RawMessage
	Tokens     int
	CacheHit   bool
}

// retryBaseDelay and retryAttempts implement the spec's fixed 3-attempt,
// base-2s exponential backoff, doubled again on transient classification.
const (
	retryBaseDelay = 2 * time.Second
	retryAttempts  = 3
)

// Gateway is the LLM Gateway (C2): it owns the provider client, tier-to-model
// mapping, token estimation, the canonical-prompt cache, and retry policy.
type Gateway struct {
	client   openai.Client
	tiers    map[config.ModelTier]config.LLMProviderConfig
	cache    *services.LLMCacheService
	encoding *tiktoken.Tiktoken
	logger   *slog.Logger
}

// New builds a Gateway from LLM configuration and an HTTP client (typically
// the shared IPv4-preferring client from pkg/netcfg).
func New(cfg config.LLMConfig, cache *services.LLMCacheService, httpClient *http.Client, apiKey string) (*Gateway, error) {
	if len(cfg.Tiers) == 0 {
		return nil, fmt.Errorf("llm gateway: no model tiers configured")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	if base, ok := cfg.Tiers[config.ModelTierFast]; ok && base.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(base.BaseURL))
	}

	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("llm gateway: failed to load token encoding: %w", err)
	}

	return &Gateway{
		client:   openai.NewClient(opts...),
		tiers:    cfg.Tiers,
		cache:    cache,
		encoding: enc,
		logger:   slog.With("component", "llm_gateway"),
	}, nil
}

// EstimateTokens returns a tiktoken count for text, recorded as a cache
// entry's prompt_tokens and used for RAG context token totals. No request
// is checked against a tier's max_tokens before it is sent.
func (g *Gateway) EstimateTokens(text string) int {
	return len(g.encoding.Encode(text, nil, nil))
}

// Call executes the gateway's full algorithm: canonicalize, hash, cache
// lookup, provider call with schema validation, retry-on-transient, cache
// write. Mirrors the teacher's pattern of resolving provider configuration
// before dispatching a call (pkg/agent/config_resolver.go).
func (g *Gateway) Call(ctx context.Context, req CallRequest) (*CallResult, error) {
	model, ok := g.tiers[req.Tier]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTier, req.Tier)
	}

	prompt := canonicalPrompt(req)
	hash := promptHash(model.Model, req.Purpose, prompt)

	if g.cache != nil {
		if entry, err := g.cache.Get(ctx, hash); err == nil {
			return hitToResult(entry, req.ResponseSchema), nil
		}
	}

	var lastErr error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		result, callErr := g.invoke(ctx, model, req)
		if callErr == nil {
			if g.cache != nil {
				_ = g.cache.Put(ctx, hash, string(req.Tier), req.MessageID, prompt, cachedPayload(result), g.EstimateTokens(prompt), result.Tokens)
			}
			return result, nil
		}

		lastErr = callErr
		class := classify(callErr)
		if class == classPermanent {
			return nil, callErr
		}

		if attempt == retryAttempts-1 {
			break
		}

		delay := time.Duration(float64(retryBaseDelay) * math.Pow(2, float64(attempt)) * 2)
		g.logger.Warn("llm call failed, retrying",
			"purpose", req.Purpose, "tier", req.Tier, "attempt", attempt, "delay", delay, "error", callErr)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrExhausted, lastErr)
}

// Embed returns the embedding vector for text under model, caching and
// retrying on transient failure identically to Call, so the vector
// store's nearest-neighbour index gets the same provider resilience as
// every other LLM Gateway caller.
func (g *Gateway) Embed(ctx context.Context, model, text string) ([]float32, error) {
	hash := promptHash(model, PurposeEmbeddings, text)

	if g.cache != nil {
		if entry, err := g.cache.Get(ctx, hash); err == nil {
			return decodeEmbedding(entry.Response)
		}
	}

	var lastErr error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		vec, tokens, callErr := g.invokeEmbedding(ctx, model, text)
		if callErr == nil {
			if g.cache != nil {
				_ = g.cache.Put(ctx, hash, model, "", text, encodeEmbedding(vec), g.EstimateTokens(text), tokens)
			}
			return vec, nil
		}

		lastErr = callErr
		class := classify(callErr)
		if class == classPermanent {
			return nil, callErr
		}
		if attempt == retryAttempts-1 {
			break
		}

		delay := time.Duration(float64(retryBaseDelay) * math.Pow(2, float64(attempt)) * 2)
		g.logger.Warn("embedding call failed, retrying",
			"model", model, "attempt", attempt, "delay", delay, "error", callErr)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrExhausted, lastErr)
}

// invokeEmbedding makes exactly one embeddings provider call.
func (g *Gateway) invokeEmbedding(ctx context.Context, model, text string) ([]float32, int, error) {
	resp, err := g.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: model,
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
	})
	if err != nil {
		return nil, 0, err
	}
	if len(resp.Data) == 0 {
		return nil, 0, fmt.Errorf("llm gateway: empty embedding response")
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, f := range resp.Data[0].Embedding {
		vec[i] = float32(f)
	}
	return vec, int(resp.Usage.TotalTokens), nil
}

func encodeEmbedding(vec []float32) string {
	b, _ := json.Marshal(vec)
	return string(b)
}

func decodeEmbedding(raw string) ([]float32, error) {
	var vec []float32
	if err := json.Unmarshal([]byte(raw), &vec); err != nil {
		return nil, fmt.Errorf("llm gateway: malformed cached embedding: %w", err)
	}
	return vec, nil
}

// invoke makes exactly one provider call and validates the response against
// req.ResponseSchema if one was supplied.
func (g *Gateway) invoke(ctx context.Context, model config.LLMProviderConfig, req CallRequest) (*CallResult, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(req.SystemPrompt),
	}
	for _, h := range req.History {
		switch h.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(h.Content))
		default:
			messages = append(messages, openai.UserMessage(h.Content))
		}
	}
	messages = append(messages, openai.UserMessage(req.UserPrompt))

	params := openai.ChatCompletionNewParams{
		Model:       model.Model,
		Messages:    messages,
		Temperature: openai.Float(model.Temperature),
		MaxTokens:   openai.Int(int64(model.MaxTokens)),
	}
	if req.ResponseSchema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("llm gateway: empty response body")
	}

	content := resp.Choices[0].Message.Content
	result := &CallResult{
		Text:   content,
		Tokens: int(resp.Usage.TotalTokens),
	}

	if req.ResponseSchema != nil {
		var parsed json.RawMessage
		if err := json.Unmarshal([]byte(content), &parsed); err != nil {
			return nil, fmt.Errorf("llm gateway: malformed json response: %w", err)
		}
		if err := validateSchema(req.ResponseSchema, parsed); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
		}
		result.ParsedJSON = parsed
	}

	return result, nil
}

// canonicalPrompt builds P = system‖"\n"‖user‖json(history)‖schema_hash.
func canonicalPrompt(req CallRequest) string {
	historyJSON, _ := json.Marshal(req.History)
	schemaHash := ""
	if req.ResponseSchema != nil {
		sum := sha256.Sum256(req.ResponseSchema)
		schemaHash = hex.EncodeToString(sum[:])
	}
	return req.SystemPrompt + "\n" + req.UserPrompt + string(historyJSON) + schemaHash
}

// promptHash computes hash = sha256(model‖purpose‖P).
func promptHash(model string, purpose Purpose, canonical string) string {
	sum := sha256.Sum256([]byte(model + string(purpose) + canonical))
	return hex.EncodeToString(sum[:])
}

func cachedPayload(r *CallResult) string {
	if r.ParsedJSON != nil {
		return string(r.ParsedJSON)
	}
	return r.Text
}

func hitToResult(entry *ent.LLMCacheEntry, schema json.RawMessage) *CallResult {
	r := &CallResult{CacheHit: true, Tokens: entry.PromptTokens + entry.CompletionTokens}
	if schema != nil {
		r.ParsedJSON = json.RawMessage(entry.Response)
	} else {
		r.Text = entry.Response
	}
	return r
}
