package config

import "time"

// DefaultSchedulerConfig returns the scheduler defaults applied when the
// operator's YAML omits the scheduler section entirely.
func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		Schedule: "@every 30m",
		LockTTL:  10 * time.Minute,
	}
}

// DefaultBatchingConfig returns the batching defaults named in the
// spec: 24h batch/context windows, a 500-message batch cap, 15-minute
// conversation grouping with a 5-minute gap split, a 20-message
// conversation cap, and reply-chain depth capped at 5.
func DefaultBatchingConfig() *BatchingConfig {
	return &BatchingConfig{
		BatchWindow:            24 * time.Hour,
		ContextWindow:          24 * time.Hour,
		MaxBatchSize:           500,
		ConversationTimeWindow: 15 * time.Minute,
		MinConversationGap:     5 * time.Minute,
		MaxConversationSize:    20,
		MaxReplyChainDepth:     5,
	}
}

// DefaultPipelineConfig returns the orchestrator defaults named in the
// spec: top-5 RAG retrieval and a 0.7 minimum confidence floor.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		RAGTopK:       5,
		MinConfidence: 0.7,
	}
}

// DefaultLLMConfig returns baseline retry/cache settings; tiers must
// still be supplied by the operator since they carry model names and
// API key env var names with no sane global default.
func DefaultLLMConfig() *LLMConfig {
	return &LLMConfig{
		Tiers:          map[ModelTier]LLMProviderConfig{},
		MaxRetries:     3,
		RetryBaseDelay: 2 * time.Second,
		CacheEnabled:   true,
	}
}

// DefaultVectorStoreConfig returns the qdrant connection defaults.
func DefaultVectorStoreConfig() *VectorStoreConfig {
	return &VectorStoreConfig{
		Port:           6334,
		CollectionName: "docpythia_docs",
		VectorSize:     1536,
	}
}

// DefaultAPIConfig returns the Review API server defaults.
func DefaultAPIConfig() *APIConfig {
	return &APIConfig{
		ListenAddr: ":8080",
	}
}
