package config

import "time"

// StreamSeedConfig describes a stream to provision at startup if it does
// not already have a StreamConfig row in the store. Operators typically
// manage streams via the Review API after bootstrap; this exists so a
// fresh tenant can come up with its initial streams declared in YAML.
type StreamSeedConfig struct {
	TenantID    string                 `yaml:"tenant_id" validate:"required"`
	StreamID    string                 `yaml:"stream_id" validate:"required"`
	AdapterType AdapterType            `yaml:"adapter_type" validate:"required"`
	Schedule    string                 `yaml:"schedule,omitempty"`
	Config      map[string]interface{} `yaml:"config,omitempty"`
}

// TenantConfig describes one documentation project the pipeline writes
// proposals for: the style and purpose context threaded into the
// generate step's system prompt, and the git coordinates the external
// PR collaborator publishes a changeset to.
type TenantConfig struct {
	TenantID               string `yaml:"tenant_id" validate:"required"`
	ProjectName            string `yaml:"project_name,omitempty"`
	ProjectDescription     string `yaml:"project_description,omitempty"`
	DocPurpose             string `yaml:"doc_purpose,omitempty"`
	TargetAudience         string `yaml:"target_audience,omitempty"`
	StyleGuide             string `yaml:"style_guide,omitempty"`
	DocumentationGitURL    string `yaml:"documentation_git_url,omitempty"`
	DocumentationGitBranch string `yaml:"documentation_git_branch,omitempty"`
	PRTargetForkURL        string `yaml:"pr_target_fork_url,omitempty"`
}

// LLMProviderConfig configures one OpenAI-compatible model tier.
type LLMProviderConfig struct {
	Model       string  `yaml:"model" validate:"required"`
	APIKeyEnv   string  `yaml:"api_key_env" validate:"required"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
	MaxTokens   int     `yaml:"max_tokens,omitempty"`
}

// LLMConfig groups the tiered model configuration consumed by the LLM
// Gateway (C2), plus retry and caching knobs shared across tiers.
type LLMConfig struct {
	Tiers           map[ModelTier]LLMProviderConfig `yaml:"tiers"`
	EmbeddingModel  string                           `yaml:"embedding_model,omitempty"`
	EmbeddingAPIKey string                           `yaml:"embedding_api_key_env,omitempty"`
	MaxRetries      int                              `yaml:"max_retries,omitempty" validate:"omitempty,min=0"`
	RetryBaseDelay  time.Duration                    `yaml:"retry_base_delay,omitempty"`
	CacheEnabled    bool                             `yaml:"cache_enabled"`
}

// VectorStoreConfig configures the qdrant-backed vector store (C3).
type VectorStoreConfig struct {
	Host           string `yaml:"host" validate:"required"`
	Port           int    `yaml:"port,omitempty"`
	APIKeyEnv      string `yaml:"api_key_env,omitempty"`
	CollectionName string `yaml:"collection_name,omitempty"`
	VectorSize     uint64 `yaml:"vector_size,omitempty"`
	UseTLS         bool   `yaml:"use_tls,omitempty"`
}

// DocRepoConfig locates the documentation tree the Doc-Index Generator
// (C4) scans and that proposals are ultimately drafted against.
type DocRepoConfig struct {
	RootPath     string `yaml:"root_path" validate:"required"`
	GitHubRepo   string `yaml:"github_repo,omitempty"`
	BaseBranch   string `yaml:"base_branch,omitempty"`
	TokenEnv     string `yaml:"token_env,omitempty"`
	PRWebhookURL string `yaml:"pr_webhook_url,omitempty" validate:"omitempty,url"`
}

// TelegramConfig configures the bot-push chat adapter's Telegram backend.
type TelegramConfig struct {
	Enabled      bool        `yaml:"enabled"`
	TokenEnv     string      `yaml:"token_env,omitempty"`
	Mode         ChatAPIMode `yaml:"mode,omitempty"`
	WebhookURL   string      `yaml:"webhook_url,omitempty"`
	WebhookPath  string      `yaml:"webhook_path,omitempty"`
}

// SlackConfig configures the pollable chat API adapter's Slack backend.
type SlackConfig struct {
	Enabled  bool   `yaml:"enabled"`
	TokenEnv string `yaml:"token_env,omitempty"`
}

// KafkaConfig configures the optional message-bus transport used to
// decouple Stream Adapters from the Batch Processor when a stream's
// source tolerates out-of-order or replayed delivery.
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers,omitempty"`
	Topic   string   `yaml:"topic,omitempty"`
}

// SchedulerConfig configures the cron-driven orchestrator trigger (C11).
type SchedulerConfig struct {
	Schedule         string        `yaml:"schedule" validate:"required"`
	RedisAddr        string        `yaml:"redis_addr,omitempty"`
	RedisPasswordEnv string        `yaml:"redis_password_env,omitempty"`
	LockTTL          time.Duration `yaml:"lock_ttl,omitempty"`
}

// APIConfig configures the Review API server (C10).
type APIConfig struct {
	ListenAddr   string   `yaml:"listen_addr" validate:"required"`
	AuthTokenEnv string   `yaml:"auth_token_env,omitempty"`
	CORSOrigins  []string `yaml:"cors_origins,omitempty"`
}

// BatchingConfig configures the conversation-aware batching window (C7).
type BatchingConfig struct {
	BatchWindow            time.Duration `yaml:"batch_window,omitempty"`
	ContextWindow          time.Duration `yaml:"context_window,omitempty"`
	MaxBatchSize           int           `yaml:"max_batch_size,omitempty" validate:"omitempty,min=1"`
	ConversationTimeWindow time.Duration `yaml:"conversation_time_window,omitempty"`
	MinConversationGap     time.Duration `yaml:"min_conversation_gap,omitempty"`
	MaxConversationSize    int           `yaml:"max_conversation_size,omitempty" validate:"omitempty,min=1"`
	MaxReplyChainDepth     int           `yaml:"max_reply_chain_depth,omitempty" validate:"omitempty,min=1"`
}

// PipelineConfig configures the Pipeline Orchestrator's (C8) RAG retrieval
// depth and the confidence floor a proposal must clear to stay pending.
type PipelineConfig struct {
	RAGTopK       int     `yaml:"rag_top_k,omitempty" validate:"omitempty,min=1"`
	MinConfidence float64 `yaml:"min_confidence,omitempty" validate:"omitempty,min=0,max=1"`
}
