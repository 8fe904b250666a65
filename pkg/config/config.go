package config

// Config is the umbrella configuration object produced by Initialize and
// threaded through every component at startup (C0 Bootstrap).
type Config struct {
	configDir string

	Streams     []StreamSeedConfig
	Tenants     []TenantConfig
	LLM         *LLMConfig
	VectorStore *VectorStoreConfig
	DocRepo     *DocRepoConfig
	Telegram    *TelegramConfig
	Slack       *SlackConfig
	Kafka       *KafkaConfig
	Scheduler   *SchedulerConfig
	API         *APIConfig
	Batching    *BatchingConfig
	Pipeline    *PipelineConfig
}

// ConfigDir returns the directory the configuration was loaded from.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// Tenant returns the configured project context for a tenant, or the
// zero value with ok=false if the operator never declared it. A missing
// tenant is not an error: the generate step falls back to an empty
// style/purpose context rather than failing the batch.
func (c *Config) Tenant(tenantID string) (TenantConfig, bool) {
	for _, t := range c.Tenants {
		if t.TenantID == tenantID {
			return t, true
		}
	}
	return TenantConfig{}, false
}

// Stats summarizes loaded configuration for startup logging.
type Stats struct {
	SeedStreams int
	LLMTiers    int
}

// Stats returns configuration statistics for logging.
func (c *Config) Stats() Stats {
	return Stats{
		SeedStreams: len(c.Streams),
		LLMTiers:    len(c.LLM.Tiers),
	}
}
