package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		LLM: &LLMConfig{
			Tiers: map[ModelTier]LLMProviderConfig{
				ModelTierFast: {Model: "gpt-test"},
			},
		},
		VectorStore: &VectorStoreConfig{Host: "localhost", CollectionName: "docs", VectorSize: 1536},
		DocRepo:     &DocRepoConfig{RootPath: "/docs"},
		Scheduler:   &SchedulerConfig{Schedule: "@every 30m"},
		API:         &APIConfig{ListenAddr: ":8080"},
		Batching: &BatchingConfig{
			BatchWindow:        24 * time.Hour,
			ContextWindow:      24 * time.Hour,
			MaxReplyChainDepth: 5,
		},
		Pipeline: &PipelineConfig{RAGTopK: 5, MinConfidence: 0.7},
	}
}

func TestValidateAllAcceptsWellFormedConfig(t *testing.T) {
	assert.NoError(t, NewValidator(validConfig()).ValidateAll())
}

func TestValidateTagsRejectsMissingRequiredField(t *testing.T) {
	cfg := validConfig()
	cfg.VectorStore.Host = ""

	err := NewValidator(cfg).ValidateAll()
	assert.Error(t, err)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "vector_store", verr.Section)
}

func TestValidateTagsRejectsInvalidURL(t *testing.T) {
	cfg := validConfig()
	cfg.DocRepo.PRWebhookURL = "not-a-url"

	err := NewValidator(cfg).ValidateAll()
	assert.Error(t, err)
}

func TestValidateStreamsRejectsDuplicateStreamIDs(t *testing.T) {
	cfg := validConfig()
	cfg.Streams = []StreamSeedConfig{
		{TenantID: "acme", StreamID: "s1", AdapterType: AdapterTypeFileDrop},
		{TenantID: "acme", StreamID: "s1", AdapterType: AdapterTypeFileDrop},
	}

	err := NewValidator(cfg).ValidateAll()
	assert.ErrorContains(t, err, "duplicate stream")
}
