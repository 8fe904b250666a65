package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// yamlDoc mirrors the on-disk docpythia.yaml structure.
type yamlDoc struct {
	Streams     []StreamSeedConfig `yaml:"streams"`
	Tenants     []TenantConfig     `yaml:"tenants"`
	LLM         *LLMConfig         `yaml:"llm"`
	VectorStore *VectorStoreConfig `yaml:"vector_store"`
	DocRepo     *DocRepoConfig     `yaml:"doc_repo"`
	Telegram    *TelegramConfig    `yaml:"telegram"`
	Slack       *SlackConfig       `yaml:"slack"`
	Kafka       *KafkaConfig       `yaml:"kafka"`
	Scheduler   *SchedulerConfig   `yaml:"scheduler"`
	API         *APIConfig         `yaml:"api"`
	Batching    *BatchingConfig    `yaml:"batching"`
	Pipeline    *PipelineConfig    `yaml:"pipeline"`
}

// Initialize loads, defaults, validates, and returns ready-to-use
// configuration. This is the primary entry point called from cmd/docpythia.
//
// Steps:
//  1. Load .env (if present) so env-var-backed secrets are available
//  2. Load docpythia.yaml, expanding ${VAR} references against the environment
//  3. Merge operator-supplied sections over built-in defaults
//  4. Validate the merged configuration
func Initialize(_ context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("initializing configuration")

	if err := godotenv.Load(filepath.Join(configDir, ".env")); err != nil && !os.IsNotExist(err) {
		log.Warn("failed to load .env file", "error", err)
	}

	doc, err := loadYAMLDoc(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg, err := applyDefaults(configDir, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to apply configuration defaults: %w", err)
	}

	if err := NewValidator(cfg).ValidateAll(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	stats := cfg.Stats()
	log.Info("configuration initialized",
		"seed_streams", stats.SeedStreams,
		"llm_tiers", stats.LLMTiers)

	return cfg, nil
}

func loadYAMLDoc(configDir string) (*yamlDoc, error) {
	path := filepath.Join(configDir, "docpythia.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewLoadError(path, fmt.Errorf("%w: %s", ErrConfigNotFound, path))
		}
		return nil, NewLoadError(path, err)
	}

	data = ExpandEnv(data)

	var doc yamlDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, NewLoadError(path, fmt.Errorf("%w: %v", ErrInvalidYAML, err))
	}

	return &doc, nil
}

// applyDefaults merges each section of the loaded YAML document over its
// built-in defaults. Sections the operator omits entirely keep the
// defaults verbatim; sections with any content have operator values
// override defaults field-by-field via mergo.
func applyDefaults(configDir string, doc *yamlDoc) (*Config, error) {
	scheduler := DefaultSchedulerConfig()
	if doc.Scheduler != nil {
		if err := mergo.Merge(scheduler, doc.Scheduler, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge scheduler config: %w", err)
		}
	}

	batching := DefaultBatchingConfig()
	if doc.Batching != nil {
		if err := mergo.Merge(batching, doc.Batching, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge batching config: %w", err)
		}
	}

	llm := DefaultLLMConfig()
	if doc.LLM != nil {
		if err := mergo.Merge(llm, doc.LLM, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge llm config: %w", err)
		}
	}

	vectorStore := DefaultVectorStoreConfig()
	if doc.VectorStore != nil {
		if err := mergo.Merge(vectorStore, doc.VectorStore, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge vector_store config: %w", err)
		}
	}

	api := DefaultAPIConfig()
	if doc.API != nil {
		if err := mergo.Merge(api, doc.API, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge api config: %w", err)
		}
	}

	pipeline := DefaultPipelineConfig()
	if doc.Pipeline != nil {
		if err := mergo.Merge(pipeline, doc.Pipeline, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge pipeline config: %w", err)
		}
	}

	telegram := doc.Telegram
	if telegram == nil {
		telegram = &TelegramConfig{}
	}
	slackCfg := doc.Slack
	if slackCfg == nil {
		slackCfg = &SlackConfig{}
	}
	kafka := doc.Kafka
	if kafka == nil {
		kafka = &KafkaConfig{}
	}

	return &Config{
		configDir:   configDir,
		Streams:     doc.Streams,
		Tenants:     doc.Tenants,
		LLM:         llm,
		VectorStore: vectorStore,
		DocRepo:     doc.DocRepo,
		Telegram:    telegram,
		Slack:       slackCfg,
		Kafka:       kafka,
		Scheduler:   scheduler,
		API:         api,
		Batching:    batching,
		Pipeline:    pipeline,
	}, nil
}
