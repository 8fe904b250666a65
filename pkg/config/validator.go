package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// Validator validates a loaded Config with clear, section-scoped errors.
// Struct-tag rules (`validate:"required"`, `validate:"omitempty,min=1"`,
// and similar) are checked generically via go-playground/validator;
// cross-field and environment-dependent rules that tags can't express
// (duplicate streams, "FAST tier must exist", "the env var it names must
// be set") are checked by the section-scoped methods below.
type Validator struct {
	cfg    *Config
	engine *validator.Validate
}

// NewValidator creates a validator for the given configuration.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg, engine: validator.New(validator.WithRequiredStructEnabled())}
}

// ValidateAll performs comprehensive validation, fail-fast at the first error.
func (v *Validator) ValidateAll() error {
	if err := v.validateTags(); err != nil {
		return err
	}
	if err := v.validateStreams(); err != nil {
		return fmt.Errorf("streams validation failed: %w", err)
	}
	if err := v.validateLLM(); err != nil {
		return fmt.Errorf("llm validation failed: %w", err)
	}
	if err := v.validateVectorStore(); err != nil {
		return fmt.Errorf("vector_store validation failed: %w", err)
	}
	if err := v.validateDocRepo(); err != nil {
		return fmt.Errorf("doc_repo validation failed: %w", err)
	}
	if err := v.validateTelegram(); err != nil {
		return fmt.Errorf("telegram validation failed: %w", err)
	}
	if err := v.validateSlack(); err != nil {
		return fmt.Errorf("slack validation failed: %w", err)
	}
	if err := v.validateScheduler(); err != nil {
		return fmt.Errorf("scheduler validation failed: %w", err)
	}
	if err := v.validateBatching(); err != nil {
		return fmt.Errorf("batching validation failed: %w", err)
	}
	return nil
}

// validateTags runs the generic `validate:"..."` struct-tag rules over
// every configured section that carries them, so adding a `required` or
// `min=` tag to a config field is enough without also hand-writing the
// check below.
func (v *Validator) validateTags() error {
	sections := []struct {
		name string
		val  interface{}
	}{
		{"llm", v.cfg.LLM},
		{"vector_store", v.cfg.VectorStore},
		{"doc_repo", v.cfg.DocRepo},
		{"scheduler", v.cfg.Scheduler},
		{"api", v.cfg.API},
		{"batching", v.cfg.Batching},
		{"pipeline", v.cfg.Pipeline},
	}
	for _, s := range sections {
		if err := v.structErr(s.name, s.val); err != nil {
			return err
		}
	}
	for i, stream := range v.cfg.Streams {
		if err := v.structErr(fmt.Sprintf("streams[%d]", i), stream); err != nil {
			return err
		}
	}
	return nil
}

// structErr runs the engine against val (skipping nil pointers, which the
// section-scoped methods already reject with a clearer message) and
// translates the first validator.FieldError into a ValidationError.
func (v *Validator) structErr(section string, val interface{}) error {
	if isNilPointer(val) {
		return nil
	}
	err := v.engine.Struct(val)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return NewValidationError(section, fe.Field(), fmt.Errorf("failed %q validation", fe.Tag()))
	}
	return NewValidationError(section, "", err)
}

func isNilPointer(val interface{}) bool {
	rv := reflect.ValueOf(val)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

func (v *Validator) validateStreams() error {
	seen := map[string]bool{}
	for i, s := range v.cfg.Streams {
		if s.TenantID == "" || s.StreamID == "" {
			return NewValidationError("streams", fmt.Sprintf("[%d]", i), fmt.Errorf("tenant_id and stream_id are required"))
		}
		if !s.AdapterType.IsValid() {
			return NewValidationError("streams", fmt.Sprintf("[%d].adapter_type", i), fmt.Errorf("invalid adapter type: %s", s.AdapterType))
		}
		key := s.TenantID + "/" + s.StreamID
		if seen[key] {
			return NewValidationError("streams", fmt.Sprintf("[%d]", i), fmt.Errorf("duplicate stream %s", key))
		}
		seen[key] = true
	}
	return nil
}

func (v *Validator) validateLLM() error {
	llm := v.cfg.LLM
	if llm == nil {
		return fmt.Errorf("llm configuration is nil")
	}
	if len(llm.Tiers) == 0 {
		return NewValidationError("llm", "tiers", fmt.Errorf("at least one model tier must be configured"))
	}
	if _, ok := llm.Tiers[ModelTierFast]; !ok {
		return NewValidationError("llm", "tiers", fmt.Errorf("FAST tier is required (classification runs on every message)"))
	}
	for tier, p := range llm.Tiers {
		if !tier.IsValid() {
			return NewValidationError("llm", "tiers", fmt.Errorf("invalid model tier key: %s", tier))
		}
		if p.Model == "" {
			return NewValidationError("llm", string(tier)+".model", fmt.Errorf("model is required"))
		}
		if p.APIKeyEnv != "" {
			if os.Getenv(p.APIKeyEnv) == "" {
				return NewValidationError("llm", string(tier)+".api_key_env", fmt.Errorf("environment variable %s is not set", p.APIKeyEnv))
			}
		}
	}
	if llm.MaxRetries < 0 {
		return NewValidationError("llm", "max_retries", fmt.Errorf("must be non-negative"))
	}
	return nil
}

func (v *Validator) validateVectorStore() error {
	vs := v.cfg.VectorStore
	if vs == nil {
		return fmt.Errorf("vector_store configuration is nil")
	}
	if vs.Host == "" {
		return NewValidationError("vector_store", "host", fmt.Errorf("required"))
	}
	if vs.CollectionName == "" {
		return NewValidationError("vector_store", "collection_name", fmt.Errorf("required"))
	}
	if vs.VectorSize == 0 {
		return NewValidationError("vector_store", "vector_size", fmt.Errorf("must be positive"))
	}
	return nil
}

func (v *Validator) validateDocRepo() error {
	dr := v.cfg.DocRepo
	if dr == nil {
		return NewValidationError("doc_repo", "", fmt.Errorf("required: the pipeline has no documentation tree to propose changes against"))
	}
	if dr.RootPath == "" {
		return NewValidationError("doc_repo", "root_path", fmt.Errorf("required"))
	}
	if dr.GitHubRepo != "" && dr.TokenEnv != "" && os.Getenv(dr.TokenEnv) == "" {
		return NewValidationError("doc_repo", "token_env", fmt.Errorf("environment variable %s is not set", dr.TokenEnv))
	}
	return nil
}

func (v *Validator) validateTelegram() error {
	t := v.cfg.Telegram
	if t == nil || !t.Enabled {
		return nil
	}
	if t.TokenEnv == "" {
		return NewValidationError("telegram", "token_env", fmt.Errorf("required when telegram is enabled"))
	}
	if os.Getenv(t.TokenEnv) == "" {
		return NewValidationError("telegram", "token_env", fmt.Errorf("environment variable %s is not set", t.TokenEnv))
	}
	if t.Mode != "" && !t.Mode.IsValid() {
		return NewValidationError("telegram", "mode", fmt.Errorf("invalid mode: %s", t.Mode))
	}
	if t.Mode == ChatAPIModeWebhook && t.WebhookURL == "" {
		return NewValidationError("telegram", "webhook_url", fmt.Errorf("required when mode is webhook"))
	}
	return nil
}

func (v *Validator) validateSlack() error {
	s := v.cfg.Slack
	if s == nil || !s.Enabled {
		return nil
	}
	if s.TokenEnv == "" {
		return NewValidationError("slack", "token_env", fmt.Errorf("required when slack is enabled"))
	}
	if os.Getenv(s.TokenEnv) == "" {
		return NewValidationError("slack", "token_env", fmt.Errorf("environment variable %s is not set", s.TokenEnv))
	}
	return nil
}

func (v *Validator) validateScheduler() error {
	s := v.cfg.Scheduler
	if s == nil {
		return fmt.Errorf("scheduler configuration is nil")
	}
	if s.Schedule == "" {
		return NewValidationError("scheduler", "schedule", fmt.Errorf("required"))
	}
	if s.RedisAddr != "" && s.LockTTL <= 0 {
		return NewValidationError("scheduler", "lock_ttl", fmt.Errorf("must be positive when redis_addr is set"))
	}
	return nil
}

func (v *Validator) validateBatching() error {
	b := v.cfg.Batching
	if b == nil {
		return fmt.Errorf("batching configuration is nil")
	}
	if b.BatchWindow <= 0 {
		return NewValidationError("batching", "batch_window", fmt.Errorf("must be positive"))
	}
	if b.ContextWindow <= 0 {
		return NewValidationError("batching", "context_window", fmt.Errorf("must be positive"))
	}
	if b.MaxReplyChainDepth < 1 {
		return NewValidationError("batching", "max_reply_chain_depth", fmt.Errorf("must be at least 1"))
	}
	return nil
}
