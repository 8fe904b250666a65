// Package llmgateway implements the LLM Gateway (C2): the single call site
// for every language-model interaction. It resolves a purpose and model
// tier to a concrete provider model, hashes the canonical prompt for cache
// lookup, classifies provider errors as transient or permanent, and retries
// transient failures with exponential backoff before giving up.
package llmgateway

import "errors"

// ErrExhausted is returned once every retry attempt for a call has failed.
var ErrExhausted = errors.New("llm gateway: retries exhausted")

// ErrSchemaMismatch is a permanent error: the provider returned well-formed
// JSON that does not satisfy the requested response schema.
var ErrSchemaMismatch = errors.New("llm gateway: response does not match schema")

// ErrUnknownTier is returned when a caller requests a model tier that has
// no entry in configuration.
var ErrUnknownTier = errors.New("llm gateway: unknown model tier")

// errClass distinguishes retryable provider failures from ones that should
// fail a call immediately.
type errClass int

const (
	classPermanent errClass = iota
	classTransient
)
