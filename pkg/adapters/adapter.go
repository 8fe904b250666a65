// Package adapters implements the Stream Adapters (C5): the closed set of
// {file-drop, pollable-chat, bot-push-chat} normalisers that turn a stream's
// native messages into UnifiedMessage rows. Adding a new adapter kind means
// adding a normaliser here and a case in adapters.New (factory.go) — no
// changes to the Store, Batch Processor, or anything downstream.
package adapters

import (
	"context"
	"errors"
)

// ErrConfig is returned by Initialize when a stream's config_json fails
// adapter-specific validation.
var ErrConfig = errors.New("adapters: invalid stream configuration")

// NormalizedMessage is the adapter-agnostic shape the Stream Manager hands
// to the Store for ingestion.
type NormalizedMessage struct {
	MessageID    string
	Timestamp    int64 // unix seconds, converted to time.Time by the caller
	Author       string
	Content      string
	Channel      string
	RawData      string
	MetadataJSON map[string]interface{}
}

// Adapter is the contract every Stream Adapter kind implements.
type Adapter interface {
	// Initialize validates and applies a stream's config_json. Returns
	// ErrConfig wrapped with detail on failure.
	Initialize(ctx context.Context, config map[string]interface{}) error

	// ValidateConfig reports whether config_json is well-formed for this
	// adapter kind, without mutating adapter state.
	ValidateConfig(config map[string]interface{}) bool

	// Run executes one import pass for a pull-based adapter, returning the
	// count of newly imported messages. Push-based adapters (bot webhook
	// receivers) implement Run as a no-op and rely on their HTTP handler
	// or long-poll loop instead.
	Run(ctx context.Context) (int, error)

	// Shutdown releases adapter resources (connections, watchers, tickers).
	Shutdown(ctx context.Context) error
}
