// Package streammanager implements the Stream Manager (C6): the registry
// that owns one adapter instance per enabled stream, drives scheduled and
// manual runs, and disables a stream once it crosses its consecutive
// failure threshold.
package streammanager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/pkg/adapters"
	"github.com/lionscraft/docpythia/pkg/config"
	"github.com/lionscraft/docpythia/pkg/services"
)

// ErrUnknownStream is returned by RunOnce/UnregisterStream for a stream
// id that was never registered.
var ErrUnknownStream = errors.New("streammanager: unknown stream")

// defaultMaxConsecutiveFailures matches the spec's default of disabling a
// stream after 5 consecutive failed runs.
const defaultMaxConsecutiveFailures = 5

// entry tracks one registered stream's live adapter instance.
type entry struct {
	stream  *ent.StreamConfig
	adapter adapters.Adapter
	cancel  context.CancelFunc
}

// Manager owns the stream_id → adapter instance registry.
type Manager struct {
	streams    *services.StreamService
	sink       *adapters.Sink
	maxFailures int

	mu       sync.RWMutex
	registry map[string]*entry

	logger *slog.Logger
}

// New constructs a Manager. maxFailures<=0 uses the spec default of 5.
func New(streams *services.StreamService, sink *adapters.Sink, maxFailures int) *Manager {
	if maxFailures <= 0 {
		maxFailures = defaultMaxConsecutiveFailures
	}
	return &Manager{
		streams:     streams,
		sink:        sink,
		maxFailures: maxFailures,
		registry:    make(map[string]*entry),
		logger:      slog.With("component", "stream_manager"),
	}
}

// LoadEnabled loads every enabled StreamConfig row and registers it,
// meant to be called once at startup.
func (m *Manager) LoadEnabled(ctx context.Context) error {
	streams, err := m.streams.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("streammanager: failed to list enabled streams: %w", err)
	}

	for _, stream := range streams {
		if err := m.RegisterStream(ctx, stream); err != nil {
			m.logger.Error("failed to register stream at startup",
				"stream_id", stream.StreamID, "error", err)
		}
	}
	return nil
}

// RegisterStream constructs and initializes the adapter for a stream,
// adding it to the registry. For push-based adapters this starts their
// background delivery loop as a side effect of Initialize.
func (m *Manager) RegisterStream(ctx context.Context, stream *ent.StreamConfig) error {
	kind := config.AdapterType(stream.AdapterType)
	adapter, err := adapters.New(kind, stream.TenantID, stream.StreamID, m.sink)
	if err != nil {
		return err
	}

	adapterCtx, cancel := context.WithCancel(context.Background())
	if err := adapter.Initialize(adapterCtx, stream.ConfigJSON); err != nil {
		cancel()
		return fmt.Errorf("streammanager: failed to initialize stream %s: %w", stream.StreamID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry[stream.StreamID] = &entry{stream: stream, adapter: adapter, cancel: cancel}

	m.logger.Info("stream registered", "stream_id", stream.StreamID, "adapter_type", kind)
	return nil
}

// UnregisterStream shuts down and removes a stream's adapter instance.
func (m *Manager) UnregisterStream(ctx context.Context, streamID string) error {
	m.mu.Lock()
	e, ok := m.registry[streamID]
	if ok {
		delete(m.registry, streamID)
	}
	m.mu.Unlock()

	if !ok {
		return ErrUnknownStream
	}

	e.cancel()
	return e.adapter.Shutdown(ctx)
}

// RunOnce triggers one pull cycle for a registered stream. Push-based
// adapters (bot_push_chat) have no pull cycle and return immediately
// without error, since their delivery loop already runs independently.
func (m *Manager) RunOnce(ctx context.Context, streamID string) (int, error) {
	m.mu.RLock()
	e, ok := m.registry[streamID]
	m.mu.RUnlock()
	if !ok {
		return 0, ErrUnknownStream
	}

	kind := config.AdapterType(e.stream.AdapterType)
	if adapters.IsPushBased(kind) {
		return 0, nil
	}

	n, err := e.adapter.Run(ctx)
	if err != nil {
		m.recordFailure(ctx, e, err)
		return n, err
	}

	m.recordSuccess(ctx, e)
	return n, nil
}

// BotPushChatAdapter returns the registered bot_push_chat adapter
// instance for streamID, for the Review API's Telegram webhook route to
// dispatch an incoming update to the right stream. Returns ok=false if
// the stream is unregistered or registered under a different kind.
func (m *Manager) BotPushChatAdapter(streamID string) (*adapters.BotPushChat, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.registry[streamID]
	if !ok {
		return nil, false
	}
	bot, ok := e.adapter.(*adapters.BotPushChat)
	return bot, ok
}

// Streams returns the StreamConfig rows currently registered, for the
// Scheduler (C11) to enumerate when registering per-stream poll jobs.
func (m *Manager) Streams() []*ent.StreamConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*ent.StreamConfig, 0, len(m.registry))
	for _, e := range m.registry {
		out = append(out, e.stream)
	}
	return out
}

func (m *Manager) recordSuccess(ctx context.Context, e *entry) {
	if e.stream.ConsecutiveFailures == 0 {
		return
	}
	if err := m.streams.ResetFailures(ctx, e.stream.ID); err != nil {
		m.logger.Warn("failed to reset stream failure count", "stream_id", e.stream.StreamID, "error", err)
		return
	}
	e.stream.ConsecutiveFailures = 0
}

func (m *Manager) recordFailure(ctx context.Context, e *entry, runErr error) {
	updated, err := m.streams.RecordFailure(ctx, e.stream.ID, runErr.Error())
	if err != nil {
		m.logger.Error("failed to record stream failure", "stream_id", e.stream.StreamID, "error", err)
		return
	}
	e.stream = updated

	if updated.ConsecutiveFailures >= m.maxFailures {
		m.logger.Error("disabling stream after too many consecutive failures",
			"stream_id", e.stream.StreamID, "failures", updated.ConsecutiveFailures)
		if err := m.streams.SetEnabled(ctx, e.stream.ID, false); err != nil {
			m.logger.Error("failed to disable stream", "stream_id", e.stream.StreamID, "error", err)
			return
		}
		_ = m.UnregisterStream(context.Background(), e.stream.StreamID)
	}
}

// Shutdown stops every registered adapter.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	ids := make([]string, 0, len(m.registry))
	for id := range m.registry {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		if err := m.UnregisterStream(ctx, id); err != nil {
			m.logger.Warn("failed to shut down stream", "stream_id", id, "error", err)
		}
	}
}
