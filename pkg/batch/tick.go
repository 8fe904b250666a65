// Package batch implements the Batch Processor (C7): per-stream windowing
// of pending messages into 24-hour batches, conversation grouping within
// a batch, and reply-chain depth computation for prompt rendering.
package batch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/pkg/config"
	"github.com/lionscraft/docpythia/pkg/services"
)

// defaultBackfillWindow is the "(now − 7d)" span named in spec.md §4.7's
// pseudocode for a stream with no messages at all. resolveWatermark does
// not apply it: a stream with no messages gets no watermark, and any
// other stream's watermark starts at its earliest message, however old.
const defaultBackfillWindow = 7 * 24 * time.Hour

// BatchInput carries one tick's windowed data to the Pipeline
// Orchestrator (C8). AdvanceTo is the processing-watermark time the
// orchestrator should commit alongside its writes; it is the zero time
// when max_batch_size truncation deferred part of the window, per the
// spec's "excess is deferred to the next tick without advancing the
// watermark" rule — the orchestrator must skip its watermark advance in
// that case, not the Batch Processor.
type BatchInput struct {
	StreamID        string
	BatchID         string
	BatchMessages   []*ent.UnifiedMessage
	ContextMessages []*ent.UnifiedMessage
	Conversations   []Conversation
	AdvanceTo       time.Time
}

// PipelineRunner is implemented by the Pipeline Orchestrator (C8). Batch
// depends only on this narrow interface so it never imports C8's step
// machinery.
type PipelineRunner interface {
	RunBatch(ctx context.Context, input BatchInput) error
}

// Processor runs one windowing tick per stream.
type Processor struct {
	messages   *services.MessageService
	watermarks *services.WatermarkService
	cfg        config.BatchingConfig
	runner     PipelineRunner
	logger     *slog.Logger
}

// New constructs a Processor.
func New(messages *services.MessageService, watermarks *services.WatermarkService, cfg config.BatchingConfig, runner PipelineRunner) *Processor {
	return &Processor{
		messages:   messages,
		watermarks: watermarks,
		cfg:        cfg,
		runner:     runner,
		logger:     slog.With("component", "batch_processor"),
	}
}

// Tick runs one windowing pass for a single stream, following spec.md
// §4.7's pseudocode: resolve or bootstrap the processing watermark,
// compute the window, skip if the window hasn't elapsed yet,
// skip-and-advance on an empty window, otherwise group conversations and
// hand off to the Pipeline Orchestrator. A stream with no messages yet
// gets no watermark, and the tick returns without doing anything.
func (p *Processor) Tick(ctx context.Context, streamID string) error {
	log := p.logger.With("stream_id", streamID)

	wmTime, err := p.resolveWatermark(ctx, streamID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			log.Debug("no messages ingested yet, nothing to tick")
			return nil
		}
		return err
	}

	batchEnd := wmTime.Add(durationOr(p.cfg.BatchWindow, 24*time.Hour))
	if batchEnd.After(time.Now()) {
		return nil
	}

	contextWindow := durationOr(p.cfg.ContextWindow, 24*time.Hour)
	contextMsgs, err := p.messages.ContextWindow(ctx, streamID, wmTime.Add(-contextWindow), wmTime)
	if err != nil {
		return fmt.Errorf("batch: failed to load context window: %w", err)
	}

	batchMsgs, err := p.messages.PendingInWindow(ctx, streamID, wmTime, batchEnd)
	if err != nil {
		return fmt.Errorf("batch: failed to load batch window: %w", err)
	}

	if len(batchMsgs) == 0 {
		log.Debug("empty window, advancing watermark", "batch_end", batchEnd)
		return p.watermarks.AdvanceProcessingWatermark(ctx, nil, streamID, batchEnd, "")
	}

	advanceTo := batchEnd
	maxBatchSize := intOr(p.cfg.MaxBatchSize, 500)
	if len(batchMsgs) > maxBatchSize {
		log.Info("batch exceeds max_batch_size, deferring excess",
			"total", len(batchMsgs), "cap", maxBatchSize)
		batchMsgs = batchMsgs[:maxBatchSize]
		advanceTo = time.Time{}
	}

	conversations := GroupConversations(streamID, batchMsgs, p.cfg)
	batchID := hashBatchID(streamID, wmTime, batchEnd)

	log = log.With("batch_id", batchID)
	log.Info("running pipeline for batch",
		"batch_messages", len(batchMsgs), "context_messages", len(contextMsgs),
		"conversations", len(conversations))

	return p.runner.RunBatch(ctx, BatchInput{
		StreamID:        streamID,
		BatchID:         batchID,
		BatchMessages:   batchMsgs,
		ContextMessages: contextMsgs,
		Conversations:   conversations,
		AdvanceTo:       advanceTo,
	})
}

// resolveWatermark returns the stream's current processing watermark,
// bootstrapping it from the earliest ingested message's timestamp on
// first use. For a stream with no messages it persists nothing and
// returns services.ErrNotFound.
func (p *Processor) resolveWatermark(ctx context.Context, streamID string) (time.Time, error) {
	wm, err := p.watermarks.GetProcessingWatermark(ctx, streamID)
	if err == nil {
		return wm.WatermarkTime, nil
	}
	if !errors.Is(err, services.ErrNotFound) {
		return time.Time{}, fmt.Errorf("batch: failed to get processing watermark: %w", err)
	}

	earliest, err := p.messages.EarliestTimestamp(ctx, streamID)
	if err != nil {
		return time.Time{}, err
	}

	if err := p.watermarks.AdvanceProcessingWatermark(ctx, nil, streamID, earliest, ""); err != nil {
		return time.Time{}, fmt.Errorf("batch: failed to bootstrap processing watermark: %w", err)
	}
	return earliest, nil
}

func hashBatchID(streamID string, wmTime, batchEnd time.Time) string {
	payload := fmt.Sprintf("%s|%d|%d", streamID, wmTime.Unix(), batchEnd.Unix())
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
