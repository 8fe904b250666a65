package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/ent/importwatermark"
	"github.com/lionscraft/docpythia/ent/processingwatermark"
)

// WatermarkService manages both high-water marks named in the data
// model: the per-(stream,resource) ImportWatermark a Stream Adapter
// advances as it fetches, and the mandatory per-stream
// ProcessingWatermark the Pipeline Orchestrator advances after each
// successful run. These are deliberately two different tables — folding
// them into one global watermark was the design bug called out for the
// batch window (SPEC_FULL.md §9).
type WatermarkService struct {
	client *ent.Client
}

// NewWatermarkService creates a new WatermarkService.
func NewWatermarkService(client *ent.Client) *WatermarkService {
	return &WatermarkService{client: client}
}

// GetImportWatermark returns the watermark for a stream's resource, or
// ErrNotFound if the adapter has never imported from it before.
func (s *WatermarkService) GetImportWatermark(ctx context.Context, streamID, resourceID string) (*ent.ImportWatermark, error) {
	wm, err := s.client.ImportWatermark.Query().
		Where(importwatermark.StreamIDEQ(streamID), importwatermark.ResourceIDEQ(resourceID)).
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get import watermark: %w", err)
	}
	return wm, nil
}

// AdvanceImportWatermark upserts the import watermark for a stream's
// resource. lastImportedID breaks ties at equal timestamps; it is
// adapter-specific (row hash, monotonic id, or row index).
func (s *WatermarkService) AdvanceImportWatermark(ctx context.Context, streamID, resourceID string, lastImportedTime time.Time, lastImportedID string, complete bool) error {
	err := s.client.ImportWatermark.Create().
		SetStreamID(streamID).
		SetResourceID(resourceID).
		SetLastImportedTime(lastImportedTime).
		SetLastImportedID(lastImportedID).
		SetImportComplete(complete).
		OnConflictColumns(importwatermark.FieldStreamID, importwatermark.FieldResourceID).
		UpdateLastImportedTime().
		UpdateLastImportedID().
		UpdateImportComplete().
		SetUpdatedAt(time.Now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to advance import watermark: %w", err)
	}
	return nil
}

// GetProcessingWatermark returns the single processing watermark row for
// a stream, or ErrNotFound if the stream has never been processed.
func (s *WatermarkService) GetProcessingWatermark(ctx context.Context, streamID string) (*ent.ProcessingWatermark, error) {
	wm, err := s.client.ProcessingWatermark.Query().
		Where(processingwatermark.IDEQ(streamID)).
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get processing watermark: %w", err)
	}
	return wm, nil
}

// AdvanceProcessingWatermark upserts the processing watermark for a
// stream. Callers invoke this inside the same transaction that commits
// the pipeline run's other writes so the watermark advance is atomic
// with the proposals/classifications it gates (component contract C8).
func (s *WatermarkService) AdvanceProcessingWatermark(ctx context.Context, tx *ent.Tx, streamID string, watermarkTime time.Time, lastProcessedBatch string) error {
	client := s.client.ProcessingWatermark
	if tx != nil {
		client = tx.ProcessingWatermark
	}

	builder := client.Create().
		SetID(streamID).
		SetWatermarkTime(watermarkTime).
		OnConflictColumns(processingwatermark.FieldID).
		UpdateWatermarkTime().
		SetUpdatedAt(time.Now())

	if lastProcessedBatch != "" {
		builder = client.Create().
			SetID(streamID).
			SetWatermarkTime(watermarkTime).
			SetLastProcessedBatch(lastProcessedBatch).
			OnConflictColumns(processingwatermark.FieldID).
			UpdateWatermarkTime().
			UpdateLastProcessedBatch().
			SetUpdatedAt(time.Now())
	}

	if err := builder.Exec(ctx); err != nil {
		return fmt.Errorf("failed to advance processing watermark: %w", err)
	}
	return nil
}
