package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/ent/streamconfig"
)

// StreamService manages StreamConfig rows: the registry of streams each
// Stream Adapter and the Scheduler iterate over.
type StreamService struct {
	client *ent.Client
}

// NewStreamService creates a new StreamService.
func NewStreamService(client *ent.Client) *StreamService {
	return &StreamService{client: client}
}

// CreateStreamParams carries the fields required to provision a stream.
type CreateStreamParams struct {
	TenantID    string
	StreamID    string
	AdapterType streamconfig.AdapterType
	Config      map[string]interface{}
	Schedule    string
}

// CreateStream provisions a new stream for a tenant.
func (s *StreamService) CreateStream(ctx context.Context, p CreateStreamParams) (*ent.StreamConfig, error) {
	if p.TenantID == "" {
		return nil, NewValidationError("tenant_id", "required")
	}
	if p.StreamID == "" {
		return nil, NewValidationError("stream_id", "required")
	}

	builder := s.client.StreamConfig.Create().
		SetTenantID(p.TenantID).
		SetStreamID(p.StreamID).
		SetAdapterType(p.AdapterType).
		SetEnabled(true)

	if p.Config != nil {
		builder = builder.SetConfigJSON(p.Config)
	}
	if p.Schedule != "" {
		builder = builder.SetSchedule(p.Schedule)
	}

	stream, err := builder.Save(ctx)
	if err != nil {
		if ent.IsConstraintError(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	return stream, nil
}

// GetStream retrieves a stream by tenant and stream id.
func (s *StreamService) GetStream(ctx context.Context, tenantID, streamID string) (*ent.StreamConfig, error) {
	stream, err := s.client.StreamConfig.Query().
		Where(streamconfig.TenantIDEQ(tenantID), streamconfig.StreamIDEQ(streamID)).
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get stream: %w", err)
	}
	return stream, nil
}

// ListEnabled returns every enabled stream, the population the Stream
// Manager (C6) assigns adapter instances from.
func (s *StreamService) ListEnabled(ctx context.Context) ([]*ent.StreamConfig, error) {
	streams, err := s.client.StreamConfig.Query().
		Where(streamconfig.EnabledEQ(true)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled streams: %w", err)
	}
	return streams, nil
}

// SetEnabled toggles a stream's enabled flag, used by the Review API to
// pause a misbehaving adapter without deleting its configuration.
func (s *StreamService) SetEnabled(ctx context.Context, id int, enabled bool) error {
	err := s.client.StreamConfig.UpdateOneID(id).
		SetEnabled(enabled).
		SetUpdatedAt(time.Now()).
		Exec(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to set stream enabled: %w", err)
	}
	return nil
}

// RecordFailure increments the stream's consecutive_failures counter and
// records the failure reason. The Stream Manager disables a stream once
// this crosses its configured threshold.
func (s *StreamService) RecordFailure(ctx context.Context, id int, reason string) (*ent.StreamConfig, error) {
	stream, err := s.client.StreamConfig.UpdateOneID(id).
		AddConsecutiveFailures(1).
		SetLastFailureReason(reason).
		SetUpdatedAt(time.Now()).
		Save(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to record stream failure: %w", err)
	}
	return stream, nil
}

// ResetFailures clears the consecutive-failure counter after a successful run.
func (s *StreamService) ResetFailures(ctx context.Context, id int) error {
	err := s.client.StreamConfig.UpdateOneID(id).
		SetConsecutiveFailures(0).
		ClearLastFailureReason().
		SetUpdatedAt(time.Now()).
		Exec(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to reset stream failures: %w", err)
	}
	return nil
}
