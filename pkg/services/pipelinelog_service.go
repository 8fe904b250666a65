package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/ent/pipelinerunlog"
)

// PipelineLogService manages PipelineRunLog rows: one row per named step
// of one Pipeline Orchestrator (C8) run.
type PipelineLogService struct {
	client *ent.Client
}

// NewPipelineLogService creates a new PipelineLogService.
func NewPipelineLogService(client *ent.Client) *PipelineLogService {
	return &PipelineLogService{client: client}
}

// StartStep records the start of one orchestrator step, inside tx when one is given.
func (s *PipelineLogService) StartStep(ctx context.Context, tx *ent.Tx, runID, tenantID, streamID, step string, inputCount int) (*ent.PipelineRunLog, error) {
	client := s.client.PipelineRunLog
	if tx != nil {
		client = tx.PipelineRunLog
	}

	row, err := client.Create().
		SetRunID(runID).
		SetTenantID(tenantID).
		SetStreamID(streamID).
		SetStep(step).
		SetStatus(pipelinerunlog.StatusStarted).
		SetInputCount(inputCount).
		SetStartedAt(time.Now()).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start pipeline step: %w", err)
	}
	return row, nil
}

// FinishStep records the terminal status of a started step.
func (s *PipelineLogService) FinishStep(ctx context.Context, tx *ent.Tx, id int, status pipelinerunlog.Status, outputCount int, errDetail string) error {
	client := s.client.PipelineRunLog
	if tx != nil {
		client = tx.PipelineRunLog
	}

	builder := client.UpdateOneID(id).
		SetStatus(status).
		SetOutputCount(outputCount).
		SetFinishedAt(time.Now())
	if errDetail != "" {
		builder = builder.SetErrorDetail(errDetail)
	}

	if err := builder.Exec(ctx); err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to finish pipeline step: %w", err)
	}
	return nil
}

// ByRunID returns every step logged for one orchestrator run, in order.
func (s *PipelineLogService) ByRunID(ctx context.Context, runID string) ([]*ent.PipelineRunLog, error) {
	rows, err := s.client.PipelineRunLog.Query().
		Where(pipelinerunlog.RunIDEQ(runID)).
		Order(ent.Asc(pipelinerunlog.FieldStartedAt)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pipeline run log: %w", err)
	}
	return rows, nil
}
