package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/ent/changesetbatch"
)

// BatchService manages ChangesetBatch rows: the aggregation of approved,
// now-frozen proposals submitted together as one draft PR.
type BatchService struct {
	client    *ent.Client
	proposals *ProposalService
}

// NewBatchService creates a new BatchService.
func NewBatchService(client *ent.Client, proposals *ProposalService) *BatchService {
	return &BatchService{client: client, proposals: proposals}
}

// CreateBatch aggregates a tenant's approved, unbatched proposals into a
// new ChangesetBatch: it freezes every proposal (setting batch_id) and
// writes the batch row in a single transaction, so a crash between the
// two is impossible.
func (s *BatchService) CreateBatch(ctx context.Context, tenantID string, proposals []*ent.DocProposal) (*ent.ChangesetBatch, error) {
	if len(proposals) == 0 {
		return nil, NewValidationError("proposals", "at least one approved proposal is required")
	}

	batchID := uuid.New().String()
	ids := make([]int, len(proposals))
	fileSet := map[string]bool{}
	for i, p := range proposals {
		ids[i] = p.ID
		fileSet[p.Page] = true
	}
	affectedFiles := make([]string, 0, len(fileSet))
	for f := range fileSet {
		affectedFiles = append(affectedFiles, f)
	}

	tx, err := s.client.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	batch, err := tx.ChangesetBatch.Create().
		SetID(batchID).
		SetTenantID(tenantID).
		SetAffectedFilesJSON(affectedFiles).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}

	if err := s.proposals.AssignBatch(ctx, tx, ids, batchID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit batch creation: %w", err)
	}

	return batch, nil
}

// Get retrieves a batch by id.
func (s *BatchService) Get(ctx context.Context, id string) (*ent.ChangesetBatch, error) {
	row, err := s.client.ChangesetBatch.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}
	return row, nil
}

// ListPending returns batches awaiting PR submission.
func (s *BatchService) ListPending(ctx context.Context, tenantID string) ([]*ent.ChangesetBatch, error) {
	rows, err := s.client.ChangesetBatch.Query().
		Where(changesetbatch.TenantIDEQ(tenantID), changesetbatch.StatusEQ(changesetbatch.StatusPending)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending batches: %w", err)
	}
	return rows, nil
}

// History returns a tenant's submitted batches, newest first: the
// immutable record reviewers consult after a batch has gone out as a PR.
func (s *BatchService) History(ctx context.Context, tenantID string, limit int) ([]*ent.ChangesetBatch, error) {
	q := s.client.ChangesetBatch.Query().
		Where(changesetbatch.TenantIDEQ(tenantID), changesetbatch.StatusEQ(changesetbatch.StatusSubmitted)).
		Order(ent.Desc(changesetbatch.FieldSubmittedAt))
	if limit > 0 {
		q = q.Limit(limit)
	}
	rows, err := q.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list batch history: %w", err)
	}
	return rows, nil
}

// MarkSubmitted records a successful draft PR submission.
func (s *BatchService) MarkSubmitted(ctx context.Context, id, prURL string) error {
	err := s.client.ChangesetBatch.UpdateOneID(id).
		SetStatus(changesetbatch.StatusSubmitted).
		SetPrURL(prURL).
		SetSubmittedAt(time.Now()).
		Exec(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to mark batch submitted: %w", err)
	}
	return nil
}

// MarkFailed records a failed draft PR submission, leaving the batch in
// place for a retry rather than re-exposing its proposals for review.
func (s *BatchService) MarkFailed(ctx context.Context, id, submissionErr string) error {
	err := s.client.ChangesetBatch.UpdateOneID(id).
		SetStatus(changesetbatch.StatusFailed).
		SetSubmissionError(submissionErr).
		Exec(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to mark batch failed: %w", err)
	}
	return nil
}
