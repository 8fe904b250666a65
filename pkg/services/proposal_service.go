package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/ent/docproposal"
)

// ProposalService manages DocProposal rows: the reviewable unit the
// entire pipeline exists to produce. Once a proposal's batch_id is set
// it is frozen — every mutating method here re-checks that invariant
// before writing, returning ErrFrozen (the component contract's
// E_FROZEN) rather than silently applying the edit.
type ProposalService struct {
	client *ent.Client
}

// NewProposalService creates a new ProposalService.
func NewProposalService(client *ent.Client) *ProposalService {
	return &ProposalService{client: client}
}

// NewProposal carries the fields the generate step produces for one doc change.
type NewProposal struct {
	TenantID       string
	ConversationID string
	MessageIDs     []int
	Page           string
	UpdateType     docproposal.UpdateType
	Section        string
	Location       map[string]interface{}
	SuggestedText  string
	Reasoning      string
	Confidence     float64
}

// Create writes a new pending proposal, inside the orchestrator run's transaction.
func (s *ProposalService) Create(ctx context.Context, tx *ent.Tx, p NewProposal) (*ent.DocProposal, error) {
	client := s.client.DocProposal
	if tx != nil {
		client = tx.DocProposal
	}

	builder := client.Create().
		SetTenantID(p.TenantID).
		SetConversationID(p.ConversationID).
		SetMessageIdsJSON(p.MessageIDs).
		SetPage(p.Page).
		SetUpdateType(p.UpdateType).
		SetSuggestedText(p.SuggestedText).
		SetReasoning(p.Reasoning).
		SetConfidence(p.Confidence)

	if p.Section != "" {
		builder = builder.SetSection(p.Section)
	}
	if p.Location != nil {
		builder = builder.SetLocationJSON(p.Location)
	}

	row, err := builder.Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}
	return row, nil
}

// Get retrieves a proposal by id.
func (s *ProposalService) Get(ctx context.Context, id int) (*ent.DocProposal, error) {
	row, err := s.client.DocProposal.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	return row, nil
}

// ListPending returns a tenant's pending proposals for review.
func (s *ProposalService) ListPending(ctx context.Context, tenantID string) ([]*ent.DocProposal, error) {
	rows, err := s.client.DocProposal.Query().
		Where(docproposal.TenantIDEQ(tenantID), docproposal.StatusEQ(docproposal.StatusPending)).
		Order(ent.Asc(docproposal.FieldCreatedAt)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending proposals: %w", err)
	}
	return rows, nil
}

// ApprovedUnbatched returns a tenant's approved proposals not yet part
// of a ChangesetBatch, the candidate set for the next batch aggregation.
func (s *ProposalService) ApprovedUnbatched(ctx context.Context, tenantID string) ([]*ent.DocProposal, error) {
	rows, err := s.client.DocProposal.Query().
		Where(
			docproposal.TenantIDEQ(tenantID),
			docproposal.StatusEQ(docproposal.StatusApproved),
			docproposal.BatchIDIsNil(),
		).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved unbatched proposals: %w", err)
	}
	return rows, nil
}

// Approve marks a proposal approved, returning ErrFrozen if it is
// already part of a batch.
func (s *ProposalService) Approve(ctx context.Context, id int, reviewedBy string) (*ent.DocProposal, error) {
	return s.setStatus(ctx, id, docproposal.StatusApproved, reviewedBy)
}

// Ignore marks a proposal ignored with a discard reason, returning
// ErrFrozen if it is already part of a batch.
func (s *ProposalService) Ignore(ctx context.Context, id int, reviewedBy, discardReason string) (*ent.DocProposal, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.BatchID != nil {
		return nil, ErrFrozen
	}

	row, err := s.client.DocProposal.UpdateOneID(id).
		Where(docproposal.BatchIDIsNil()).
		SetStatus(docproposal.StatusIgnored).
		SetReviewedBy(reviewedBy).
		SetReviewedAt(time.Now()).
		SetDiscardReason(discardReason).
		Save(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrFrozen
		}
		return nil, fmt.Errorf("failed to ignore proposal: %w", err)
	}
	return row, nil
}

// ResetToPending reopens a reviewed (approved or ignored) proposal for
// review, clearing any discard reason. Combined with Approve, this
// produces the same final state as a direct Approve from pending (§8),
// so a reviewer can recover from an accidental ignore without the
// discard reason lingering on the now-pending row.
func (s *ProposalService) ResetToPending(ctx context.Context, id int, reviewedBy string) (*ent.DocProposal, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.BatchID != nil {
		return nil, ErrFrozen
	}

	row, err := s.client.DocProposal.UpdateOneID(id).
		Where(docproposal.BatchIDIsNil()).
		SetStatus(docproposal.StatusPending).
		SetReviewedBy(reviewedBy).
		SetReviewedAt(time.Now()).
		ClearDiscardReason().
		Save(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrFrozen
		}
		return nil, fmt.Errorf("failed to reset proposal to pending: %w", err)
	}
	return row, nil
}

func (s *ProposalService) setStatus(ctx context.Context, id int, status docproposal.Status, reviewedBy string) (*ent.DocProposal, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.BatchID != nil {
		return nil, ErrFrozen
	}

	row, err := s.client.DocProposal.UpdateOneID(id).
		Where(docproposal.BatchIDIsNil()).
		SetStatus(status).
		SetReviewedBy(reviewedBy).
		SetReviewedAt(time.Now()).
		Save(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			// Row exists but no longer matches BatchIDIsNil(): it was
			// batched concurrently between our read and this write.
			return nil, ErrFrozen
		}
		return nil, fmt.Errorf("failed to update proposal status: %w", err)
	}
	return row, nil
}

// ListByConversation returns every proposal for a tenant grouped by
// conversation_id, for the Review API's conversation listing (the
// conversation's displayed status is derived from this set — see
// api.conversationStatus).
func (s *ProposalService) ListByConversation(ctx context.Context, tenantID string) (map[string][]*ent.DocProposal, error) {
	rows, err := s.client.DocProposal.Query().
		Where(docproposal.TenantIDEQ(tenantID)).
		Order(ent.Asc(docproposal.FieldCreatedAt)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals by conversation: %w", err)
	}

	grouped := make(map[string][]*ent.DocProposal)
	for _, row := range rows {
		grouped[row.ConversationID] = append(grouped[row.ConversationID], row)
	}
	return grouped, nil
}

// Edit overwrites a pending proposal's suggested text with a
// human-edited version, returning ErrFrozen if it is already batched.
func (s *ProposalService) Edit(ctx context.Context, id int, editedText, editedBy string) (*ent.DocProposal, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.BatchID != nil {
		return nil, ErrFrozen
	}

	row, err := s.client.DocProposal.UpdateOneID(id).
		Where(docproposal.BatchIDIsNil()).
		SetEditedText(editedText).
		SetEditedBy(editedBy).
		SetEditedAt(time.Now()).
		Save(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrFrozen
		}
		return nil, fmt.Errorf("failed to edit proposal: %w", err)
	}
	return row, nil
}

// AssignBatch sets batch_id on a set of approved proposals, freezing
// them. Called only by BatchService.CreateBatch inside its transaction.
func (s *ProposalService) AssignBatch(ctx context.Context, tx *ent.Tx, ids []int, batchID string) error {
	client := s.client.DocProposal
	if tx != nil {
		client = tx.DocProposal
	}
	n, err := client.Update().
		Where(docproposal.IDIn(ids...), docproposal.BatchIDIsNil()).
		SetBatchID(batchID).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("failed to assign batch: %w", err)
	}
	if n != len(ids) {
		return fmt.Errorf("%w: %d of %d proposals were already batched", ErrFrozen, len(ids)-n, len(ids))
	}
	return nil
}

// SetPRApplicationStatus records how a frozen proposal fared when its
// batch's draft PR was assembled. This is the one mutation allowed on a
// frozen row, since it describes the batch operation itself rather than
// reopening review.
func (s *ProposalService) SetPRApplicationStatus(ctx context.Context, id int, status, applicationErr string) error {
	builder := s.client.DocProposal.UpdateOneID(id).SetPrApplicationStatus(status)
	if applicationErr != "" {
		builder = builder.SetPrApplicationError(applicationErr)
	}
	if err := builder.Exec(ctx); err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to set pr application status: %w", err)
	}
	return nil
}

// SetEnrichment attaches RAG-derived context and ruleset quality flags
// computed after generation, before the proposal is surfaced for review.
func (s *ProposalService) SetEnrichment(ctx context.Context, tx *ent.Tx, id int, enrichment map[string]interface{}, qualityFlags []string) error {
	client := s.client.DocProposal
	if tx != nil {
		client = tx.DocProposal
	}
	builder := client.UpdateOneID(id)
	if enrichment != nil {
		builder = builder.SetEnrichmentJSON(enrichment)
	}
	if qualityFlags != nil {
		builder = builder.SetQualityFlagsJSON(qualityFlags)
	}
	if err := builder.Exec(ctx); err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to set proposal enrichment: %w", err)
	}
	return nil
}
