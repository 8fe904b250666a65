package services

import (
	"context"
	"fmt"

	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/ent/messageclassification"
)

// ClassificationService manages MessageClassification rows: the FAST-tier
// categorization result for a message, zero-or-one per message.
type ClassificationService struct {
	client *ent.Client
}

// NewClassificationService creates a new ClassificationService.
func NewClassificationService(client *ent.Client) *ClassificationService {
	return &ClassificationService{client: client}
}

// NewClassification carries the fields written after the classify step.
type NewClassification struct {
	MessageID         int
	BatchID           string
	Category          messageclassification.Category
	DocValueReason    string
	SuggestedDocPage  string
	RAGSearchCriteria []string
	ModelUsed         string
}

// Create writes a classification row for a message, inside the
// orchestrator run's transaction.
func (s *ClassificationService) Create(ctx context.Context, tx *ent.Tx, c NewClassification) (*ent.MessageClassification, error) {
	client := s.client.MessageClassification
	if tx != nil {
		client = tx.MessageClassification
	}

	builder := client.Create().
		SetMessageID(c.MessageID).
		SetBatchID(c.BatchID).
		SetCategory(c.Category).
		SetDocValueReason(c.DocValueReason).
		SetModelUsed(c.ModelUsed)

	if c.SuggestedDocPage != "" {
		builder = builder.SetSuggestedDocPage(c.SuggestedDocPage)
	}
	if c.RAGSearchCriteria != nil {
		builder = builder.SetRagSearchCriteriaJSON(c.RAGSearchCriteria)
	}

	row, err := builder.Save(ctx)
	if err != nil {
		if ent.IsConstraintError(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create classification: %w", err)
	}
	return row, nil
}

// ByMessageID returns the classification for a message, if any.
func (s *ClassificationService) ByMessageID(ctx context.Context, messageID int) (*ent.MessageClassification, error) {
	row, err := s.client.MessageClassification.Query().
		Where(messageclassification.MessageIDEQ(messageID)).
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get classification: %w", err)
	}
	return row, nil
}

// ByBatch returns every classification written during one orchestrator
// run, keyed by run_id-derived batch identifier.
func (s *ClassificationService) ByBatch(ctx context.Context, batchID string) ([]*ent.MessageClassification, error) {
	rows, err := s.client.MessageClassification.Query().
		Where(messageclassification.BatchIDEQ(batchID)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list classifications by batch: %w", err)
	}
	return rows, nil
}

// DocValueCategories are categories whose doc_value_reason marks them
// worth carrying into the RAG/generate steps; PipelineOrchestrator
// filters on this set after classification.
var DocValueCategories = []messageclassification.Category{
	messageclassification.CategoryInformation,
	messageclassification.CategoryTroubleshooting,
	messageclassification.CategoryUpdate,
	messageclassification.CategoryTutorial,
	messageclassification.CategoryQuestionWithAnswer,
}
