package services

import (
	"context"
	"fmt"

	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/ent/messageragcontext"
)

// RAGContextService manages MessageRagContext rows: the retrieved-docs
// snapshot computed once per conversation during the enrich(RAG) step.
type RAGContextService struct {
	client *ent.Client
}

// NewRAGContextService creates a new RAGContextService.
func NewRAGContextService(client *ent.Client) *RAGContextService {
	return &RAGContextService{client: client}
}

// RetrievedDoc is one entry of a MessageRagContext's retrieved_docs_json.
type RetrievedDoc struct {
	Path    string  `json:"path"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet"`
}

// Upsert writes (or replaces) the RAG context for a conversation.
func (s *RAGContextService) Upsert(ctx context.Context, tx *ent.Tx, conversationID string, docs []RetrievedDoc, totalTokens int) error {
	client := s.client.MessageRagContext
	if tx != nil {
		client = tx.MessageRagContext
	}

	docMaps := make([]map[string]interface{}, len(docs))
	for i, d := range docs {
		docMaps[i] = map[string]interface{}{
			"path":    d.Path,
			"score":   d.Score,
			"snippet": d.Snippet,
		}
	}

	err := client.Create().
		SetConversationID(conversationID).
		SetRetrievedDocsJSON(docMaps).
		SetTotalTokens(totalTokens).
		OnConflictColumns(messageragcontext.FieldConversationID).
		UpdateRetrievedDocsJSON().
		UpdateTotalTokens().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert rag context: %w", err)
	}
	return nil
}

// ByConversationID returns the RAG context for a conversation, if any
// was computed.
func (s *RAGContextService) ByConversationID(ctx context.Context, conversationID string) (*ent.MessageRagContext, error) {
	row, err := s.client.MessageRagContext.Query().
		Where(messageragcontext.ConversationIDEQ(conversationID)).
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get rag context: %w", err)
	}
	return row, nil
}
