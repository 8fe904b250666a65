package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/lionscraft/docpythia/pkg/services"
)

// stepEnrichRAG retrieves candidate documentation pages for every
// conversation with at least one doc-valuable message, one embed plus
// vector search call per conversation against the union of its message
// text and the search criteria classify produced.
func stepEnrichRAG(ctx context.Context, o *Orchestrator, st *State) error {
	for convID, classified := range st.ValuableByConversation {
		query := ragQuery(classified)
		if query == "" {
			continue
		}

		vec, err := o.vectors.Embed(ctx, query)
		if err != nil {
			return fmt.Errorf("pipeline: failed to embed rag query for conversation %s: %w", convID, err)
		}

		hits, err := o.vectors.Search(ctx, st.TenantID, vec, o.cfg.RAGTopK, "docpage")
		if err != nil {
			return fmt.Errorf("pipeline: rag search failed for conversation %s: %w", convID, err)
		}

		docs := make([]services.RetrievedDoc, 0, len(hits))
		var snippets strings.Builder
		for _, h := range hits {
			path, _ := h.Metadata["path"].(string)
			if path == "" {
				path = h.Key
			}
			snippet, _ := h.Metadata["snippet"].(string)
			docs = append(docs, services.RetrievedDoc{Path: path, Score: h.Score, Snippet: snippet})
			snippets.WriteString(snippet)
		}

		st.RAGByConversation[convID] = ragResult{
			Docs:        docs,
			TotalTokens: o.gateway.EstimateTokens(snippets.String()),
		}
	}
	return nil
}

// ragQuery unions each valuable message's content with its classified
// search criteria, the retrieval text the spec calls for.
func ragQuery(classified []classifiedMessage) string {
	var parts []string
	for _, c := range classified {
		parts = append(parts, c.Message.Content)
		parts = append(parts, c.Classification.RAGSearchCriteria...)
	}
	return strings.Join(parts, " ")
}
