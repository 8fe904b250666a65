package pipeline

import (
	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/pkg/batch"
	"github.com/lionscraft/docpythia/pkg/config"
	"github.com/lionscraft/docpythia/pkg/docindex"
	"github.com/lionscraft/docpythia/pkg/ruleset"
	"github.com/lionscraft/docpythia/pkg/services"
)

// classifiedMessage pairs a batch message with the classification drawn
// for it, kept in memory until the run's final commit.
type classifiedMessage struct {
	Message        *ent.UnifiedMessage
	Classification services.NewClassification
}

// ragResult is one conversation's retrieved-docs snapshot.
type ragResult struct {
	Docs        []services.RetrievedDoc
	TotalTokens int
}

// proposalDraft is one candidate documentation change as it moves
// through generate, context-enrich, ruleset-review, validate, and
// condense, before any of it touches the database.
type proposalDraft struct {
	ConversationID string
	MessageIDs     []int
	Proposal       ruleset.Proposal
	Enrichment     map[string]interface{}
	QualityFlags   []string
	Rejected       bool
	RejectReason   string
	Invalid        bool
	InvalidReason  string
}

// State carries one orchestrator run's working data from step to step.
// Nothing here is persisted until RunBatch's single closing transaction;
// a step that returns an error leaves the run's outputs and the
// processing watermark unwritten (only the PipelineRunLog rows and the
// batch messages' failure counts are recorded).
type State struct {
	Input    batch.BatchInput
	TenantID string
	RunID    string

	TenantCfg config.TenantConfig
	Ruleset   ruleset.Ruleset
	DocIndex  docindex.Index

	// messageConversation maps a message's id to the conversation it was
	// grouped into by the Batch Processor, built once from Input.Conversations.
	messageConversation map[int]string

	ToClassify []*ent.UnifiedMessage
	SkipIDs    []int

	Classified             []classifiedMessage
	ValuableByConversation map[string][]classifiedMessage
	RAGByConversation      map[string]ragResult

	Drafts []*proposalDraft
}

func newState(input batch.BatchInput, tenantID string) *State {
	st := &State{
		Input:                  input,
		TenantID:               tenantID,
		RunID:                  input.BatchID,
		messageConversation:    make(map[int]string),
		ValuableByConversation: make(map[string][]classifiedMessage),
		RAGByConversation:      make(map[string]ragResult),
	}
	for _, conv := range input.Conversations {
		for _, m := range conv.Messages {
			st.messageConversation[m.ID] = conv.ID
		}
	}
	return st
}

func (st *State) conversationOf(messageID int) string {
	return st.messageConversation[messageID]
}
