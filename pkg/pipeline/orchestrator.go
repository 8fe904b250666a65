// Package pipeline implements the Pipeline Orchestrator (C8): the
// ordered, named-step run that turns one Batch Processor window into
// classifications, retrieved context, and reviewable documentation
// proposals. It is the Pipeline Runner the Batch Processor (C7) calls
// back into, modeled on the teacher's sequential stage loop
// (pkg/queue/executor.go's RealSessionExecutor.Execute).
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/ent/pipelinerunlog"
	"github.com/lionscraft/docpythia/ent/unifiedmessage"
	"github.com/lionscraft/docpythia/pkg/batch"
	"github.com/lionscraft/docpythia/pkg/config"
	"github.com/lionscraft/docpythia/pkg/llmgateway"
	"github.com/lionscraft/docpythia/pkg/ruleset"
	"github.com/lionscraft/docpythia/pkg/services"
	"github.com/lionscraft/docpythia/pkg/vectorstore"
)

// pipelineStep is one named, ordered unit of work. Steps mutate State
// in place and return an error only for failures that should abort the
// whole run; partial, per-item problems (an invalid proposal, a
// rejected draft) are recorded on the draft instead.
type pipelineStep struct {
	name  string
	run   func(ctx context.Context, o *Orchestrator, st *State) error
	count func(st *State) int
}

// Orchestrator runs the Pipeline Orchestrator's fixed eight-step set
// over one Batch Processor window. It implements batch.PipelineRunner.
type Orchestrator struct {
	client *ent.Client

	messages        *services.MessageService
	watermarks      *services.WatermarkService
	pipelineLog     *services.PipelineLogService
	classifications *services.ClassificationService
	proposals       *services.ProposalService
	ragContexts     *services.RAGContextService
	rulesets        *services.RulesetService
	docIndexes      *services.DocIndexService

	gateway       *llmgateway.Gateway
	vectors       *vectorstore.Store
	rulesetEngine *ruleset.Engine

	fullCfg *config.Config
	cfg     config.PipelineConfig
	batchCfg config.BatchingConfig

	steps  []pipelineStep
	logger *slog.Logger
}

// Dependencies groups the services and clients an Orchestrator needs,
// kept as one struct since the constructor otherwise takes a dozen
// positional arguments.
type Dependencies struct {
	Client          *ent.Client
	Messages        *services.MessageService
	Watermarks      *services.WatermarkService
	PipelineLog     *services.PipelineLogService
	Classifications *services.ClassificationService
	Proposals       *services.ProposalService
	RAGContexts     *services.RAGContextService
	Rulesets        *services.RulesetService
	DocIndexes      *services.DocIndexService
	Gateway         *llmgateway.Gateway
	Vectors         *vectorstore.Store
}

// New builds an Orchestrator over its dependencies and full
// configuration, so steps can reach tenant and doc-repo settings
// without threading them through every call.
func New(deps Dependencies, fullCfg *config.Config) *Orchestrator {
	o := &Orchestrator{
		client:          deps.Client,
		messages:        deps.Messages,
		watermarks:      deps.Watermarks,
		pipelineLog:     deps.PipelineLog,
		classifications: deps.Classifications,
		proposals:       deps.Proposals,
		ragContexts:     deps.RAGContexts,
		rulesets:        deps.Rulesets,
		docIndexes:      deps.DocIndexes,
		gateway:         deps.Gateway,
		vectors:         deps.Vectors,
		rulesetEngine:   ruleset.New(deps.Gateway),
		fullCfg:         fullCfg,
		cfg:             *fullCfg.Pipeline,
		batchCfg:        *fullCfg.Batching,
		logger:          slog.With("component", "pipeline_orchestrator"),
	}
	o.steps = []pipelineStep{
		{"filter", stepFilter, func(st *State) int { return len(st.ToClassify) }},
		{"classify", stepClassify, func(st *State) int { return len(st.Classified) }},
		{"enrich", stepEnrichRAG, func(st *State) int { return len(st.RAGByConversation) }},
		{"generate", stepGenerate, func(st *State) int { return len(st.Drafts) }},
		{"context-enrich", stepContextEnrich, func(st *State) int { return len(st.Drafts) }},
		{"ruleset-review", stepRulesetReview, func(st *State) int { return countSurviving(st.Drafts) }},
		{"validate", stepValidate, func(st *State) int { return countValid(st.Drafts) }},
		{"condense", stepCondense, func(st *State) int { return countValid(st.Drafts) }},
	}
	return o
}

func (o *Orchestrator) replyDepth() int {
	if o.batchCfg.MaxReplyChainDepth <= 0 {
		return 5
	}
	return o.batchCfg.MaxReplyChainDepth
}

func countSurviving(drafts []*proposalDraft) int {
	n := 0
	for _, d := range drafts {
		if !d.Rejected {
			n++
		}
	}
	return n
}

func countValid(drafts []*proposalDraft) int {
	n := 0
	for _, d := range drafts {
		if !d.Rejected && !d.Invalid {
			n++
		}
	}
	return n
}

// RunBatch implements batch.PipelineRunner. It runs every step
// in-memory first and only opens a database transaction once there is
// something to commit, so a mid-run failure — including context
// cancellation — commits none of the run's outputs and leaves the
// processing watermark unmoved: the next tick retries the same window.
// Such a run writes only its PipelineRunLog rows and, for a failure
// other than cancellation, the failure counts set by markBatchFailed.
func (o *Orchestrator) RunBatch(ctx context.Context, input batch.BatchInput) error {
	if len(input.BatchMessages) == 0 {
		return nil
	}
	tenantID := input.BatchMessages[0].TenantID

	st := newState(input, tenantID)

	tenantCfg, _ := o.fullCfg.Tenant(tenantID)
	st.TenantCfg = tenantCfg

	doc, err := o.rulesets.Get(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("pipeline: failed to load ruleset: %w", err)
	}
	st.Ruleset = ruleset.Parse(doc)

	root := ""
	if o.fullCfg.DocRepo != nil {
		root = o.fullCfg.DocRepo.RootPath
	}
	idx, err := o.resolveDocIndex(ctx, tenantID, root)
	if err != nil {
		return fmt.Errorf("pipeline: failed to resolve doc index: %w", err)
	}
	st.DocIndex = idx

	for _, step := range o.steps {
		if err := o.runStep(ctx, step, st, input); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				o.logger.Warn("pipeline run canceled, watermark unchanged", "run_id", st.RunID, "step", step.name)
				return err
			}
			o.markBatchFailed(ctx, input, err)
			return err
		}
	}

	return o.commit(ctx, st, input)
}

// runStep wraps one step with its PipelineRunLog row. The log write is
// best-effort and never masks the step's own error: a failed log write
// is recorded at warn level and the step's result stands.
func (o *Orchestrator) runStep(ctx context.Context, step pipelineStep, st *State, input batch.BatchInput) error {
	log, logErr := o.pipelineLog.StartStep(ctx, nil, st.RunID, st.TenantID, input.StreamID, step.name, len(input.BatchMessages))
	if logErr != nil {
		o.logger.Warn("failed to record pipeline step start", "step", step.name, "error", logErr)
	}

	runErr := step.run(ctx, o, st)

	if log != nil {
		status := pipelinerunlog.StatusSucceeded
		errDetail := ""
		if runErr != nil {
			status = pipelinerunlog.StatusFailed
			errDetail = runErr.Error()
		}
		if finErr := o.pipelineLog.FinishStep(ctx, nil, log.ID, status, step.count(st), errDetail); finErr != nil {
			o.logger.Warn("failed to record pipeline step finish", "step", step.name, "error", finErr)
		}
	}

	return runErr
}

// markBatchFailed increments failure_count and sets last_error on every
// message in the window so operators can see the batch needs attention.
// The watermark is left untouched and a message stays PENDING, visible to
// the next tick, until its failure_count reaches maxMessageFailures; it
// is then marked FAILED and no later batch picks it up.
func (o *Orchestrator) markBatchFailed(ctx context.Context, input batch.BatchInput, runErr error) {
	const maxMessageFailures = 5
	for _, m := range input.BatchMessages {
		update := o.client.UnifiedMessage.UpdateOneID(m.ID).
			AddFailureCount(1).
			SetLastError(runErr.Error())
		if m.FailureCount+1 >= maxMessageFailures {
			update = update.SetProcessingStatus(unifiedmessage.ProcessingStatusFAILED)
		}
		if err := update.Exec(ctx); err != nil {
			o.logger.Warn("failed to record batch failure on message", "message_id", m.ID, "error", err)
		}
	}
}

// commit writes every step's output — classifications, RAG contexts,
// conversation assignments, and valid proposals — in one transaction
// alongside the processing watermark advance, so a crash partway never
// leaves proposals without the watermark that gates their generation
// from recurring on the next tick.
func (o *Orchestrator) commit(ctx context.Context, st *State, input batch.BatchInput) error {
	tx, err := o.client.Tx(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: failed to start commit transaction: %w", err)
	}
	defer tx.Rollback()

	for _, cm := range st.Classified {
		if _, err := o.classifications.Create(ctx, tx, cm.Classification); err != nil {
			return fmt.Errorf("pipeline: failed to write classification for message %d: %w", cm.Message.ID, err)
		}
	}

	for _, conv := range input.Conversations {
		ids := make([]int, len(conv.Messages))
		for i, m := range conv.Messages {
			ids[i] = m.ID
		}
		if err := o.messages.AssignConversation(ctx, tx, ids, conv.ID); err != nil {
			return fmt.Errorf("pipeline: failed to assign conversation %s: %w", conv.ID, err)
		}
	}

	for convID, rag := range st.RAGByConversation {
		if err := o.ragContexts.Upsert(ctx, tx, convID, rag.Docs, rag.TotalTokens); err != nil {
			return fmt.Errorf("pipeline: failed to write rag context for conversation %s: %w", convID, err)
		}
	}

	for _, d := range st.Drafts {
		if d.Rejected || d.Invalid {
			continue
		}
		row, err := o.proposals.Create(ctx, tx, services.NewProposal{
			TenantID:       st.TenantID,
			ConversationID: d.ConversationID,
			MessageIDs:     d.MessageIDs,
			Page:           d.Proposal.Page,
			UpdateType:     docProposalUpdateType(d.Proposal.UpdateType),
			Section:        d.Proposal.Section,
			Location:       d.Proposal.Location,
			SuggestedText:  d.Proposal.SuggestedText,
			Reasoning:      d.Proposal.Reasoning,
			Confidence:     d.Proposal.Confidence,
		})
		if err != nil {
			return fmt.Errorf("pipeline: failed to write proposal for conversation %s: %w", d.ConversationID, err)
		}
		if err := o.proposals.SetEnrichment(ctx, tx, row.ID, d.Enrichment, d.QualityFlags); err != nil {
			return fmt.Errorf("pipeline: failed to set enrichment for proposal %d: %w", row.ID, err)
		}
	}

	for _, id := range st.SkipIDs {
		if err := o.messages.MarkStatus(ctx, tx, id, unifiedmessage.ProcessingStatusCOMPLETED, ""); err != nil {
			return fmt.Errorf("pipeline: failed to mark filtered message %d completed: %w", id, err)
		}
	}
	for _, m := range st.ToClassify {
		if err := o.messages.MarkStatus(ctx, tx, m.ID, unifiedmessage.ProcessingStatusCOMPLETED, ""); err != nil {
			return fmt.Errorf("pipeline: failed to mark message %d completed: %w", m.ID, err)
		}
	}

	if !input.AdvanceTo.IsZero() {
		if err := o.watermarks.AdvanceProcessingWatermark(ctx, tx, input.StreamID, input.AdvanceTo, st.RunID); err != nil {
			return fmt.Errorf("pipeline: failed to advance processing watermark: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pipeline: failed to commit run: %w", err)
	}

	o.logger.Info("pipeline run committed",
		"run_id", st.RunID, "stream_id", input.StreamID,
		"classifications", len(st.Classified), "proposals", countValid(st.Drafts))
	return nil
}
