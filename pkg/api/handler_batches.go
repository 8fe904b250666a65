package api

import (
	"net/http"
	"strconv"

	echo "github.com/labstack/echo/v5"

	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/pkg/services"
)

// createBatchHandler handles POST /batches. The caller names exactly
// which approved proposals to aggregate; any that have since been
// batched by a concurrent request fail the whole call with ErrFrozen
// rather than silently dropping them from the batch.
func (s *Server) createBatchHandler(c *echo.Context) error {
	tenantID := c.QueryParam("tenant_id")
	if tenantID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tenant_id is required")
	}

	var req createBatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if len(req.ProposalIDs) == 0 {
		return mapServiceError(services.NewValidationError("proposal_ids", "at least one proposal id is required"))
	}

	ctx := c.Request().Context()
	proposals := make([]*ent.DocProposal, 0, len(req.ProposalIDs))
	for _, id := range req.ProposalIDs {
		p, err := s.proposals.Get(ctx, id)
		if err != nil {
			return mapServiceError(err)
		}
		proposals = append(proposals, p)
	}

	batch, err := s.batches.CreateBatch(ctx, tenantID, proposals)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, envelope{Data: toBatchView(batch)})
}

// generatePRHandler handles POST /batches/:id/generate-pr: it hands the
// batch off to the configured external PR collaborator and records the
// outcome on both the batch and its constituent proposals.
func (s *Server) generatePRHandler(c *echo.Context) error {
	if s.prs == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no pr collaborator configured")
	}

	batchID := c.Param("id")
	var req generatePRRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	ctx := c.Request().Context()
	batch, err := s.batches.Get(ctx, batchID)
	if err != nil {
		return mapServiceError(err)
	}

	tenantCfg, _ := s.cfg.Tenant(batch.TenantID)

	changes := make([]ProposalChange, 0, len(req.ProposalIDs))
	for _, id := range req.ProposalIDs {
		p, err := s.proposals.Get(ctx, id)
		if err != nil {
			return mapServiceError(err)
		}
		text := p.SuggestedText
		if p.EditedText != nil {
			text = *p.EditedText
		}
		section := ""
		if p.Section != nil {
			section = *p.Section
		}
		changes = append(changes, ProposalChange{
			ProposalID:    p.ID,
			Page:          p.Page,
			UpdateType:    string(p.UpdateType),
			Section:       section,
			Location:      p.LocationJSON,
			SuggestedText: text,
		})
	}

	submission := ChangesetSubmission{
		TenantID:      batch.TenantID,
		BatchID:       batch.ID,
		GitURL:        tenantCfg.DocumentationGitURL,
		BaseBranch:    tenantCfg.DocumentationGitBranch,
		ForkURL:       tenantCfg.PRTargetForkURL,
		Title:         req.PRTitle,
		Body:          req.PRBody,
		AffectedFiles: batch.AffectedFilesJSON,
		Proposals:     changes,
	}

	prURL, submitErr := s.prs.SubmitChangeset(ctx, submission)
	if submitErr != nil {
		_ = s.batches.MarkFailed(ctx, batchID, submitErr.Error())
		return mapServiceError(submitErr)
	}

	if err := s.batches.MarkSubmitted(ctx, batchID, prURL); err != nil {
		return mapServiceError(err)
	}
	for _, id := range req.ProposalIDs {
		_ = s.proposals.SetPRApplicationStatus(ctx, id, "applied", "")
	}

	updated, err := s.batches.Get(ctx, batchID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, envelope{Data: toBatchView(updated)})
}

// batchHistoryHandler handles GET /batches/history.
func (s *Server) batchHistoryHandler(c *echo.Context) error {
	tenantID := c.QueryParam("tenant_id")
	if tenantID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tenant_id is required")
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = n
	}

	rows, err := s.batches.History(c.Request().Context(), tenantID, limit)
	if err != nil {
		return mapServiceError(err)
	}

	views := make([]batchView, len(rows))
	for i, b := range rows {
		views[i] = toBatchView(b)
	}
	return c.JSON(http.StatusOK, envelope{Data: views, Pagination: &pagination{Limit: limit, Offset: 0, Total: len(views)}})
}
