package api

import (
	"net/http"
	"strconv"

	echo "github.com/labstack/echo/v5"

	"github.com/lionscraft/docpythia/ent/docproposal"
	"github.com/lionscraft/docpythia/pkg/services"
)

// patchProposalHandler handles PATCH /proposals/:id.
func (s *Server) patchProposalHandler(c *echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id must be an integer")
	}

	var req patchProposalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if req.SuggestedText == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "suggested_text is required")
	}

	editedBy := req.EditedBy
	if editedBy == "" {
		editedBy = extractReviewer(c)
	}

	row, err := s.proposals.Edit(c.Request().Context(), id, req.SuggestedText, editedBy)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, envelope{Data: toProposalView(row)})
}

// setProposalStatusHandler handles POST /proposals/:id/status.
func (s *Server) setProposalStatusHandler(c *echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id must be an integer")
	}

	var req setProposalStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	reviewedBy := req.ReviewedBy
	if reviewedBy == "" {
		reviewedBy = extractReviewer(c)
	}

	ctx := c.Request().Context()

	switch req.Status {
	case string(docproposal.StatusApproved):
		p, err := s.proposals.Approve(ctx, id, reviewedBy)
		if err != nil {
			return mapServiceError(err)
		}
		return c.JSON(http.StatusOK, envelope{Data: toProposalView(p)})
	case string(docproposal.StatusIgnored):
		p, err := s.proposals.Ignore(ctx, id, reviewedBy, req.Reason)
		if err != nil {
			return mapServiceError(err)
		}
		return c.JSON(http.StatusOK, envelope{Data: toProposalView(p)})
	case string(docproposal.StatusPending):
		// Idempotent reset to pending: re-review an already-approved or
		// ignored proposal. Frozen (batched) proposals still reject via
		// the same ErrFrozen path every other transition uses.
		p, err := s.proposals.ResetToPending(ctx, id, reviewedBy)
		if err != nil {
			return mapServiceError(err)
		}
		return c.JSON(http.StatusOK, envelope{Data: toProposalView(p)})
	default:
		return mapServiceError(services.NewValidationError("status", "must be one of approved, ignored, pending"))
	}
}
