package api

import (
	"net/http"
	"strconv"

	echo "github.com/labstack/echo/v5"

	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/ent/docproposal"
)

// conversationStatusPending/Changeset/Discarded are the three computed
// statuses GET /conversations filters on, derived from a conversation's
// proposal set per §7: a conversation is "changeset" once any of its
// proposals has been aggregated into a batch, "discarded" when none of
// its proposals is still live (every one ignored, or no proposals at
// all), and "pending" otherwise.
const (
	conversationStatusPending   = "pending"
	conversationStatusChangeset = "changeset"
	conversationStatusDiscarded = "discarded"
)

// listConversationsHandler handles GET /conversations.
func (s *Server) listConversationsHandler(c *echo.Context) error {
	tenantID := c.QueryParam("tenant_id")
	if tenantID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tenant_id is required")
	}

	wantStatus := c.QueryParam("status")
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = n
	}

	grouped, err := s.proposals.ListByConversation(c.Request().Context(), tenantID)
	if err != nil {
		return mapServiceError(err)
	}

	views := make([]conversationView, 0, len(grouped))
	for conversationID, proposals := range grouped {
		status := conversationStatus(proposals)
		if wantStatus != "" && status != wantStatus {
			continue
		}

		proposalViews := make([]proposalView, len(proposals))
		for i, p := range proposals {
			proposalViews[i] = toProposalView(p)
		}

		views = append(views, conversationView{
			ConversationID: conversationID,
			TenantID:       tenantID,
			Status:         status,
			Proposals:      proposalViews,
		})
	}

	total := len(views)
	if limit > 0 && len(views) > limit {
		views = views[:limit]
	}

	return c.JSON(http.StatusOK, envelope{
		Data:       views,
		Pagination: &pagination{Limit: limit, Offset: 0, Total: total},
	})
}

// conversationStatus derives a conversation's review status from its
// proposal set.
func conversationStatus(proposals []*ent.DocProposal) string {
	anyBatched := false
	anyLive := false
	for _, p := range proposals {
		if p.BatchID != nil {
			anyBatched = true
		}
		if p.Status != docproposal.StatusIgnored {
			anyLive = true
		}
	}
	switch {
	case anyBatched:
		return conversationStatusChangeset
	case !anyLive:
		return conversationStatusDiscarded
	default:
		return conversationStatusPending
	}
}
