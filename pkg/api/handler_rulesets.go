package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/lionscraft/docpythia/pkg/services"
)

// getRulesetHandler handles GET /rulesets/:tenant_id.
func (s *Server) getRulesetHandler(c *echo.Context) error {
	tenantID := c.Param("tenant_id")
	document, err := s.rulesets.Get(c.Request().Context(), tenantID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, envelope{Data: rulesetResponse{TenantID: tenantID, Document: document}})
}

// putRulesetHandler handles PUT /rulesets/:tenant_id.
func (s *Server) putRulesetHandler(c *echo.Context) error {
	tenantID := c.Param("tenant_id")

	var req putRulesetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if tenantID == "" {
		return mapServiceError(services.NewValidationError("tenant_id", "is required"))
	}

	if err := s.rulesets.Upsert(c.Request().Context(), tenantID, req.Document); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, envelope{Data: rulesetResponse{TenantID: tenantID, Document: req.Document}})
}
