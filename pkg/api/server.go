// Package api implements the Review API (C10): the read-mostly HTTP
// surface reviewers and the scheduler's downstream tooling use to see
// and act on what the pipeline has produced.
package api

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/lionscraft/docpythia/pkg/config"
	"github.com/lionscraft/docpythia/pkg/database"
	"github.com/lionscraft/docpythia/pkg/services"
	"github.com/lionscraft/docpythia/pkg/streammanager"
)

// Server is the Review API's HTTP server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server
	cfg        *config.Config

	proposals *services.ProposalService
	batches   *services.BatchService
	rulesets  *services.RulesetService
	cache     *services.LLMCacheService
	db        *stdsql.DB

	streams *streammanager.Manager // nil if Telegram webhook route isn't mounted
	prs     PRCollaborator         // nil until set
}

// NewServer creates a new Review API server with Echo v5 and registers
// its routes. Services required by every handler are passed in up
// front; optional integrations are wired afterwards via Set* methods.
// db is the raw connection GET /health pings, matching the teacher's own
// handler, which checks the store it owns rather than external services.
func NewServer(
	cfg *config.Config,
	proposals *services.ProposalService,
	batches *services.BatchService,
	rulesets *services.RulesetService,
	cache *services.LLMCacheService,
	db *stdsql.DB,
) *Server {
	e := echo.New()

	s := &Server{
		echo:      e,
		cfg:       cfg,
		proposals: proposals,
		batches:   batches,
		rulesets:  rulesets,
		cache:     cache,
		db:        db,
	}

	s.setupRoutes()
	return s
}

// SetStreamManager wires the Stream Manager so the Telegram webhook
// route (§4.5) can dispatch an incoming update to the right bot_push_chat
// adapter instance. Without it, the webhook route responds 503.
func (s *Server) SetStreamManager(mgr *streammanager.Manager) {
	s.streams = mgr
}

// SetPRCollaborator wires the external PR collaborator that
// POST /batches/:id/generate-pr hands a submitted changeset off to.
// Without it, that endpoint responds 503.
func (s *Server) SetPRCollaborator(pr PRCollaborator) {
	s.prs = pr
}

// ValidateWiring checks that every service required at construction is
// non-nil. Optional integrations (stream manager, PR collaborator) are
// deliberately not checked here — a deployment may run the Review API
// read-only, without a configured documentation repo to publish to.
func (s *Server) ValidateWiring() error {
	var errs []error
	if s.proposals == nil {
		errs = append(errs, fmt.Errorf("proposals service not set"))
	}
	if s.batches == nil {
		errs = append(errs, fmt.Errorf("batches service not set"))
	}
	if s.rulesets == nil {
		errs = append(errs, fmt.Errorf("rulesets service not set"))
	}
	if s.cache == nil {
		errs = append(errs, fmt.Errorf("cache service not set"))
	}
	if s.db == nil {
		errs = append(errs, fmt.Errorf("database connection not set"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("server wiring incomplete: %w", errors.Join(errs...))
	}
	return nil
}

// setupRoutes registers every route. Health and the Telegram webhook are
// unauthenticated; everything under /api/v1 requires an admin credential
// per §4.10, matching the teacher's pattern of mounting non-admin routes
// (health, websocket) alongside the admin API on one Echo instance.
func (s *Server) setupRoutes() {
	s.echo.Use(middleware.BodyLimit(2 * 1024 * 1024))
	s.echo.Use(securityHeaders())
	if s.cfg.API != nil && len(s.cfg.API.CORSOrigins) > 0 {
		s.echo.Use(corsAllowlist(s.cfg.API.CORSOrigins))
	}

	s.echo.GET("/health", s.healthHandler)
	s.echo.POST("/telegram/webhook/:stream_id", s.telegramWebhookHandler)

	admin := s.echo.Group("/api/v1", s.requireAdmin)

	admin.GET("/conversations", s.listConversationsHandler)

	admin.PATCH("/proposals/:id", s.patchProposalHandler)
	admin.POST("/proposals/:id/status", s.setProposalStatusHandler)

	admin.POST("/batches", s.createBatchHandler)
	admin.POST("/batches/:id/generate-pr", s.generatePRHandler)
	admin.GET("/batches/history", s.batchHistoryHandler)

	admin.GET("/rulesets/:tenant_id", s.getRulesetHandler)
	admin.PUT("/rulesets/:tenant_id", s.putRulesetHandler)

	admin.GET("/llm-cache", s.searchCacheHandler)
}

// healthHandler handles GET /health. Unauthenticated. It checks the
// database, docpythia's own component, the same way it pings the server
// itself; it deliberately does not reach out to the LLM Gateway or the
// vector store, both external dependencies, so an orchestrator's
// liveness probe never flaps on a degraded downstream provider.
func (s *Server) healthHandler(c *echo.Context) error {
	stats := s.cfg.Stats()

	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp := &HealthResponse{
		Status:      "healthy",
		SeedStreams: stats.SeedStreams,
		LLMTiers:    stats.LLMTiers,
		Database:    "healthy",
	}

	httpStatus := http.StatusOK
	if _, err := database.Health(reqCtx, s.db); err != nil {
		resp.Status = "unhealthy"
		resp.Database = fmt.Sprintf("unhealthy: %v", err)
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, resp)
}

// telegramWebhookHandler handles POST /telegram/webhook/:stream_id,
// decoding the body as a tgbotapi.Update and handing it to the
// registered bot_push_chat adapter for that stream.
func (s *Server) telegramWebhookHandler(c *echo.Context) error {
	if s.streams == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "telegram webhook not configured")
	}

	streamID := c.Param("stream_id")
	bot, ok := s.streams.BotPushChatAdapter(streamID)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown or non-bot-push stream")
	}

	var update tgbotapi.Update
	if err := c.Bind(&update); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed update body")
	}

	if err := bot.HandleUpdate(c.Request().Context(), update); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusOK)
}

// Start starts the HTTP server on the given address (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.echo}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener.
// Used by test infrastructure to serve on a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
