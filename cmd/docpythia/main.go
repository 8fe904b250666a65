// docpythia is the documentation-pipeline service: it ingests chat and
// file-drop streams, batches and classifies them, drafts documentation
// proposals through the LLM Gateway and Ruleset Engine, and serves the
// Review API reviewers act on.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lionscraft/docpythia/ent/streamconfig"
	"github.com/lionscraft/docpythia/pkg/adapters"
	"github.com/lionscraft/docpythia/pkg/api"
	"github.com/lionscraft/docpythia/pkg/batch"
	"github.com/lionscraft/docpythia/pkg/bus"
	"github.com/lionscraft/docpythia/pkg/config"
	"github.com/lionscraft/docpythia/pkg/database"
	"github.com/lionscraft/docpythia/pkg/llmgateway"
	"github.com/lionscraft/docpythia/pkg/netcfg"
	"github.com/lionscraft/docpythia/pkg/pipeline"
	"github.com/lionscraft/docpythia/pkg/scheduler"
	"github.com/lionscraft/docpythia/pkg/services"
	"github.com/lionscraft/docpythia/pkg/streammanager"
	"github.com/lionscraft/docpythia/pkg/vectorstore"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "Path to configuration directory")
	flag.Parse()

	if err := run(*configDir); err != nil {
		slog.Error("docpythia exited with error", "error", err)
		os.Exit(1)
	}
}

func run(configDir string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Initialize(ctx, configDir)
	if err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}
	stats := cfg.Stats()
	slog.Info("configuration loaded", "seed_streams", stats.SeedStreams, "llm_tiers", stats.LLMTiers)

	dbCfg, err := database.LoadConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}
	dbClient, err := database.NewClient(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			slog.Error("error closing database client", "error", err)
		}
	}()
	slog.Info("connected to database")

	client := dbClient.Client

	messages := services.NewMessageService(client)
	watermarks := services.NewWatermarkService(client)
	pipelineLog := services.NewPipelineLogService(client)
	classifications := services.NewClassificationService(client)
	proposals := services.NewProposalService(client)
	ragContexts := services.NewRAGContextService(client)
	rulesets := services.NewRulesetService(client)
	docIndexes := services.NewDocIndexService(client)
	streams := services.NewStreamService(client)
	batches := services.NewBatchService(client, proposals)
	cache := services.NewLLMCacheService(client)

	httpClient := netcfg.NewHTTPClient(60 * time.Second)

	fastTier, ok := cfg.LLM.Tiers[config.ModelTierFast]
	if !ok {
		return fmt.Errorf("llm gateway: no %s tier configured", config.ModelTierFast)
	}
	gateway, err := llmgateway.New(*cfg.LLM, cache, httpClient, os.Getenv(fastTier.APIKeyEnv))
	if err != nil {
		return fmt.Errorf("failed to build llm gateway: %w", err)
	}

	var vectors *vectorstore.Store
	if cfg.VectorStore != nil {
		var embedAPIKey string
		if cfg.LLM.EmbeddingAPIKey != "" {
			embedAPIKey = os.Getenv(cfg.LLM.EmbeddingAPIKey)
		}
		vectors, err = vectorstore.New(*cfg.VectorStore, gateway, cfg.LLM.EmbeddingModel, embedAPIKey)
		if err != nil {
			return fmt.Errorf("failed to connect to vector store: %w", err)
		}
	}

	orchestrator := pipeline.New(pipeline.Dependencies{
		Client:          client,
		Messages:        messages,
		Watermarks:      watermarks,
		PipelineLog:     pipelineLog,
		Classifications: classifications,
		Proposals:       proposals,
		RAGContexts:     ragContexts,
		Rulesets:        rulesets,
		DocIndexes:      docIndexes,
		Gateway:         gateway,
		Vectors:         vectors,
	}, cfg)

	processor := batch.New(messages, watermarks, *cfg.Batching, orchestrator)

	sink := &adapters.Sink{Messages: messages, Watermarks: watermarks}
	if cfg.Kafka != nil && cfg.Kafka.Enabled {
		publisher, err := bus.NewKafkaPublisher(*cfg.Kafka)
		if err != nil {
			return fmt.Errorf("failed to build kafka bus publisher: %w", err)
		}
		sink.Bus = publisher
		slog.Info("kafka bus fan-out enabled", "topic", cfg.Kafka.Topic)
	}
	streamMgr := streammanager.New(streams, sink, 0)

	if err := seedStreams(ctx, streams, cfg.Streams); err != nil {
		return fmt.Errorf("failed to seed configured streams: %w", err)
	}
	if err := streamMgr.LoadEnabled(ctx); err != nil {
		return fmt.Errorf("failed to load enabled streams: %w", err)
	}

	sched, err := scheduler.New(cfg.Scheduler)
	if err != nil {
		return fmt.Errorf("failed to build scheduler: %w", err)
	}
	if err := sched.RegisterStreamPollers(streamMgr); err != nil {
		return fmt.Errorf("failed to register stream poll jobs: %w", err)
	}
	batchSchedule := ""
	if cfg.Scheduler != nil {
		batchSchedule = cfg.Scheduler.Schedule
	}
	if err := sched.RegisterBatchTick(streamMgr, processor, batchSchedule); err != nil {
		return fmt.Errorf("failed to register batch tick job: %w", err)
	}
	sched.Start()

	server := api.NewServer(cfg, proposals, batches, rulesets, cache, dbClient.DB())
	server.SetStreamManager(streamMgr)
	if cfg.DocRepo != nil && cfg.DocRepo.PRWebhookURL != "" {
		server.SetPRCollaborator(api.NewWebhookPRCollaborator(cfg.DocRepo, cfg.DocRepo.PRWebhookURL, httpClient))
	}
	if err := server.ValidateWiring(); err != nil {
		return fmt.Errorf("review api wiring incomplete: %w", err)
	}

	serverErrs := make(chan error, 1)
	go func() {
		slog.Info("review api listening", "addr", cfg.API.ListenAddr)
		if err := server.Start(cfg.API.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrs <- err
			return
		}
		serverErrs <- nil
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-serverErrs:
		if err != nil {
			slog.Error("review api server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("error shutting down review api", "error", err)
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		slog.Error("error stopping scheduler", "error", err)
	}
	streamMgr.Shutdown(shutdownCtx)

	slog.Info("docpythia stopped gracefully")
	return nil
}

// seedStreams provisions every stream declared in docpythia.yaml that
// doesn't already have a StreamConfig row, so a fresh tenant comes up
// with its initial streams without a manual Review API call.
func seedStreams(ctx context.Context, streamSvc *services.StreamService, seeds []config.StreamSeedConfig) error {
	for _, seed := range seeds {
		_, err := streamSvc.CreateStream(ctx, services.CreateStreamParams{
			TenantID:    seed.TenantID,
			StreamID:    seed.StreamID,
			AdapterType: streamconfig.AdapterType(seed.AdapterType),
			Config:      seed.Config,
			Schedule:    seed.Schedule,
		})
		if err != nil && !errors.Is(err, services.ErrAlreadyExists) {
			return fmt.Errorf("stream %s/%s: %w", seed.TenantID, seed.StreamID, err)
		}
	}
	return nil
}
