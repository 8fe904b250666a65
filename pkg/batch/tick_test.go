package batch

import (
	"context"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"github.com/lionscraft/docpythia/ent"
	"github.com/lionscraft/docpythia/pkg/config"
	"github.com/lionscraft/docpythia/pkg/services"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// newTestEntClient starts a real PostgreSQL container, matching the
// pattern used for every other ent-backed integration test in this repo.
func newTestEntClient(t *testing.T) *ent.Client {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	drv, err := sql.Open(dialect.Postgres, connStr)
	require.NoError(t, err)

	entClient := ent.NewClient(ent.Driver(drv))
	require.NoError(t, entClient.Schema.Create(ctx))
	t.Cleanup(func() { entClient.Close() })

	return entClient
}

type recordingRunner struct {
	inputs []BatchInput
}

func (r *recordingRunner) RunBatch(_ context.Context, input BatchInput) error {
	r.inputs = append(r.inputs, input)
	return nil
}

func TestTickBootstrapsWatermarkWhenWindowNotElapsed(t *testing.T) {
	client := newTestEntClient(t)
	ctx := context.Background()

	messages := services.NewMessageService(client)
	watermarks := services.NewWatermarkService(client)
	runner := &recordingRunner{}

	_, err := client.UnifiedMessage.Create().
		SetTenantID("acme").SetStreamID("s1").SetMessageID("m1").
		SetTimestamp(time.Now().Add(-time.Hour)).SetAuthor("alice").
		SetContent("hello").SetRawData("{}").
		Save(ctx)
	require.NoError(t, err)

	proc := New(messages, watermarks, *config.DefaultBatchingConfig(), runner)
	require.NoError(t, proc.Tick(ctx, "s1"))

	wm, err := watermarks.GetProcessingWatermark(ctx, "s1")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(-time.Hour), wm.WatermarkTime, 5*time.Second)

	if len(runner.inputs) != 0 {
		t.Errorf("expected no pipeline run since the 24h batch window hasn't elapsed, got %d", len(runner.inputs))
	}
}

func TestTickAdvancesWatermarkOnEmptyWindow(t *testing.T) {
	client := newTestEntClient(t)
	ctx := context.Background()

	messages := services.NewMessageService(client)
	watermarks := services.NewWatermarkService(client)
	runner := &recordingRunner{}

	old := time.Now().Add(-48 * time.Hour)
	_, err := client.UnifiedMessage.Create().
		SetTenantID("acme").SetStreamID("s1").SetMessageID("m1").
		SetTimestamp(old.Add(-time.Hour)).SetAuthor("alice").
		SetContent("hello").SetRawData("{}").
		Save(ctx)
	require.NoError(t, err)

	require.NoError(t, watermarks.AdvanceProcessingWatermark(ctx, nil, "s1", old, ""))

	proc := New(messages, watermarks, *config.DefaultBatchingConfig(), runner)
	require.NoError(t, proc.Tick(ctx, "s1"))

	wm, err := watermarks.GetProcessingWatermark(ctx, "s1")
	require.NoError(t, err)
	if !wm.WatermarkTime.After(old) {
		t.Errorf("expected watermark to advance past the empty window, stayed at %v", wm.WatermarkTime)
	}
	if len(runner.inputs) != 0 {
		t.Errorf("expected no pipeline run on an empty window, got %d", len(runner.inputs))
	}
}

func TestTickRunsPipelineForNonEmptyWindow(t *testing.T) {
	client := newTestEntClient(t)
	ctx := context.Background()

	messages := services.NewMessageService(client)
	watermarks := services.NewWatermarkService(client)
	runner := &recordingRunner{}

	wmTime := time.Now().Add(-48 * time.Hour)
	require.NoError(t, watermarks.AdvanceProcessingWatermark(ctx, nil, "s1", wmTime, ""))

	_, err := client.UnifiedMessage.Create().
		SetTenantID("acme").SetStreamID("s1").SetMessageID("m1").
		SetTimestamp(wmTime.Add(time.Hour)).SetAuthor("alice").
		SetContent("hello").SetRawData("{}").
		Save(ctx)
	require.NoError(t, err)

	proc := New(messages, watermarks, *config.DefaultBatchingConfig(), runner)
	require.NoError(t, proc.Tick(ctx, "s1"))

	if len(runner.inputs) != 1 {
		t.Fatalf("expected exactly one pipeline run, got %d", len(runner.inputs))
	}
	input := runner.inputs[0]
	if len(input.BatchMessages) != 1 {
		t.Errorf("expected 1 batch message, got %d", len(input.BatchMessages))
	}
	if input.AdvanceTo.IsZero() {
		t.Errorf("expected a non-zero AdvanceTo for a fully-processed window")
	}
	if len(input.Conversations) != 1 {
		t.Errorf("expected messages grouped into 1 conversation, got %d", len(input.Conversations))
	}
}
