package adapters

import (
	"context"
	"log/slog"
	"time"

	"github.com/lionscraft/docpythia/pkg/services"
)

// BusPublisher fans newly ingested messages out to an external message
// bus, decoupling delivery from the Store's ingestion path. Optional: a
// nil Sink.Bus just means no stream has bus fan-out configured.
type BusPublisher interface {
	Publish(ctx context.Context, tenantID, streamID string, msgs []NormalizedMessage) error
}

// Sink is the subset of the Store (C1) every adapter writes through:
// watermark-gated ingestion with per-(stream_id, resource_id) dedup state.
// Adapters never touch *ent.Client directly, matching how C5 only knows
// about the Store's contract, not its storage engine.
type Sink struct {
	Messages   *services.MessageService
	Watermarks *services.WatermarkService
	Bus        BusPublisher
}

// IngestBatch writes a batch of normalized messages for one stream and
// advances the stream's import watermark for the given resource, in that
// order, so a crash between the two just re-imports a few already-deduped
// rows on the next run rather than losing the watermark advance.
func (s *Sink) IngestBatch(ctx context.Context, tenantID, streamID string, msgs []NormalizedMessage, resourceID string, lastImportedTime time.Time, lastImportedID string, complete bool) (int, error) {
	converted := make([]services.NewMessage, len(msgs))
	for i, m := range msgs {
		converted[i] = services.NewMessage{
			TenantID:     tenantID,
			StreamID:     streamID,
			MessageID:    m.MessageID,
			Timestamp:    time.Unix(m.Timestamp, 0).UTC(),
			Author:       m.Author,
			Content:      m.Content,
			Channel:      m.Channel,
			RawData:      m.RawData,
			MetadataJSON: m.MetadataJSON,
		}
	}

	n, err := s.Messages.IngestMessages(ctx, converted)
	if err != nil {
		return 0, err
	}

	if err := s.Watermarks.AdvanceImportWatermark(ctx, streamID, resourceID, lastImportedTime, lastImportedID, complete); err != nil {
		return n, err
	}

	if s.Bus != nil {
		if err := s.Bus.Publish(ctx, tenantID, streamID, msgs); err != nil {
			slog.Warn("bus publish failed, store ingestion already committed",
				"stream_id", streamID, "error", err)
		}
	}

	return n, nil
}
