package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zaman/internal/amqp"
	"zaman/internal/cache"
	"zaman/internal/core"
	"zaman/internal/log"
	"zaman/internal/sheets"
)

const (
	seenSize = 10000
	seenTTL  = 24 * time.Hour
)

// TelemetryWorker exports telemetry messages consumed from AMQP.
type TelemetryWorker struct {
	writer sheets.TelemetryWriter
	seen   *cache.LRUCache[struct{}]
	logger *log.Logger
}

func NewTelemetryWorker(writer sheets.TelemetryWriter, logger *log.Logger) *TelemetryWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &TelemetryWorker{
		writer: writer,
		seen:   cache.NewLRUCache[struct{}](seenSize, seenTTL),
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// Seen exposes the redelivery filter so it can be registered for cleanup.
func (w *TelemetryWorker) Seen() cache.Cleaner {
	return w.seen
}

// HandleMessage writes one telemetry message. Messages whose ID was already
// exported are acknowledged without writing again.
func (w *TelemetryWorker) HandleMessage(ctx context.Context, msg *amqp.TelemetryMessage) error {
	if msg == nil {
		return errors.New("nil telemetry message")
	}
	if msg.ID != "" {
		if _, dup := w.seen.Get(msg.ID); dup {
			w.logger.DebugContext(ctx, "Skipping redelivered message", "id", msg.ID)
			return nil
		}
	}

	ev := msg.TelemetryEvent()
	if err := ev.Validate(); err != nil {
		// Retrying cannot fix a malformed event.
		w.logger.WarnContext(ctx, "Dropping invalid telemetry message", "id", msg.ID, log.FieldError, err)
		return nil
	}

	ref, err := w.writer.AppendEvents(ctx, []core.TelemetryEvent{ev})
	if err != nil {
		return fmt.Errorf("append telemetry: %w", err)
	}
	if msg.ID != "" {
		w.seen.Set(msg.ID, struct{}{})
	}

	w.logger.InfoContext(ctx, "Exported telemetry event",
		"id", msg.ID,
		log.FieldEvent, msg.Event,
		"ref", ref,
		"latency_ms", time.Since(msg.Timestamp).Milliseconds())
	return nil
}
