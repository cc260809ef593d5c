// Package telemetry records product-usage events to the key/value store and
// optionally fans them out to the export queue.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"zaman/internal/core"
	"zaman/internal/log"
	"zaman/internal/storage"
)

// StoreKey is the list holding the telemetry log.
const StoreKey = "zaman_telemetry"

// Publisher forwards stored events for export.
type Publisher interface {
	PublishTelemetry(ctx context.Context, ev core.TelemetryEvent) error
}

// KeySet remembers dedupe keys. Add reports whether key was new.
type KeySet interface {
	Add(key string) bool
}

// SeenKeys is an in-memory KeySet without expiry.
type SeenKeys struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewSeenKeys() *SeenKeys {
	return &SeenKeys{keys: make(map[string]struct{})}
}

func (s *SeenKeys) Add(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

func (s *SeenKeys) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

type Recorder struct {
	store     storage.Store
	publisher Publisher
	now       func() time.Time
	logger    *log.Logger
}

// NewRecorder returns a Recorder writing to store. publisher may be nil.
func NewRecorder(store storage.Store, publisher Publisher, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.Discard()
	}
	return &Recorder{
		store:     store,
		publisher: publisher,
		now:       time.Now,
		logger:    logger.WithComponent(log.ComponentTelemetry),
	}
}

// Track appends an event. payload may be nil, raw JSON or any value that
// encodes to JSON.
func (r *Recorder) Track(ctx context.Context, event string, payload any) (core.TelemetryEvent, error) {
	raw, err := encodePayload(payload)
	if err != nil {
		return core.TelemetryEvent{}, err
	}
	ev := core.TelemetryEvent{T: r.now().UnixMilli(), Event: event, Payload: raw}
	if err := ev.Validate(); err != nil {
		return core.TelemetryEvent{}, err
	}

	if err := storage.AppendJSON(ctx, r.store, StoreKey, ev); err != nil {
		return core.TelemetryEvent{}, fmt.Errorf("store telemetry: %w", err)
	}

	if r.publisher != nil {
		if err := r.publisher.PublishTelemetry(ctx, ev); err != nil {
			r.logger.WarnContext(ctx, "Failed to publish telemetry event, kept locally",
				log.FieldEvent, ev.Event,
				log.FieldError, err)
		}
	}
	return ev, nil
}

// Once tracks the event only the first time dedupeKey is seen in seen. It
// reports whether the event was recorded.
func (r *Recorder) Once(ctx context.Context, seen KeySet, dedupeKey, event string, payload any) (bool, error) {
	if !seen.Add(dedupeKey) {
		return false, nil
	}
	if _, err := r.Track(ctx, event, payload); err != nil {
		return false, err
	}
	return true, nil
}

// List returns the stored events, oldest first.
func (r *Recorder) List(ctx context.Context) ([]core.TelemetryEvent, error) {
	events, skipped, err := storage.ListJSON[core.TelemetryEvent](ctx, r.store, StoreKey)
	if err != nil {
		return nil, fmt.Errorf("list telemetry: %w", err)
	}
	if skipped > 0 {
		r.logger.WarnContext(ctx, "Skipped undecodable telemetry entries", log.FieldRows, skipped)
	}
	return events, nil
}

func encodePayload(payload any) (json.RawMessage, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		if len(p) == 0 {
			return nil, nil
		}
		return p, nil
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		return b, nil
	}
}
