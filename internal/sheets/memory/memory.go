package memory

import (
	"context"
	"fmt"
	"sync"

	"zaman/internal/core"
	"zaman/internal/log"
	ports "zaman/internal/sheets"
)

var (
	_ ports.TelemetryWriter = (*Store)(nil)
	_ ports.TelemetryReader = (*Store)(nil)
)

// Store keeps exported events in memory, keeping at most limit of the most
// recent ones. It stands in for the spreadsheet when none is configured and
// logs every event it receives.
type Store struct {
	mu     sync.Mutex
	limit  int
	items  []core.TelemetryEvent
	total  int
	logger *log.Logger
}

// New returns a Store. limit <= 0 keeps everything; logger may be nil.
func New(limit int, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{limit: limit, logger: logger.WithComponent(log.ComponentSheets)}
}

// AppendEvents stores the events and returns a synthetic row reference.
func (s *Store) AppendEvents(ctx context.Context, events []core.TelemetryEvent) (string, error) {
	for _, ev := range events {
		if err := ev.Validate(); err != nil {
			return "", err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(events) == 0 {
		return "", nil
	}
	first := s.total + 1
	for _, ev := range events {
		s.logger.InfoContext(ctx, "Telemetry event exported",
			log.FieldEvent, ev.Event,
			"t", ev.T,
			"payload", string(ev.Payload))
	}
	s.items = append(s.items, events...)
	s.total += len(events)
	if s.limit > 0 && len(s.items) > s.limit {
		s.items = append([]core.TelemetryEvent(nil), s.items[len(s.items)-s.limit:]...)
	}
	return fmt.Sprintf("mem:%d-%d", first, s.total), nil
}

// ListEvents returns the retained events, oldest first.
func (s *Store) ListEvents(_ context.Context) ([]core.TelemetryEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.TelemetryEvent(nil), s.items...), nil
}

// Total is the number of events ever appended.
func (s *Store) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}
