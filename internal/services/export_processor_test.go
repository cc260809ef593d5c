package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"zaman/internal/core"
	"zaman/internal/sheets/memory"
	"zaman/internal/storage"
	"zaman/internal/telemetry"
)

type flakyWriter struct {
	fails int
	calls int
	inner *memory.Store
}

func (w *flakyWriter) AppendEvents(ctx context.Context, events []core.TelemetryEvent) (string, error) {
	w.calls++
	if w.calls <= w.fails {
		return "", errors.New("sheets unavailable")
	}
	return w.inner.AppendEvents(ctx, events)
}

func seedTelemetry(t *testing.T, store storage.Store, n int) {
	t.Helper()
	rec := telemetry.NewRecorder(store, nil, nil)
	for i := 0; i < n; i++ {
		if _, err := rec.Track(context.Background(), "event", map[string]int{"i": i}); err != nil {
			t.Fatalf("Track: %v", err)
		}
	}
}

func TestDefaultExportProcessorConfig(t *testing.T) {
	config := DefaultExportProcessorConfig()

	if config.PollInterval != 10*time.Second {
		t.Errorf("expected PollInterval 10s, got %v", config.PollInterval)
	}
	if config.BatchSize != 10 {
		t.Errorf("expected BatchSize 10, got %d", config.BatchSize)
	}
	if config.MaxRetries != 3 {
		t.Errorf("expected MaxRetries 3, got %d", config.MaxRetries)
	}
}

func TestNewExportProcessor_FillsDefaults(t *testing.T) {
	p := NewExportProcessor(storage.NewMemoryStore(), memory.New(0, nil), ExportProcessorConfig{BatchSize: 20}, nil)

	if p.config.BatchSize != 20 {
		t.Errorf("expected custom BatchSize 20, got %d", p.config.BatchSize)
	}
	if p.config.PollInterval != 10*time.Second || p.config.MaxRetries != 3 {
		t.Errorf("expected defaults for unset fields, got %+v", p.config)
	}
}

func TestExportProcessor_ProcessBatch(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	writer := memory.New(0, nil)
	seedTelemetry(t, store, 5)

	p := NewExportProcessor(store, writer, ExportProcessorConfig{BatchSize: 2}, nil)

	for _, want := range []int{2, 2, 1, 0} {
		n, err := p.ProcessBatch(ctx)
		if err != nil {
			t.Fatalf("ProcessBatch: %v", err)
		}
		if n != want {
			t.Errorf("expected %d entries, got %d", want, n)
		}
	}

	if writer.Total() != 5 {
		t.Errorf("expected 5 exported events, got %d", writer.Total())
	}
	pending, err := p.Pending(ctx)
	if err != nil || pending != 0 {
		t.Errorf("expected nothing pending, got %d (%v)", pending, err)
	}

	seedTelemetry(t, store, 1)
	pending, _ = p.Pending(ctx)
	if pending != 1 {
		t.Errorf("expected 1 pending, got %d", pending)
	}
}

func TestExportProcessor_SkipsMalformedEntries(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	writer := memory.New(0, nil)
	seedTelemetry(t, store, 1)
	if err := store.Append(ctx, telemetry.StoreKey, "not json"); err != nil {
		t.Fatal(err)
	}
	seedTelemetry(t, store, 1)

	p := NewExportProcessor(store, writer, ExportProcessorConfig{BatchSize: 10}, nil)
	n, err := p.ProcessBatch(ctx)
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if n != 3 {
		t.Errorf("expected cursor to move over 3 entries, got %d", n)
	}
	if writer.Total() != 2 {
		t.Errorf("expected 2 exported events, got %d", writer.Total())
	}
}

func TestExportProcessor_RetriesThenSkips(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	seedTelemetry(t, store, 2)

	w := &flakyWriter{fails: 3, inner: memory.New(0, nil)}
	p := NewExportProcessor(store, w, ExportProcessorConfig{BatchSize: 1, MaxRetries: 3}, nil)

	for i := 0; i < 2; i++ {
		if _, err := p.ProcessBatch(ctx); err == nil {
			t.Fatalf("attempt %d: expected error", i+1)
		}
	}
	pending, _ := p.Pending(ctx)
	if pending != 2 {
		t.Fatalf("cursor must not move before max retries, pending=%d", pending)
	}

	// Third failure drops the batch.
	n, err := p.ProcessBatch(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected dropped batch to advance cursor, n=%d err=%v", n, err)
	}

	n, err = p.ProcessBatch(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected next batch to export, n=%d err=%v", n, err)
	}
	if w.inner.Total() != 1 {
		t.Errorf("expected 1 exported event, got %d", w.inner.Total())
	}
}

func TestExportProcessor_StartStop(t *testing.T) {
	store := storage.NewMemoryStore()
	writer := memory.New(0, nil)
	seedTelemetry(t, store, 3)

	p := NewExportProcessor(store, writer, ExportProcessorConfig{PollInterval: 10 * time.Millisecond, BatchSize: 2}, nil)
	if p.IsRunning() {
		t.Error("processor should not be running initially")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := p.Start(ctx); err == nil {
		t.Error("expected error when starting already running processor")
	}

	deadline := time.Now().Add(2 * time.Second)
	for writer.Total() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if writer.Total() != 3 {
		t.Errorf("expected 3 exported events, got %d", writer.Total())
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if p.IsRunning() {
		t.Error("processor should not be running after Stop")
	}
}

func TestExportProcessor_StopNotRunning(t *testing.T) {
	p := NewExportProcessor(storage.NewMemoryStore(), memory.New(0, nil), DefaultExportProcessorConfig(), nil)
	if err := p.Stop(context.Background()); err != nil {
		t.Errorf("Stop should not error when not running: %v", err)
	}
}
