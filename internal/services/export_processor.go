package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"zaman/internal/core"
	"zaman/internal/log"
	"zaman/internal/sheets"
	"zaman/internal/storage"
	"zaman/internal/telemetry"
)

// KeyExportCursor holds the number of telemetry log entries already exported.
const KeyExportCursor = "zaman_telemetry_export_cursor"

// ExportProcessorConfig holds configuration for the export processor
type ExportProcessorConfig struct {
	// PollInterval is how often to check for new events (default: 10s)
	PollInterval time.Duration

	// BatchSize is the max number of events written per append (default: 10)
	BatchSize int

	// MaxRetries is how many times a failing batch is attempted before it is
	// skipped (default: 3)
	MaxRetries int
}

func DefaultExportProcessorConfig() ExportProcessorConfig {
	return ExportProcessorConfig{
		PollInterval: 10 * time.Second,
		BatchSize:    10,
		MaxRetries:   3,
	}
}

// ExportProcessor copies the stored telemetry log to an export destination.
// It reads the log directly from the store, so it also covers events whose
// AMQP message was never delivered.
type ExportProcessor struct {
	store  storage.Store
	writer sheets.TelemetryWriter
	config ExportProcessorConfig
	logger *log.Logger

	attempts int

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewExportProcessor(store storage.Store, writer sheets.TelemetryWriter, config ExportProcessorConfig, logger *log.Logger) *ExportProcessor {
	def := DefaultExportProcessorConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = def.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = def.BatchSize
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = def.MaxRetries
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &ExportProcessor{
		store:  store,
		writer: writer,
		config: config,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *ExportProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("export processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	p.logger.InfoContext(ctx, "Export processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)
	return nil
}

// Stop gracefully stops the processor and waits for the current batch.
func (p *ExportProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		p.logger.InfoContext(ctx, "Export processor stopped gracefully")
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Export processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

func (p *ExportProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *ExportProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.drain(ctx)
	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.drain(ctx)
		}
	}
}

// drain exports full batches until the log is caught up or a batch fails.
func (p *ExportProcessor) drain(ctx context.Context) {
	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		n, err := p.ProcessBatch(ctx)
		if err != nil || n < p.config.BatchSize {
			return
		}
	}
}

// ProcessBatch exports the next batch and returns how many log entries it
// consumed. A batch that keeps failing is skipped after MaxRetries attempts.
func (p *ExportProcessor) ProcessBatch(ctx context.Context) (int, error) {
	cursor, err := p.cursor(ctx)
	if err != nil {
		return 0, err
	}
	raw, err := p.store.List(ctx, telemetry.StoreKey)
	if err != nil {
		return 0, fmt.Errorf("list telemetry: %w", err)
	}
	if cursor > len(raw) {
		// The log shrank underneath us; start over.
		p.logger.WarnContext(ctx, "Export cursor past end of log, resetting", "cursor", cursor, "len", len(raw))
		cursor = 0
	}
	if cursor == len(raw) {
		return 0, nil
	}

	end := min(cursor+p.config.BatchSize, len(raw))
	batch := make([]core.TelemetryEvent, 0, end-cursor)
	for _, r := range raw[cursor:end] {
		var ev core.TelemetryEvent
		if err := json.Unmarshal([]byte(r), &ev); err != nil || ev.Validate() != nil {
			p.logger.WarnContext(ctx, "Skipping malformed telemetry entry", log.FieldError, err)
			continue
		}
		batch = append(batch, ev)
	}

	ref, err := p.writer.AppendEvents(ctx, batch)
	if err != nil {
		p.attempts++
		p.logger.WarnContext(ctx, "Telemetry export failed",
			"cursor", cursor,
			"attempt", p.attempts,
			log.FieldError, err)
		if p.attempts < p.config.MaxRetries {
			return 0, err
		}
		p.logger.ErrorContext(ctx, "Telemetry batch dropped after max retries",
			"cursor", cursor,
			"size", end-cursor)
	}
	p.attempts = 0

	if err := p.setCursor(ctx, end); err != nil {
		return 0, err
	}
	if ref != "" {
		p.logger.InfoContext(ctx, "Exported telemetry batch", "count", len(batch), "ref", ref)
	}
	return end - cursor, nil
}

// Pending returns how many stored events have not been exported yet.
func (p *ExportProcessor) Pending(ctx context.Context) (int, error) {
	cursor, err := p.cursor(ctx)
	if err != nil {
		return 0, err
	}
	raw, err := p.store.List(ctx, telemetry.StoreKey)
	if err != nil {
		return 0, fmt.Errorf("list telemetry: %w", err)
	}
	if cursor > len(raw) {
		return len(raw), nil
	}
	return len(raw) - cursor, nil
}

func (p *ExportProcessor) cursor(ctx context.Context) (int, error) {
	var c int
	err := storage.GetJSON(ctx, p.store, KeyExportCursor, &c)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read export cursor: %w", err)
	}
	return c, nil
}

func (p *ExportProcessor) setCursor(ctx context.Context, c int) error {
	if err := p.store.Set(ctx, KeyExportCursor, strconv.Itoa(c)); err != nil {
		return fmt.Errorf("save export cursor: %w", err)
	}
	return nil
}
