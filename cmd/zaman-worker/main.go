package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"zaman/internal/amqp"
	"zaman/internal/cache"
	"zaman/internal/cli"
	"zaman/internal/config"
	"zaman/internal/log"
	"zaman/internal/services"
	"zaman/internal/sheets"
	"zaman/internal/sheets/google"
	"zaman/internal/sheets/memory"
	"zaman/internal/worker"
)

const (
	memoryExportLimit = 1000
	shutdownTimeout   = 30 * time.Second
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentWorker)
	logger.Info("Starting zaman-worker")

	flush := cli.InitSentry(logger, cfg.SentryDSN, "zaman-worker")
	defer flush()

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	writer, err := newWriter(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}

	var runErr error
	if cfg.AMQPEnabled() {
		runErr = consume(ctx, cfg, writer, logger)
	} else {
		runErr = poll(ctx, cfg, writer, logger)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, runErr)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

// newWriter returns the Sheets client, or an in-memory log when no
// spreadsheet is configured.
func newWriter(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.TelemetryWriter, error) {
	if !cfg.SheetsEnabled() {
		logger.Info("Google Sheets disabled, exported events are only logged")
		return memory.New(memoryExportLimit, logger), nil
	}
	client, err := google.New(ctx, google.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}

// consume exports telemetry messages delivered over AMQP.
func consume(ctx context.Context, cfg *config.Config, writer sheets.TelemetryWriter, logger *log.Logger) error {
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer client.Close()

	tw := worker.NewTelemetryWorker(writer, logger)
	caches := cache.NewManager(logger)
	caches.Register(tw.Seen())
	caches.StartCleanup(time.Hour)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Consuming telemetry messages", "queue", cfg.AMQPQueue)
		return client.ConsumeTelemetry(gctx, tw.HandleMessage)
	})
	g.Go(func() error {
		<-gctx.Done()
		caches.Stop()
		caches.Wait()
		return nil
	})
	return g.Wait()
}

// poll exports the stored telemetry log when no broker is configured.
func poll(ctx context.Context, cfg *config.Config, writer sheets.TelemetryWriter, logger *log.Logger) error {
	if cfg.StorageBackend == config.BackendMemory {
		logger.Warn("Polling an in-memory store only exports this process's events")
	}
	res := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("Failed to close backend", log.FieldError, err)
		}
	}()

	processor := services.NewExportProcessor(res.Store, writer, services.ExportProcessorConfig{
		PollInterval: cfg.ExportInterval,
		BatchSize:    cfg.ExportBatchSize,
	}, logger)
	if err := processor.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	return processor.Stop(shutdownCtx)
}
