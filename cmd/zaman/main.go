package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"zaman/internal/assistant"
	"zaman/internal/cache"
	"zaman/internal/catalog"
	"zaman/internal/cli"
	"zaman/internal/core"
	apphttp "zaman/internal/http"
	"zaman/internal/llm"
	"zaman/internal/log"
	"zaman/internal/services"
	"zaman/internal/telemetry"
)

var version = "dev"

const (
	catalogTTL       = 5 * time.Minute
	cacheCleanup     = time.Minute
	shutdownTimeout  = 30 * time.Second
	catalogCacheSize = 16
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentApp)

	flush := cli.InitSentry(logger, cfg.SentryDSN, "zaman@"+version)
	defer flush()

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	res := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("Failed to close backend", log.FieldError, err)
		}
	}()

	recorder := telemetry.NewRecorder(res.Store, res.Publisher, logger)

	caches := cache.NewManager(logger)
	catalogCache := cache.NewLRUCache[[]core.Product](catalogCacheSize, catalogTTL)
	caches.Register(catalogCache)
	caches.StartCleanup(cacheCleanup)
	defer func() {
		caches.Stop()
		caches.Wait()
	}()
	products := catalog.NewLoader(cfg.DataDir, catalogCache, logger)

	deps := apphttp.Deps{
		Catalog:   products,
		Profile:   services.NewProfileService(res.Store, recorder, logger),
		Telemetry: recorder,
		Ready:     res,
	}

	client, err := llm.NewOpenAIClient(llm.Config{
		BaseURL:        cfg.LLMBaseURL,
		APIKey:         cfg.LLMAPIKey,
		Model:          cfg.LLMModel,
		EmbeddingModel: cfg.LLMEmbeddingModel,
		Timeout:        cfg.LLMTimeout,
		MaxRetries:     cfg.LLMMaxRetries,
	}, logger)
	if err != nil {
		logger.Warn("Assistant disabled", log.FieldError, err)
	} else {
		var retriever assistant.Retriever
		if cfg.RAGEnabled {
			retriever = assistant.NewEmbeddingRetriever(client, products)
			logger.Info("Product retrieval enabled", "embedding_model", cfg.LLMEmbeddingModel)
		}
		deps.Assistant = assistant.NewService(client, products, retriever, logger)
	}

	srv := apphttp.NewServer(":"+cfg.Port, deps, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Sentry:             cfg.SentryDSN != "",
		Logger:             logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting zaman server",
			"port", cfg.Port,
			"backend", cfg.StorageBackend,
			"assistant", deps.Assistant != nil,
			"version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
