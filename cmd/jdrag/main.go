// Command jdrag ingests job descriptions and answers questions about them.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/custodia-labs/jdrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/jdrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/jdrag/internal/adapters/driven/storage"
	"github.com/custodia-labs/jdrag/internal/adapters/driving/cli"
	"github.com/custodia-labs/jdrag/internal/core/domain"
	"github.com/custodia-labs/jdrag/internal/core/services"
	"github.com/custodia-labs/jdrag/internal/extractors"
	"github.com/custodia-labs/jdrag/internal/logger"
	"github.com/custodia-labs/jdrag/internal/postprocessors/chunker"
	"github.com/custodia-labs/jdrag/internal/retry"
)

// version is set by the linker: -ldflags "-X main.version=..."
var version = "dev"

// envLogFormat selects JSON logs when set to "json".
const envLogFormat = "JDRAG_LOG_FORMAT"

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	logger.Configure(logger.Options{JSON: os.Getenv(envLogFormat) == "json"})

	cli.SetVersion(version)
	cli.SetInitializer(initialize)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// initialize wires every service from the persisted settings. Only an
// unreadable config is fatal: without AI providers the document and settings
// commands still work, and without storage only settings does.
func initialize(ctx context.Context) (cli.Services, func(), error) {
	log := logger.L()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return cli.Services{}, nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	out := cli.Services{Settings: settingsService}

	settings, err := settingsService.Get()
	if err != nil {
		return cli.Services{}, nil, fmt.Errorf("loading settings: %w", err)
	}

	stores, err := storage.Open(ctx, settings.Storage, settings.Embedding.Dimensions)
	if err != nil {
		log.Warn("storage unavailable", zap.String("backend", string(settings.Storage.Backend)), zap.Error(err))
		return out, func() {}, nil
	}
	closers := []func(){func() {
		if err := stores.Close(); err != nil {
			log.Warn("closing storage", zap.Error(err))
		}
	}}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	out.Document = services.NewDocumentService(stores.Documents, stores.Vectors, log)

	aiServices, err := ai.Init(ctx, settings, false)
	if err != nil {
		log.Debug("AI providers not configured", zap.Error(err))
		return out, closeAll, nil
	}
	closers = append(closers, aiServices.Close)

	if err := wirePipeline(&out, settings, stores, aiServices, log); err != nil {
		log.Warn("invalid settings", zap.Error(err))
	}
	return out, closeAll, nil
}

func wirePipeline(
	out *cli.Services,
	settings *domain.AppSettings,
	stores *storage.Stores,
	aiServices *ai.InitResult,
	log *zap.Logger,
) error {
	prompts, err := file.NewPromptStore("")
	if err != nil {
		return err
	}

	textChunker, err := chunker.New(
		chunker.WithChunkSize(settings.Chunking.Size),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)
	if err != nil {
		return err
	}

	policy, err := retry.New(settings.Metadata.MaxAttempts, retry.Exponential(settings.Metadata.Backoff))
	if err != nil {
		return err
	}

	metadata := services.NewMetadataExtractor(aiServices.LLMService, prompts, policy, log)
	metadata.SetPrefixChars(settings.Metadata.PrefixChars)

	embeddings := services.NewEmbeddingOrchestrator(aiServices.EmbeddingService, log,
		services.WithWorkers(settings.Embedding.Workers),
		services.WithRequestsPerMinute(settings.Embedding.RequestsPerMinute),
	)

	registry := extractors.Default()
	out.Extensions = registry.SupportedExtensions()
	out.Ingest = services.NewIngestService(
		registry, textChunker, metadata, embeddings,
		stores.Documents, stores.Vectors, log,
	)

	composer := services.NewAnswerComposer(aiServices.LLMService, prompts, log)
	composer.SetMaxContextChars(settings.Retrieval.MaxContextChars)
	retriever := services.NewRetriever(embeddings, stores.Vectors, settings.Retrieval.CacheSize, log)
	out.Query = services.NewQueryService(retriever, composer, settings.Retrieval.TopK, log)
	return nil
}
