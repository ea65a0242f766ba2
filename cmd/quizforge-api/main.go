// Package main provides the QuizForge API server entrypoint.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	gcstorage "cloud.google.com/go/storage"
	"github.com/joho/godotenv"

	"github.com/atlasedu/quizforge/internal/cache"
	"github.com/atlasedu/quizforge/internal/config"
	"github.com/atlasedu/quizforge/internal/extract"
	"github.com/atlasedu/quizforge/internal/llm"
	"github.com/atlasedu/quizforge/internal/objectstore"
	"github.com/atlasedu/quizforge/internal/observability"
	"github.com/atlasedu/quizforge/internal/ocr"
	"github.com/atlasedu/quizforge/internal/pipeline"
	"github.com/atlasedu/quizforge/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if len(os.Args) > 2 && os.Args[1] == "--config" {
		cfgPath = os.Args[2]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("database", cfg.Database.Driver).
		Str("cache", cfg.Cache.Driver).
		Msg("Starting QuizForge API")

	ctx := context.Background()

	db, err := storage.Open(ctx, cfg.Database.Driver, cfg.DatabaseDSN(), storage.OpenOptions{
		MaxOpenConns:    cfg.Database.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Database.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := storage.EnsureSchema(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to apply schema")
	}

	repos := storage.NewRepositories(db)
	gateway := storage.NewGateway(repos)

	cacheClient := newCacheClient(cfg, logger)
	defer cacheClient.Close()
	checkpoints := pipeline.NewCheckpointStore(cacheClient, cfg.Cache.TTL)

	deps := pipeline.Dependencies{
		Extractor:  extract.NewService(cfg.Pipeline.MinContentLength),
		Summarizer: newSummarizer(cfg, logger),
		Generator:  newGenerator(cfg, logger),
		Store:      gateway,
		Documents:  gateway,
		OCR:        newOCRClient(cfg, logger),
		Uploader:   newUploader(ctx, cfg, logger),
	}

	orchestrator := pipeline.New(logger, deps, pipeline.Options{
		MinContentLength:  cfg.Pipeline.MinContentLength,
		MaxQuestions:      cfg.Pipeline.MaxQuestions,
		DefaultDifficulty: cfg.Pipeline.DefaultDifficulty,
		DefaultLanguage:   cfg.Pipeline.DefaultLanguage,
		DefaultType:       cfg.Pipeline.DefaultType,
		SignedURLTTL:      cfg.Storage.SignedURLTTL,
		UploadTimeout:     cfg.Storage.UploadTimeout,
	}, checkpoints)

	router := NewRouter(logger, cfg, &AppDeps{
		Orchestrator: orchestrator,
		Checkpoints:  checkpoints,
		Repos:        repos,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("Server error")
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
}

func newCacheClient(cfg *config.Config, logger *observability.Logger) cache.Client {
	if cfg.Cache.Driver == "redis" {
		client, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		return client
	}
	return cache.NewMemoryClient(cfg.Cache.MaxEntries)
}

// newSummarizer returns nil when the LLM is not configured; the
// pipeline reports the summarizing stage as unavailable.
func newSummarizer(cfg *config.Config, logger *observability.Logger) pipeline.Summarizer {
	s, err := llm.NewSummarizer(llm.Config{
		APIKey:        cfg.LLM.APIKey,
		BaseURL:       cfg.LLM.BaseURL,
		SummaryModel:  cfg.LLM.SummaryModel,
		QuestionModel: cfg.LLM.QuestionModel,
		Timeout:       cfg.LLM.Timeout,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Summarizer not configured")
		return nil
	}
	return s
}

func newGenerator(cfg *config.Config, logger *observability.Logger) pipeline.QuestionGenerator {
	g, err := llm.NewGenerator(llm.Config{
		APIKey:        cfg.LLM.APIKey,
		BaseURL:       cfg.LLM.BaseURL,
		SummaryModel:  cfg.LLM.SummaryModel,
		QuestionModel: cfg.LLM.QuestionModel,
		Timeout:       cfg.LLM.Timeout,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Question generator not configured")
		return nil
	}
	return g
}

func newOCRClient(cfg *config.Config, logger *observability.Logger) pipeline.OCRService {
	c, err := ocr.NewClient(ocr.Config{
		APIKey:  cfg.OCR.APIKey,
		BaseURL: cfg.OCR.BaseURL,
		Model:   cfg.OCR.Model,
		Timeout: cfg.OCR.Timeout,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("OCR not configured, scanned PDFs will be rejected")
		return nil
	}
	return c
}

func newUploader(ctx context.Context, cfg *config.Config, logger *observability.Logger) pipeline.Uploader {
	if cfg.Storage.Bucket == "" {
		logger.Warn().Msg("Object store not configured, file uploads will be rejected")
		return nil
	}

	client, err := gcstorage.NewClient(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to create GCS client, file uploads will be rejected")
		return nil
	}

	bucket, err := objectstore.NewBucket(client, objectstore.Config{
		Bucket:       cfg.Storage.Bucket,
		UploadPrefix: cfg.Storage.UploadPrefix,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to configure object store")
		return nil
	}
	return bucket
}
