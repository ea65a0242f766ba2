package commands

import (
	"context"
	"database/sql"
	"fmt"

	gcstorage "cloud.google.com/go/storage"
	"github.com/joho/godotenv"

	"github.com/atlasedu/quizforge/cmd/quizforge-cli/ui"
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

func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	ui.Init(noColor)
	return cfg, nil
}

// newLogger keeps CLI output quiet unless --verbose is set; the ui
// package carries the user-facing output.
func newLogger(cfg *config.Config) *observability.Logger {
	level := "error"
	if verbose {
		level = "debug"
	}
	return observability.NewLogger(observability.LogConfig{
		Level:       level,
		Format:      "console",
		ServiceName: cfg.Observability.ServiceName,
	})
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := storage.Open(ctx, cfg.Database.Driver, cfg.DatabaseDSN(), storage.OpenOptions{
		MaxOpenConns:    cfg.Database.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Database.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	if err := storage.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newBucket(ctx context.Context, cfg *config.Config) (*objectstore.Bucket, error) {
	if cfg.Storage.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is not configured")
	}
	client, err := gcstorage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return objectstore.NewBucket(client, objectstore.Config{
		Bucket:       cfg.Storage.Bucket,
		UploadPrefix: cfg.Storage.UploadPrefix,
	})
}

// buildOrchestrator assembles a fully local pipeline: the CLI runs the
// same stages as the API, in process.
func buildOrchestrator(ctx context.Context, cfg *config.Config, logger *observability.Logger, db *sql.DB) (*pipeline.Orchestrator, error) {
	repos := storage.NewRepositories(db)
	gateway := storage.NewGateway(repos)

	summarizer, err := llm.NewSummarizer(llmConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("summarizer: %w (set OPENAI_API_KEY)", err)
	}
	generator, err := llm.NewGenerator(llmConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("question generator: %w (set OPENAI_API_KEY)", err)
	}

	deps := pipeline.Dependencies{
		Extractor:  extract.NewService(cfg.Pipeline.MinContentLength),
		Summarizer: summarizer,
		Generator:  generator,
		Store:      gateway,
		Documents:  gateway,
	}

	if ocrClient, err := ocr.NewClient(ocr.Config{
		APIKey:  cfg.OCR.APIKey,
		BaseURL: cfg.OCR.BaseURL,
		Model:   cfg.OCR.Model,
		Timeout: cfg.OCR.Timeout,
	}); err == nil {
		deps.OCR = ocrClient
	} else if verbose {
		ui.Warning("OCR not configured: scanned PDFs will be rejected")
	}

	if bucket, err := newBucket(ctx, cfg); err == nil {
		deps.Uploader = bucket
	} else if verbose {
		ui.Warning("Object store not configured: %v", err)
	}

	checkpoints := pipeline.NewCheckpointStore(cache.NewMemoryClient(cfg.Cache.MaxEntries), cfg.Cache.TTL)

	return pipeline.New(logger, deps, pipeline.Options{
		MinContentLength:  cfg.Pipeline.MinContentLength,
		MaxQuestions:      cfg.Pipeline.MaxQuestions,
		DefaultDifficulty: cfg.Pipeline.DefaultDifficulty,
		DefaultLanguage:   cfg.Pipeline.DefaultLanguage,
		DefaultType:       cfg.Pipeline.DefaultType,
		SignedURLTTL:      cfg.Storage.SignedURLTTL,
		UploadTimeout:     cfg.Storage.UploadTimeout,
	}, checkpoints), nil
}

func llmConfig(cfg *config.Config) llm.Config {
	return llm.Config{
		APIKey:        cfg.LLM.APIKey,
		BaseURL:       cfg.LLM.BaseURL,
		SummaryModel:  cfg.LLM.SummaryModel,
		QuestionModel: cfg.LLM.QuestionModel,
		Timeout:       cfg.LLM.Timeout,
	}
}
