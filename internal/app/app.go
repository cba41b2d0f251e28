// Package app wires configuration to adapters and the pipeline.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"KBSync/internal/config"
	"KBSync/internal/infrastructure/embeddings"
	"KBSync/internal/infrastructure/llm"
	"KBSync/internal/infrastructure/objectstore"
	"KBSync/internal/infrastructure/vectorstore"
	"KBSync/internal/infrastructure/zoho"
	"KBSync/internal/logging"
	"KBSync/internal/ports"
	"KBSync/internal/usecase"
	"KBSync/pkg/ratelimit"
	"KBSync/pkg/retry"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	closers  []func() error
}

// New builds a runnable application for the given stage. Only the adapters
// the stage can reach are constructed; the vector store connection is opened
// (and pinged) here so a bad DSN fails before any data moves.
func New(ctx context.Context, cfg config.Config, stage string, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	app := &Application{cfg: cfg}

	store, err := objectstore.New(ctx, objectstore.Config{
		Endpoint:  cfg.ObjectStore.Endpoint,
		AccessKey: cfg.ObjectStore.AccessKey,
		SecretKey: cfg.ObjectStore.SecretKey,
		Bucket:    cfg.ObjectStore.Bucket,
		Secure:    cfg.ObjectStore.Secure,
	}, baseLogger)
	if err != nil {
		return nil, fmt.Errorf("connect object store: %w", err)
	}

	var deskClient *zoho.Client
	if cfg.Zoho.ClientID != "" {
		deskClient = zoho.NewClient(zoho.Config{
			TokenURL:     cfg.Zoho.TokenURL,
			ArticlesURL:  cfg.Zoho.ArticlesURL,
			ClientID:     cfg.Zoho.ClientID,
			ClientSecret: cfg.Zoho.ClientSecret,
			RedirectURI:  cfg.Zoho.RedirectURI,
			RefreshToken: cfg.Zoho.RefreshToken,
			OrgID:        cfg.Zoho.OrgID,
			DepartmentID: cfg.Zoho.DepartmentID,
			CategoryID:   cfg.Zoho.CategoryID,
		}, retry.Policy{
			MaxAttempts: cfg.Push.MaxAttempts,
			Factor:      cfg.Push.BackoffFactor,
		}, baseLogger)
	}

	var keywords ports.KeywordGenerator
	var embedder ports.Embedder
	if cfg.OpenAI.APIKey != "" {
		keywords = llm.NewKeywordClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.MaxKeywords)
		embedder = embeddings.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel)
	}

	var vectors ports.VectorStore
	if cfg.Database.DSN != "" && (stage == "upload" || stage == "all") {
		pg, err := vectorstore.New(ctx, cfg.Database.DSN, baseLogger)
		if err != nil {
			return nil, fmt.Errorf("connect vector store: %w", err)
		}
		app.closers = append(app.closers, pg.Close)
		vectors = pg
	}

	var source ports.ArticleSource
	var writer ports.ArticleWriter
	if deskClient != nil {
		source = deskClient
		writer = deskClient
	}

	app.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Writer:     writer,
		Store:      store,
		Keywords:   keywords,
		Embedder:   embedder,
		Vectors:    vectors,
		Limiter:    ratelimit.New(cfg.Push.MaxConcurrent, cfg.Push.PacingInterval),
		Logger:     baseLogger,
		Prefix:     cfg.ObjectStore.StoragePrefix(),
		Permission: cfg.Zoho.Permission,
		Retention:  cfg.Sync.SnapshotRetention,
		Collection: cfg.Database.Collection,
	})
	return app, nil
}

// Run executes the named stage once.
func (a *Application) Run(ctx context.Context, stage string) error {
	run, ok := a.pipeline.Resolve(stage)
	if !ok {
		return fmt.Errorf("unknown stage %q", stage)
	}
	return run(ctx)
}

// Close releases held connections.
func (a *Application) Close() error {
	var firstErr error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
