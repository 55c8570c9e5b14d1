package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/dvloznov/swiss-bookkeeping/internal/classifier"
	"github.com/dvloznov/swiss-bookkeeping/internal/compliance"
	"github.com/dvloznov/swiss-bookkeeping/internal/config"
	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
	"github.com/dvloznov/swiss-bookkeeping/internal/export"
	"github.com/dvloznov/swiss-bookkeeping/internal/extraction"
	"github.com/dvloznov/swiss-bookkeeping/internal/gcsuploader"
	infra "github.com/dvloznov/swiss-bookkeeping/internal/infra/bigquery"
	"github.com/dvloznov/swiss-bookkeeping/internal/llm"
	"github.com/dvloznov/swiss-bookkeeping/internal/notionsync"
	"github.com/dvloznov/swiss-bookkeeping/internal/pipeline"
	"github.com/dvloznov/swiss-bookkeeping/internal/results"
)

// ChartStandard is the accounting standard recorded in chart metadata.
const ChartStandard = "Swiss GAAP FER"

// exportPrefix is the object prefix for exports mirrored to GCS.
const exportPrefix = "exports"

// closers releases everything a command opened, in reverse order.
type closers []func() error

func (c *closers) add(f func() error) {
	*c = append(*c, f)
}

func (c closers) Close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func chartMetadata(cfg *config.Config) domain.ChartMetadata {
	return domain.ChartMetadata{
		Standard: ChartStandard,
		Year:     cfg.Company.FiscalYear,
		Company:  cfg.Company.Name,
	}
}

func needsGCS(cfg *config.Config, sources []string) bool {
	if cfg.Export.Bucket != "" {
		return true
	}
	for _, s := range sources {
		if gcsuploader.IsGCSURI(s) {
			return true
		}
	}
	return false
}

func newGenerator(ctx context.Context, cfg *config.Config) (*llm.GeminiGenerator, error) {
	return llm.NewGeminiGenerator(ctx, llm.GeminiConfig{
		Model:  cfg.Classifier.Model,
		APIKey: cfg.Classifier.APIKey,
		Retry: llm.RetryConfig{
			MaxRetries: cfg.Classifier.MaxRetries,
			MaxElapsed: cfg.Classifier.MaxElapsed,
		},
	})
}

// newResultsStore opens the configured results backend. The in-memory store is
// swept in the background until ctx is done.
func newResultsStore(ctx context.Context, cfg *config.Config) (results.Store[pipeline.Result], func() error, error) {
	switch cfg.Results.Backend {
	case config.ResultsBackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.Results.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Results.RedisAddr, err)
		}
		store := results.NewRedisStore[pipeline.Result](client, cfg.Results.TTL)
		return store, store.Close, nil
	default:
		store := results.NewMemoryStore[pipeline.Result](cfg.Results.TTL)
		store.Start(ctx, cfg.Results.SweepInterval)
		return store, func() error { return nil }, nil
	}
}

// newService wires the processing pipeline from configuration. Optional sinks
// are only created when configured.
func newService(ctx context.Context, cfg *config.Config, sources []string, dryRun bool) (*pipeline.Service, closers, error) {
	var cl closers

	mode, err := compliance.ParseMode(cfg.Compliance.Mode)
	if err != nil {
		return nil, cl, err
	}

	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		return nil, cl, err
	}

	extractorOpts := []extraction.Option{}
	exporterOpts := []export.Option{}
	if needsGCS(cfg, sources) {
		storage, err := gcsuploader.NewGCSStorageService(ctx)
		if err != nil {
			return nil, cl, err
		}
		cl.add(storage.Close)
		extractorOpts = append(extractorOpts, extraction.WithFetcher(storage))
		if cfg.Export.Bucket != "" {
			exporterOpts = append(exporterOpts, export.WithMirror(export.GCSSink{
				Uploader: storage,
				Bucket:   cfg.Export.Bucket,
				Prefix:   exportPrefix,
			}))
		}
	}

	store, closeStore, err := newResultsStore(ctx, cfg)
	if err != nil {
		return nil, cl, err
	}
	cl.add(closeStore)

	deps := pipeline.Dependencies{
		Extractor:     extraction.NewExtractor(gen, extractorOpts...),
		Classifier:    classifier.NewLLMClassifier(gen),
		Validator:     compliance.NewValidator(compliance.WithMode(mode), compliance.WithLowConfidence(cfg.Compliance.LowConfidence)),
		Exporter:      export.NewExporter(export.DirSink{Dir: cfg.Export.Dir}, exporterOpts...),
		Store:         store,
		ChartMetadata: chartMetadata(cfg),
		Model:         gen.Model(),
		LowConfidence: cfg.Compliance.LowConfidence,
	}

	if cfg.BigQuery.Enabled {
		repo, err := infra.NewBigQueryRunRepository(ctx, cfg.BigQuery.ProjectID, cfg.BigQuery.Dataset)
		if err != nil {
			return nil, cl, err
		}
		cl.add(repo.Close)
		deps.Repo = repo
	}

	if pub := newReviewPublisher(cfg, dryRun); pub != nil {
		deps.Publisher = pub
	}

	return pipeline.NewService(deps), cl, nil
}

func newReviewPublisher(cfg *config.Config, dryRun bool) *notionsync.ReviewPublisher {
	if cfg.Notion.Token == "" || cfg.Notion.ReviewDatabaseID == "" {
		return nil
	}
	return notionsync.NewReviewPublisher(
		notionsync.NewNotionClient(cfg.Notion.Token),
		cfg.Notion.ReviewDatabaseID,
		cfg.Notion.DryRun || dryRun,
	)
}

func splitArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		for _, part := range strings.Split(a, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
