package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/swiss-bookkeeping/internal/audit"
	"github.com/dvloznov/swiss-bookkeeping/internal/categorize"
	"github.com/dvloznov/swiss-bookkeeping/internal/classifier"
	"github.com/dvloznov/swiss-bookkeeping/internal/compliance"
	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
	"github.com/dvloznov/swiss-bookkeeping/internal/export"
	infra "github.com/dvloznov/swiss-bookkeeping/internal/infra/bigquery"
	"github.com/dvloznov/swiss-bookkeeping/internal/logger"
	"github.com/dvloznov/swiss-bookkeeping/internal/notionsync"
	"github.com/dvloznov/swiss-bookkeeping/internal/results"
)

// PipelineStep represents a single step of a processing run.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	RunID      string
	StartedAt  time.Time
	ChartPath  string
	Documents  []string
	RunStarted bool // a processing_runs row exists for RunID

	Chart        *domain.ChartOfAccounts
	Processed    []*domain.ProcessedDocument
	Skipped      []string
	Transactions []domain.ExtractedTransaction
	Outcomes     []categorize.Outcome
	Categorized  []domain.CategorizedTransaction
	Report       domain.ComplianceReport
	Trail        domain.AuditTrail
	Package      *export.Package
	Result       *Result
}

// LoadChartStep loads the chart of accounts. Any failure aborts the run.
type LoadChartStep struct {
	Extractor DocumentExtractor
	Metadata  domain.ChartMetadata
}

func (s *LoadChartStep) Execute(ctx context.Context, state *PipelineState) error {
	chart, err := s.Extractor.LoadChart(ctx, state.ChartPath, s.Metadata)
	if err != nil {
		return err
	}
	state.Chart = chart
	return nil
}

// ExtractStep processes documents in order. A document that fails is logged and skipped.
type ExtractStep struct {
	Extractor DocumentExtractor
}

func (s *ExtractStep) Execute(ctx context.Context, state *PipelineState) error {
	log := logger.FromContext(ctx)

	for _, src := range state.Documents {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := s.Extractor.Extract(ctx, src)
		if err != nil {
			log.Error().Err(err).Str("document", src).Msg("Document processing failed, continuing with the rest")
			state.Skipped = append(state.Skipped, src)
			continue
		}
		state.Processed = append(state.Processed, doc)
		state.Transactions = append(state.Transactions, doc.Transactions...)
	}

	log.Info().
		Int("documents", len(state.Processed)).
		Int("skipped", len(state.Skipped)).
		Int("transactions", len(state.Transactions)).
		Msg("Extracted transactions from documents")
	return nil
}

// CategorizeStep classifies every transaction and applies the Swiss rules.
type CategorizeStep struct {
	Classifier classifier.Classifier
	Rules      []categorize.Rule // nil: categorize.DefaultRules
}

func (s *CategorizeStep) Execute(ctx context.Context, state *PipelineState) error {
	opts := []categorize.Option{
		categorize.WithObserver(func(o categorize.Outcome) {
			state.Outcomes = append(state.Outcomes, o)
		}),
	}
	if s.Rules != nil {
		opts = append(opts, categorize.WithRules(s.Rules...))
	}
	state.Categorized = categorize.New(s.Classifier, opts...).Categorize(ctx, state.Transactions, state.Chart)
	return nil
}

type ValidateStep struct {
	Validator *compliance.Validator
}

func (s *ValidateStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Report = s.Validator.Validate(state.Categorized)

	log := logger.FromContext(ctx)
	log.Info().
		Bool("compliant", state.Report.IsCompliant).
		Int("violations", len(state.Report.Violations)).
		Int("warnings", len(state.Report.Warnings)).
		Float64("compliance_rate", state.Report.Summary.ComplianceRate).
		Msg("Compliance validated")
	return nil
}

type BuildTrailStep struct {
	Builder *audit.Builder
}

func (s *BuildTrailStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Trail = s.Builder.BuildTrail(state.Categorized)
	return nil
}

type ExportStep struct {
	Exporter PackageExporter
}

func (s *ExportStep) Execute(ctx context.Context, state *PipelineState) error {
	pkg, err := s.Exporter.ExportPackage(ctx, state.Categorized, state.Chart, state.Report, state.Trail)
	if err != nil {
		return err
	}
	state.Package = pkg
	return nil
}

// RecordStep writes the ledger and classifier outputs to BigQuery and closes the
// run. Failures are logged; the export already exists.
type RecordStep struct {
	Repo  infra.RunRepository
	Model string
	Now   func() time.Time
}

func (s *RecordStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Repo == nil || !state.RunStarted {
		return nil
	}
	log := logger.FromContext(ctx).With().Str("run_id", state.RunID).Logger()
	now := s.Now()

	if err := s.Repo.InsertLedgerEntries(ctx, infra.NewLedgerEntryRows(state.RunID, state.Categorized, now)); err != nil {
		log.Error().Err(err).Msg("Recording ledger entries failed")
	}

	outputs := make([]*infra.ClassifierOutputRow, 0, len(state.Outcomes))
	for _, o := range state.Outcomes {
		outputs = append(outputs, infra.NewClassifierOutputRow(state.RunID, s.Model, o, now))
	}
	if err := s.Repo.InsertClassifierOutputs(ctx, outputs); err != nil {
		log.Error().Err(err).Msg("Recording classifier outputs failed")
	}

	stats := infra.RunStats{
		Documents:      len(state.Processed),
		Transactions:   len(state.Categorized),
		ComplianceRate: state.Report.Summary.ComplianceRate,
	}
	if err := s.Repo.MarkRunSucceeded(ctx, state.RunID, stats); err != nil {
		log.Error().Err(err).Msg("Closing processing run failed")
	}
	return nil
}

// PublishReviewStep pushes low-confidence and non-compliant transactions to the
// review queue. Failures are logged.
type PublishReviewStep struct {
	Publisher     ReviewPublisher
	LowConfidence float64
}

func (s *PublishReviewStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Publisher == nil {
		return nil
	}
	items := notionsync.ReviewItems(state.Categorized, &state.Report, s.LowConfidence)
	if _, err := s.Publisher.Publish(ctx, items); err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Int("items", len(items)).Msg("Publishing review queue failed")
	}
	return nil
}

// StoreResultStep assembles the Result and keeps it retrievable by id.
type StoreResultStep struct {
	Store results.Store[Result]
	Now   func() time.Time
}

func (s *StoreResultStep) Execute(ctx context.Context, state *PipelineState) error {
	now := s.Now()
	res := &Result{
		ID:               ResultID(now),
		RunID:            state.RunID,
		Transactions:     state.Categorized,
		ComplianceReport: state.Report,
		AuditTrail:       state.Trail,
		ExportFiles:      state.Package,
		SkippedDocuments: state.Skipped,
		Summary: Summary{
			TotalTransactions: len(state.Categorized),
			TotalAmount:       TotalAmount(state.Categorized),
			ComplianceRate:    state.Report.Summary.ComplianceRate,
			ProcessingTimeMs:  now.Sub(state.StartedAt).Milliseconds(),
		},
	}
	state.Result = res

	if s.Store == nil {
		return nil
	}
	if err := s.Store.Put(ctx, res.ID, *res); err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("result_id", res.ID).Msg("Storing result failed")
	}
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially and stops at the first error.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}
