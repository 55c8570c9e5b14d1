package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/dvloznov/swiss-bookkeeping/internal/audit"
	"github.com/dvloznov/swiss-bookkeeping/internal/categorize"
	"github.com/dvloznov/swiss-bookkeeping/internal/classifier"
	"github.com/dvloznov/swiss-bookkeeping/internal/compliance"
	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
	infra "github.com/dvloznov/swiss-bookkeeping/internal/infra/bigquery"
	"github.com/dvloznov/swiss-bookkeeping/internal/logger"
	"github.com/dvloznov/swiss-bookkeeping/internal/results"
	"github.com/google/uuid"
)

// Request names the inputs of one processing run. Paths may be local or gs:// URIs.
type Request struct {
	ChartPath string
	Documents []string
}

// Dependencies wires a Service. Repo, Publisher and Store are optional.
type Dependencies struct {
	Extractor     DocumentExtractor
	Classifier    classifier.Classifier
	Rules         []categorize.Rule
	Validator     *compliance.Validator
	Exporter      PackageExporter
	Repo          infra.RunRepository
	Publisher     ReviewPublisher
	Store         results.Store[Result]
	ChartMetadata domain.ChartMetadata
	Model         string
	LowConfidence float64
	Now           func() time.Time
}

// Service runs the bookkeeping pipeline end to end.
type Service struct {
	deps Dependencies
}

func NewService(deps Dependencies) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Validator == nil {
		deps.Validator = compliance.NewValidator()
	}
	if deps.LowConfidence == 0 {
		deps.LowConfidence = compliance.DefaultLowConfidence
	}
	return &Service{deps: deps}
}

func (s *Service) newPipeline() *Pipeline {
	d := s.deps
	return NewPipeline(
		&LoadChartStep{Extractor: d.Extractor, Metadata: d.ChartMetadata},
		&ExtractStep{Extractor: d.Extractor},
		&CategorizeStep{Classifier: d.Classifier, Rules: d.Rules},
		&ValidateStep{Validator: d.Validator},
		&BuildTrailStep{Builder: audit.NewBuilder(d.Model, audit.WithClock(d.Now))},
		&ExportStep{Exporter: d.Exporter},
		&RecordStep{Repo: d.Repo, Model: d.Model, Now: d.Now},
		&PublishReviewStep{Publisher: d.Publisher, LowConfidence: d.LowConfidence},
		&StoreResultStep{Store: d.Store, Now: d.Now},
	)
}

// Process runs every step for req. Errors are returned as *RunError.
func (s *Service) Process(ctx context.Context, req Request) (*Result, error) {
	if req.ChartPath == "" || len(req.Documents) == 0 {
		err := errors.New("chart of accounts and documents are required")
		return nil, &RunError{Message: "invalid request", Detail: err.Error(), Err: err}
	}

	state := &PipelineState{
		RunID:     uuid.NewString(),
		StartedAt: s.deps.Now(),
		ChartPath: req.ChartPath,
		Documents: req.Documents,
	}
	log := logger.FromContext(ctx).With().Str("run_id", state.RunID).Logger()
	ctx = logger.WithContext(ctx, log)

	log.Info().Int("documents", len(req.Documents)).Msg("Starting Swiss bookkeeping process")

	if s.deps.Repo != nil {
		run := &infra.ProcessingRunRow{
			RunID:     state.RunID,
			Company:   s.deps.ChartMetadata.Company,
			StartedTS: state.StartedAt,
			Status:    infra.RunStatusRunning,
		}
		if err := s.deps.Repo.StartRun(ctx, run); err != nil {
			log.Error().Err(err).Msg("Starting processing run failed, run will not be recorded")
		} else {
			state.RunStarted = true
		}
	}

	if err := s.newPipeline().Execute(ctx, state); err != nil {
		log.Error().Err(err).Msg("Swiss bookkeeping process failed")
		if state.RunStarted {
			s.deps.Repo.MarkRunFailed(ctx, state.RunID, err)
		}
		return nil, &RunError{Message: "processing failed", Detail: err.Error(), Err: err}
	}

	res := state.Result
	log.Info().
		Str("result_id", res.ID).
		Int("transactions", res.Summary.TotalTransactions).
		Str("total_amount_chf", res.Summary.TotalAmount.StringFixed(2)).
		Float64("compliance_rate", res.Summary.ComplianceRate).
		Int64("processing_ms", res.Summary.ProcessingTimeMs).
		Msg("Swiss bookkeeping process completed")
	return res, nil
}
