package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dvloznov/swiss-bookkeeping/internal/classifier"
	"github.com/dvloznov/swiss-bookkeeping/internal/compliance"
	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
	"github.com/dvloznov/swiss-bookkeeping/internal/export"
	infra "github.com/dvloznov/swiss-bookkeeping/internal/infra/bigquery"
	"github.com/dvloznov/swiss-bookkeeping/internal/logger"
	"github.com/dvloznov/swiss-bookkeeping/internal/notionsync"
	"github.com/dvloznov/swiss-bookkeeping/internal/results"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

type mockExtractor struct {
	chart    *domain.ChartOfAccounts
	chartErr error
	docs     map[string]*domain.ProcessedDocument
}

func (m *mockExtractor) LoadChart(_ context.Context, _ string, meta domain.ChartMetadata) (*domain.ChartOfAccounts, error) {
	if m.chartErr != nil {
		return nil, m.chartErr
	}
	c := *m.chart
	c.Metadata = meta
	return &c, nil
}

func (m *mockExtractor) Extract(_ context.Context, src string) (*domain.ProcessedDocument, error) {
	doc, ok := m.docs[src]
	if !ok {
		return nil, errors.New("unsupported document")
	}
	return doc, nil
}

type memSink struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func (s *memSink) Put(_ context.Context, name string, data []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files == nil {
		s.files = map[string][]byte{}
	}
	s.files[name] = data
	return "mem://" + name, nil
}

type mockRepo struct {
	startErr  error
	started   []*infra.ProcessingRunRow
	ledger    []*infra.LedgerEntryRow
	outputs   []*infra.ClassifierOutputRow
	succeeded map[string]infra.RunStats
	failed    map[string]error
}

func newMockRepo() *mockRepo {
	return &mockRepo{succeeded: map[string]infra.RunStats{}, failed: map[string]error{}}
}

func (m *mockRepo) StartRun(_ context.Context, run *infra.ProcessingRunRow) error {
	if m.startErr != nil {
		return m.startErr
	}
	m.started = append(m.started, run)
	return nil
}

func (m *mockRepo) MarkRunSucceeded(_ context.Context, runID string, stats infra.RunStats) error {
	m.succeeded[runID] = stats
	return nil
}

func (m *mockRepo) MarkRunFailed(_ context.Context, runID string, runErr error) {
	m.failed[runID] = runErr
}

func (m *mockRepo) InsertLedgerEntries(_ context.Context, rows []*infra.LedgerEntryRow) error {
	m.ledger = append(m.ledger, rows...)
	return nil
}

func (m *mockRepo) InsertClassifierOutputs(_ context.Context, rows []*infra.ClassifierOutputRow) error {
	m.outputs = append(m.outputs, rows...)
	return nil
}

func (m *mockRepo) ListRuns(context.Context, int) ([]*infra.ProcessingRunRow, error) {
	return m.started, nil
}

type mockPublisher struct {
	items []notionsync.ReviewItem
	err   error
}

func (m *mockPublisher) Publish(_ context.Context, items []notionsync.ReviewItem) (notionsync.PublishStats, error) {
	m.items = append(m.items, items...)
	return notionsync.PublishStats{Created: len(items)}, m.err
}

func testChart() *domain.ChartOfAccounts {
	return &domain.ChartOfAccounts{Accounts: []domain.Account{
		{AccountNumber: "1020", AccountName: "Bank", AccountType: domain.AccountTypeAssets, IsActive: true},
		{AccountNumber: "3200", AccountName: "Sales", AccountType: domain.AccountTypeRevenue, IsActive: true},
		{AccountNumber: "6500", AccountName: "Office Supplies", AccountType: domain.AccountTypeExpenses, IsActive: true},
	}}
}

func tx(id, date, amount, desc, ref string, income bool) domain.ExtractedTransaction {
	return domain.ExtractedTransaction{
		ID: id, Date: date, Amount: decimal.RequireFromString(amount),
		Description: desc, Reference: ref, IsIncome: income,
	}
}

func testExtractor() *mockExtractor {
	return &mockExtractor{
		chart: testChart(),
		docs: map[string]*domain.ProcessedDocument{
			"invoice_paper.txt": {Type: domain.DocumentInvoice, Transactions: []domain.ExtractedTransaction{
				tx("u1", "2024-01-15", "120.50", "Printer paper", "INV-1", false),
			}},
			"bank_statement.csv": {Type: domain.DocumentBankStatement, Transactions: []domain.ExtractedTransaction{
				tx("u2", "2024-01-16", "5000", "Customer payment", "PAY-1", true),
			}},
		},
	}
}

func officeClassifier() *classifier.MockClassifier {
	return &classifier.MockClassifier{AskFunc: func(_ context.Context, prompt string) (*classifier.Result, error) {
		if strings.Contains(prompt, "Printer paper") {
			return &classifier.Result{
				Category: "Office Supplies", AccountNumber: "6500", Confidence: 0.92,
				SwissGAAPCode: "Operating Expenses", Raw: `{"category":"Office Supplies"}`,
			}, nil
		}
		return nil, classifier.ErrMalformedResult
	}}
}

func newTestService(t *testing.T, ext *mockExtractor, sink *memSink, repo *mockRepo, pub *mockPublisher, store *results.MemoryStore[Result]) *Service {
	t.Helper()
	deps := Dependencies{
		Extractor:     ext,
		Classifier:    officeClassifier(),
		Exporter:      export.NewExporter(sink, export.WithClock(func() time.Time { return fixedNow })),
		ChartMetadata: domain.ChartMetadata{Standard: "Swiss GAAP FER", Year: 2024, Company: "Muster AG"},
		Model:         "gemini-2.5-flash",
		Now:           func() time.Time { return fixedNow },
	}
	if store != nil {
		deps.Store = store
	}
	if repo != nil {
		deps.Repo = repo
	}
	if pub != nil {
		deps.Publisher = pub
	}
	return NewService(deps)
}

func TestService_Process(t *testing.T) {
	sink := &memSink{}
	repo := newMockRepo()
	pub := &mockPublisher{}
	store := results.NewMemoryStore[Result](time.Hour)
	svc := newTestService(t, testExtractor(), sink, repo, pub, store)

	res, err := svc.Process(context.Background(), Request{
		ChartPath: "chart.csv",
		Documents: []string{"invoice_paper.txt", "scan.pdf", "bank_statement.csv"},
	})
	require.NoError(t, err)

	assert.Equal(t, "result-1710498600000", res.ID)
	assert.Equal(t, []string{"scan.pdf"}, res.SkippedDocuments)
	require.Len(t, res.Transactions, 2)

	office := res.Transactions[0]
	assert.Equal(t, "6500", office.AccountNumber)
	assert.Contains(t, office.ProcessingRules, "Swiss VAT Applied")

	fallback := res.Transactions[1]
	assert.Equal(t, "Miscellaneous", fallback.SuggestedCategory)
	assert.Equal(t, "4000", fallback.AccountNumber)

	assert.Equal(t, 2, res.Summary.TotalTransactions)
	assert.True(t, decimal.RequireFromString("5120.50").Equal(res.Summary.TotalAmount))
	assert.InDelta(t, 1.0, res.Summary.ComplianceRate, 1e-9)
	assert.Zero(t, res.Summary.ProcessingTimeMs)

	require.NotNil(t, res.ExportFiles)
	assert.Equal(t, "mem://general-ledger-2024-03-15T10-30-00.csv", res.ExportFiles.GeneralLedger)
	assert.Len(t, sink.files, 4)

	stored, err := store.Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.RunID, stored.RunID)

	require.Len(t, repo.started, 1)
	assert.Equal(t, "Muster AG", repo.started[0].Company)
	assert.Len(t, repo.ledger, 2)
	require.Len(t, repo.outputs, 2)
	assert.True(t, repo.outputs[0].RawJSON.Valid)
	assert.True(t, repo.outputs[1].ErrorMessage.Valid)
	assert.Equal(t, infra.RunStats{Documents: 2, Transactions: 2, ComplianceRate: 1}, repo.succeeded[res.RunID])
	assert.Empty(t, repo.failed)

	require.Len(t, pub.items, 1, "only the fallback is below the confidence threshold")
	assert.Equal(t, "2024-01-16-5000-PAY-1", pub.items[0].TransactionID)
}

func TestService_ChartFailureIsFatal(t *testing.T) {
	ext := testExtractor()
	ext.chartErr = errors.New("chart of accounts is empty")
	repo := newMockRepo()
	store := results.NewMemoryStore[Result](time.Hour)

	res, err := newTestService(t, ext, &memSink{}, repo, nil, store).Process(context.Background(), Request{
		ChartPath: "chart.csv", Documents: []string{"invoice_paper.txt"},
	})
	require.Error(t, err)
	assert.Nil(t, res)

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, "processing failed", runErr.Message)
	assert.Contains(t, runErr.Detail, "pipeline step 1 failed")
	assert.ErrorIs(t, err, ext.chartErr)

	require.Len(t, repo.failed, 1)
	assert.Empty(t, repo.succeeded)
	assert.Zero(t, store.Len())
}

func TestService_ExportFailureIsFatal(t *testing.T) {
	sink := &memSink{err: errors.New("disk full")}

	_, err := newTestService(t, testExtractor(), sink, nil, nil, nil).Process(context.Background(), Request{
		ChartPath: "chart.csv", Documents: []string{"invoice_paper.txt"},
	})
	assert.ErrorContains(t, err, "disk full")
}

func TestService_OptionalSinksDoNotFailRun(t *testing.T) {
	repo := newMockRepo()
	repo.startErr = errors.New("bigquery unavailable")
	pub := &mockPublisher{err: errors.New("notion unauthorized")}

	res, err := newTestService(t, testExtractor(), &memSink{}, repo, pub, nil).Process(context.Background(), Request{
		ChartPath: "chart.csv", Documents: []string{"bank_statement.csv"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.TotalTransactions)
	assert.Empty(t, repo.ledger, "nothing is recorded without a started run")
	assert.Empty(t, repo.succeeded)
}

func TestService_AllDocumentsSkipped(t *testing.T) {
	res, err := newTestService(t, testExtractor(), &memSink{}, nil, nil, nil).Process(context.Background(), Request{
		ChartPath: "chart.csv", Documents: []string{"a.pdf", "b.pdf"},
	})
	require.NoError(t, err)
	assert.Zero(t, res.Summary.TotalTransactions)
	assert.True(t, res.Summary.TotalAmount.IsZero())
	assert.InDelta(t, 1.0, res.Summary.ComplianceRate, 1e-9)
	assert.True(t, res.ComplianceReport.IsCompliant)
}

func TestService_InvalidRequest(t *testing.T) {
	_, err := newTestService(t, testExtractor(), &memSink{}, nil, nil, nil).Process(context.Background(), Request{ChartPath: "chart.csv"})

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, "invalid request", runErr.Message)
}

func TestPipeline_StopsAtFirstError(t *testing.T) {
	var ran []int
	step := func(n int, err error) PipelineStep {
		return stepFunc(func(context.Context, *PipelineState) error {
			ran = append(ran, n)
			return err
		})
	}

	err := NewPipeline(step(1, nil), step(2, errors.New("boom")), step(3, nil)).Execute(context.Background(), &PipelineState{})
	assert.EqualError(t, err, "pipeline step 2 failed: boom")
	assert.Equal(t, []int{1, 2}, ran)
}

type stepFunc func(context.Context, *PipelineState) error

func (f stepFunc) Execute(ctx context.Context, s *PipelineState) error { return f(ctx, s) }

func TestResult_File(t *testing.T) {
	r := &Result{ID: "result-1", ExportFiles: &export.Package{TaxReport: "exports/tax.csv"}}

	got, err := r.File("tax-report")
	require.NoError(t, err)
	assert.Equal(t, "exports/tax.csv", got)

	_, err = r.File("balance-sheet")
	assert.ErrorContains(t, err, "invalid download type")

	_, err = (&Result{ID: "x"}).File("tax-report")
	assert.Error(t, err)
}

type failingStore struct {
	results.Store[Result]
}

func (failingStore) Put(context.Context, string, Result) error {
	return errors.New("store unavailable")
}

func TestSteps_LogInsteadOfFailing(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(buf))
	state := &PipelineState{RunID: "run-1", StartedAt: fixedNow}

	require.NoError(t, (&ValidateStep{Validator: compliance.NewValidator()}).Execute(ctx, state))
	assert.Contains(t, buf.String(), "Compliance validated")

	pub := &mockPublisher{err: errors.New("notion down")}
	require.NoError(t, (&PublishReviewStep{Publisher: pub, LowConfidence: 0.7}).Execute(ctx, state))
	assert.Contains(t, buf.String(), "Publishing review queue failed")

	step := &StoreResultStep{Store: failingStore{}, Now: func() time.Time { return fixedNow }}
	require.NoError(t, step.Execute(ctx, state))
	assert.Contains(t, buf.String(), "Storing result failed")
	require.NotNil(t, state.Result)
	assert.Equal(t, ResultID(fixedNow), state.Result.ID)
}
