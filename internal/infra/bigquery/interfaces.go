package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/option"
)

// RunRepository persists processing runs and their outputs.
type RunRepository interface {
	StartRun(ctx context.Context, run *ProcessingRunRow) error
	MarkRunSucceeded(ctx context.Context, runID string, stats RunStats) error
	MarkRunFailed(ctx context.Context, runID string, runErr error)
	InsertLedgerEntries(ctx context.Context, rows []*LedgerEntryRow) error
	InsertClassifierOutputs(ctx context.Context, rows []*ClassifierOutputRow) error
	ListRuns(ctx context.Context, limit int) ([]*ProcessingRunRow, error)
}

// BigQueryRunRepository is the RunRepository backed by BigQuery. It holds a
// shared client; call Close when done.
type BigQueryRunRepository struct {
	client    *bigquery.Client
	datasetID string
}

var _ RunRepository = (*BigQueryRunRepository)(nil)

func NewBigQueryRunRepository(ctx context.Context, projectID, datasetID string, opts ...option.ClientOption) (*BigQueryRunRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryRunRepository: creating client: %w", err)
	}
	return NewBigQueryRunRepositoryWithClient(client, datasetID), nil
}

func NewBigQueryRunRepositoryWithClient(client *bigquery.Client, datasetID string) *BigQueryRunRepository {
	return &BigQueryRunRepository{client: client, datasetID: datasetID}
}

func (r *BigQueryRunRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Client exposes the shared client, e.g. for migrations.
func (r *BigQueryRunRepository) Client() *bigquery.Client {
	return r.client
}

func (r *BigQueryRunRepository) StartRun(ctx context.Context, run *ProcessingRunRow) error {
	return StartRunWithClient(ctx, r.client, r.datasetID, run)
}

func (r *BigQueryRunRepository) MarkRunSucceeded(ctx context.Context, runID string, stats RunStats) error {
	return MarkRunSucceededWithClient(ctx, r.client, r.datasetID, runID, stats)
}

func (r *BigQueryRunRepository) MarkRunFailed(ctx context.Context, runID string, runErr error) {
	MarkRunFailedWithClient(ctx, r.client, r.datasetID, runID, runErr)
}

func (r *BigQueryRunRepository) InsertLedgerEntries(ctx context.Context, rows []*LedgerEntryRow) error {
	return InsertLedgerEntriesWithClient(ctx, r.client, r.datasetID, rows)
}

func (r *BigQueryRunRepository) InsertClassifierOutputs(ctx context.Context, rows []*ClassifierOutputRow) error {
	return InsertClassifierOutputsWithClient(ctx, r.client, r.datasetID, rows)
}

func (r *BigQueryRunRepository) ListRuns(ctx context.Context, limit int) ([]*ProcessingRunRow, error) {
	return ListRunsWithClient(ctx, r.client, r.datasetID, limit)
}
