package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/swiss-bookkeeping/internal/logger"
	"google.golang.org/api/iterator"
)

const (
	processingRunsTable    = "processing_runs"
	ledgerEntriesTable     = "ledger_entries"
	classifierOutputsTable = "classifier_outputs"
	schemaMigrationsTable  = "schema_migrations"
)

// RunStats are the counters written when a run finishes.
type RunStats struct {
	Documents      int
	Transactions   int
	ComplianceRate float64
}

func tableRef(projectID, datasetID, table string) string {
	return fmt.Sprintf("`%s.%s.%s`", projectID, datasetID, table)
}

// runDML runs a parameterised DML statement and waits for it to finish.
func runDML(ctx context.Context, client *bigquery.Client, sql string, params []bigquery.QueryParameter) error {
	q := client.Query(sql)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}

// StartRunWithClient inserts a processing_runs row with status=RUNNING.
// DML is used instead of streaming so the row can be updated right away.
func StartRunWithClient(ctx context.Context, client *bigquery.Client, datasetID string, run *ProcessingRunRow) error {
	sql := fmt.Sprintf(`
		INSERT %s (run_id, company, started_ts, status)
		VALUES (@run_id, @company, @started_ts, @status)
	`, tableRef(client.Project(), datasetID, processingRunsTable))

	err := runDML(ctx, client, sql, []bigquery.QueryParameter{
		{Name: "run_id", Value: run.RunID},
		{Name: "company", Value: run.Company},
		{Name: "started_ts", Value: run.StartedTS},
		{Name: "status", Value: RunStatusRunning},
	})
	if err != nil {
		return fmt.Errorf("StartRun: %w", err)
	}
	return nil
}

// MarkRunSucceededWithClient sets status=SUCCESS, finished_ts and the run counters.
func MarkRunSucceededWithClient(ctx context.Context, client *bigquery.Client, datasetID, runID string, stats RunStats) error {
	sql := fmt.Sprintf(`
		UPDATE %s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = NULL,
		    document_count = @document_count,
		    transaction_count = @transaction_count,
		    compliance_rate = @compliance_rate
		WHERE run_id = @run_id
	`, tableRef(client.Project(), datasetID, processingRunsTable))

	err := runDML(ctx, client, sql, []bigquery.QueryParameter{
		{Name: "status", Value: RunStatusSuccess},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "document_count", Value: stats.Documents},
		{Name: "transaction_count", Value: stats.Transactions},
		{Name: "compliance_rate", Value: stats.ComplianceRate},
		{Name: "run_id", Value: runID},
	})
	if err != nil {
		return fmt.Errorf("MarkRunSucceeded: %w", err)
	}
	return nil
}

// MarkRunFailedWithClient sets status=FAILED, finished_ts and error_message.
// Failures are logged only; the caller is already handling runErr.
func MarkRunFailedWithClient(ctx context.Context, client *bigquery.Client, datasetID, runID string, runErr error) {
	log := logger.FromContext(ctx)

	errMsg := ""
	if runErr != nil {
		errMsg = truncate(runErr.Error(), maxErrorLen)
	}

	sql := fmt.Sprintf(`
		UPDATE %s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE run_id = @run_id
	`, tableRef(client.Project(), datasetID, processingRunsTable))

	err := runDML(ctx, client, sql, []bigquery.QueryParameter{
		{Name: "status", Value: RunStatusFailed},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errMsg},
		{Name: "run_id", Value: runID},
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("run_id", runID).
			Msg("MarkRunFailed: updating processing run")
	}
}

// ListRunsWithClient returns the most recent processing runs, newest first.
func ListRunsWithClient(ctx context.Context, client *bigquery.Client, datasetID string, limit int) ([]*ProcessingRunRow, error) {
	if limit <= 0 {
		limit = 20
	}
	q := client.Query(fmt.Sprintf(`
		SELECT run_id, company, started_ts, finished_ts, status, error_message,
		       document_count, transaction_count, compliance_rate
		FROM %s
		ORDER BY started_ts DESC
		LIMIT @limit
	`, tableRef(client.Project(), datasetID, processingRunsTable)))
	q.Parameters = []bigquery.QueryParameter{{Name: "limit", Value: limit}}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRuns: query read: %w", err)
	}

	var rows []*ProcessingRunRow
	for {
		var r ProcessingRunRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRuns: iterating rows: %w", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}
