package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

// InsertLedgerEntriesWithClient streams ledger_entries rows.
func InsertLedgerEntriesWithClient(ctx context.Context, client *bigquery.Client, datasetID string, rows []*LedgerEntryRow) error {
	if len(rows) == 0 {
		return nil
	}
	inserter := client.Dataset(datasetID).Table(ledgerEntriesTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertLedgerEntries: inserting rows: %w", err)
	}
	return nil
}

// InsertClassifierOutputsWithClient streams classifier_outputs rows.
func InsertClassifierOutputsWithClient(ctx context.Context, client *bigquery.Client, datasetID string, rows []*ClassifierOutputRow) error {
	if len(rows) == 0 {
		return nil
	}
	inserter := client.Dataset(datasetID).Table(classifierOutputsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertClassifierOutputs: inserting rows: %w", err)
	}
	return nil
}
