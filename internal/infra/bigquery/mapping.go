package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/swiss-bookkeeping/internal/categorize"
	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
	"github.com/dvloznov/swiss-bookkeeping/internal/llm"
	"github.com/google/uuid"
)

// DefaultCurrency is written for ledger entries; documents are booked in CHF.
const DefaultCurrency = "CHF"

// NewLedgerEntryRows maps categorized transactions to ledger_entries rows.
func NewLedgerEntryRows(runID string, txs []domain.CategorizedTransaction, created time.Time) []*LedgerEntryRow {
	rows := make([]*LedgerEntryRow, 0, len(txs))
	for _, tx := range txs {
		entryID := tx.ID
		if entryID == "" {
			entryID = uuid.NewString()
		}
		row := &LedgerEntryRow{
			EntryID:         entryID,
			RunID:           runID,
			TransactionRef:  tx.CompositeID(),
			BookingDate:     nullDate(tx.Date),
			RawDate:         tx.Date,
			Amount:          tx.Amount.Rat(),
			Currency:        DefaultCurrency,
			Description:     tx.Description,
			Payee:           nullString(tx.Payee),
			Reference:       nullString(tx.Reference),
			IsIncome:        tx.IsIncome,
			AccountNumber:   tx.AccountNumber,
			Category:        tx.SuggestedCategory,
			Confidence:      bigquery.NullFloat64{Float64: tx.Confidence, Valid: true},
			VATCode:         nullString(tx.VATCode),
			SwissGAAPCode:   nullString(tx.SwissGAAPCode),
			Notes:           nullString(tx.Notes),
			ProcessingRules: append([]string{}, tx.ProcessingRules...),
			CreatedTS:       created,
		}
		if tx.VATRate != nil {
			row.VATRate = bigquery.NullFloat64{Float64: *tx.VATRate, Valid: true}
		}
		rows = append(rows, row)
	}
	return rows
}

// NewClassifierOutputRow maps one classifier invocation to a classifier_outputs row.
func NewClassifierOutputRow(runID, model string, o categorize.Outcome, created time.Time) *ClassifierOutputRow {
	row := &ClassifierOutputRow{
		OutputID:       uuid.NewString(),
		RunID:          runID,
		TransactionRef: o.Transaction.CompositeID(),
		ModelName:      model,
		Prompt:         nullString(o.Prompt),
		CreatedTS:      created,
	}
	if o.Result != nil && o.Result.Raw != "" {
		row.RawJSON = bigquery.NullJSON{JSONVal: llm.CleanJSON(o.Result.Raw), Valid: true}
	}
	if o.Err != nil {
		row.ErrorMessage = nullString(truncate(o.Err.Error(), maxErrorLen))
	}
	return row
}

const maxErrorLen = 2000

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
