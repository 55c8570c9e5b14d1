package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

const (
	RunStatusRunning = "RUNNING"
	RunStatusSuccess = "SUCCESS"
	RunStatusFailed  = "FAILED"
)

type ProcessingRunRow struct {
	RunID   string `bigquery:"run_id"`  // REQUIRED
	Company string `bigquery:"company"` // NULLABLE

	StartedTS  time.Time              `bigquery:"started_ts"`  // REQUIRED
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"` // NULLABLE

	Status       string              `bigquery:"status"`        // REQUIRED
	ErrorMessage bigquery.NullString `bigquery:"error_message"` // NULLABLE

	DocumentCount    bigquery.NullInt64   `bigquery:"document_count"`    // NULLABLE
	TransactionCount bigquery.NullInt64   `bigquery:"transaction_count"` // NULLABLE
	ComplianceRate   bigquery.NullFloat64 `bigquery:"compliance_rate"`   // NULLABLE
}

type LedgerEntryRow struct {
	EntryID        string `bigquery:"entry_id"`        // REQUIRED
	RunID          string `bigquery:"run_id"`          // REQUIRED
	TransactionRef string `bigquery:"transaction_ref"` // REQUIRED, composite id used in reports

	BookingDate bigquery.NullDate `bigquery:"booking_date"` // NULLABLE, unset when raw_date is not ISO
	RawDate     string            `bigquery:"raw_date"`     // REQUIRED

	Amount   *big.Rat `bigquery:"amount"`   // REQUIRED NUMERIC
	Currency string   `bigquery:"currency"` // REQUIRED

	Description string              `bigquery:"description"` // REQUIRED
	Payee       bigquery.NullString `bigquery:"payee"`       // NULLABLE
	Reference   bigquery.NullString `bigquery:"reference"`   // NULLABLE
	IsIncome    bool                `bigquery:"is_income"`   // REQUIRED

	AccountNumber string               `bigquery:"account_number"`  // REQUIRED
	Category      string               `bigquery:"category"`        // REQUIRED
	Confidence    bigquery.NullFloat64 `bigquery:"confidence"`      // NULLABLE
	VATCode       bigquery.NullString  `bigquery:"vat_code"`        // NULLABLE
	VATRate       bigquery.NullFloat64 `bigquery:"vat_rate"`        // NULLABLE
	SwissGAAPCode bigquery.NullString  `bigquery:"swiss_gaap_code"` // NULLABLE
	Notes         bigquery.NullString  `bigquery:"notes"`           // NULLABLE

	ProcessingRules []string `bigquery:"processing_rules"` // REPEATED STRING

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

type ClassifierOutputRow struct {
	OutputID       string `bigquery:"output_id"`       // REQUIRED
	RunID          string `bigquery:"run_id"`          // REQUIRED
	TransactionRef string `bigquery:"transaction_ref"` // REQUIRED

	ModelName    string              `bigquery:"model_name"`    // REQUIRED
	Prompt       bigquery.NullString `bigquery:"prompt"`        // NULLABLE
	RawJSON      bigquery.NullJSON   `bigquery:"raw_json"`      // NULLABLE
	ErrorMessage bigquery.NullString `bigquery:"error_message"` // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

// nullDate parses an ISO date; other shapes become NULL.
func nullDate(s string) bigquery.NullDate {
	d, err := civil.ParseDate(s)
	if err != nil {
		return bigquery.NullDate{}
	}
	return bigquery.NullDate{Date: d, Valid: true}
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}
