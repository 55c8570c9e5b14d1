package bigquery

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/swiss-bookkeeping/internal/categorize"
	"github.com/dvloznov/swiss-bookkeeping/internal/classifier"
	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var created = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func TestNewLedgerEntryRows(t *testing.T) {
	txs := []domain.CategorizedTransaction{
		{
			ExtractedTransaction: domain.ExtractedTransaction{
				ID:          "b5c1",
				Date:        "2024-01-15",
				Amount:      decimal.RequireFromString("1250.40"),
				Description: "Laptop",
				Payee:       "Digitec",
				Reference:   "INV-7",
			},
			SuggestedCategory: "IT Equipment",
			AccountNumber:     "1520",
			Confidence:        0.91,
			VATCode:           "Standard",
			VATRate:           domain.Float(7.7),
			ProcessingRules:   []string{categorize.RuleSwissVAT, categorize.RuleDepreciation},
		},
		{
			ExtractedTransaction: domain.ExtractedTransaction{
				Date:        "15.01.2024",
				Amount:      decimal.RequireFromString("10"),
				Description: "Interest",
				IsIncome:    true,
			},
			SuggestedCategory: "Interest Income",
			AccountNumber:     "6850",
		},
	}

	rows := NewLedgerEntryRows("run-1", txs, created)
	require.Len(t, rows, 2)

	r := rows[0]
	assert.Equal(t, "b5c1", r.EntryID)
	assert.Equal(t, "run-1", r.RunID)
	assert.Equal(t, "2024-01-15-1250.4-INV-7", r.TransactionRef)
	assert.True(t, r.BookingDate.Valid)
	assert.Equal(t, civil.Date{Year: 2024, Month: time.January, Day: 15}, r.BookingDate.Date)
	assert.Equal(t, "1250.4", r.Amount.FloatString(1))
	assert.Equal(t, "CHF", r.Currency)
	assert.Equal(t, "Digitec", r.Payee.StringVal)
	assert.True(t, r.VATRate.Valid)
	assert.InDelta(t, 7.7, r.VATRate.Float64, 1e-9)
	assert.Equal(t, []string{"Swiss VAT Applied", "Depreciation Required"}, r.ProcessingRules)
	assert.Equal(t, created, r.CreatedTS)

	r = rows[1]
	assert.NotEmpty(t, r.EntryID, "a surrogate id is generated when missing")
	assert.False(t, r.BookingDate.Valid)
	assert.Equal(t, "15.01.2024", r.RawDate)
	assert.False(t, r.Payee.Valid)
	assert.False(t, r.VATRate.Valid)
	assert.True(t, r.IsIncome)
	assert.NotNil(t, r.ProcessingRules)
}

func TestNewClassifierOutputRow(t *testing.T) {
	tx := domain.ExtractedTransaction{Date: "2024-01-15", Amount: decimal.RequireFromString("5"), Reference: "R1"}

	ok := NewClassifierOutputRow("run-1", "gemini-2.5-flash", categorize.Outcome{
		Transaction: tx,
		Prompt:      "prompt",
		Result:      &classifier.Result{Raw: "```json\n{\"category\":\"Fees\"}\n```"},
	}, created)
	assert.Equal(t, "2024-01-15-5-R1", ok.TransactionRef)
	assert.Equal(t, "gemini-2.5-flash", ok.ModelName)
	assert.Equal(t, `{"category":"Fees"}`, ok.RawJSON.JSONVal)
	assert.True(t, ok.RawJSON.Valid)
	assert.False(t, ok.ErrorMessage.Valid)

	failed := NewClassifierOutputRow("run-1", "m", categorize.Outcome{
		Transaction: tx,
		Err:         errors.New(strings.Repeat("x", 3000)),
	}, created)
	assert.False(t, failed.RawJSON.Valid)
	assert.Len(t, failed.ErrorMessage.StringVal, maxErrorLen)
}

func TestReadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_second.sql":   {Data: []byte("CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.b` (id INT64);")},
		"0001_first.sql":    {Data: []byte("CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.a` (id INT64);")},
		"001_invalid.sql":   {Data: []byte("-- wrong number format")},
		"0003_test":         {Data: []byte("-- missing .sql")},
		"0004.sql":          {Data: []byte("-- missing name")},
		"README.md":         {Data: []byte("docs")},
		"nested/0005_x.sql": {Data: []byte("-- in a subdirectory")},
	}

	migrations, err := ReadMigrations(fsys, "proj", "books")
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "first", migrations[0].Name)
	assert.Equal(t, "CREATE TABLE `proj.books.a` (id INT64);", migrations[0].SQL)
	assert.Equal(t, 2, migrations[1].Version)

	again, err := ReadMigrations(fsys, "other", "dataset")
	require.NoError(t, err)
	assert.Equal(t, migrations[0].Checksum, again[0].Checksum, "checksum ignores placeholders")
	assert.NotEqual(t, migrations[0].Checksum, migrations[1].Checksum)
}

func TestReadMigrations_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"0001_a.sql": {Data: []byte("a")},
		"0001_b.sql": {Data: []byte("b")},
	}
	_, err := ReadMigrations(fsys, "p", "d")
	assert.ErrorContains(t, err, "migration version 0001")
}

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := ReadMigrations(Migrations(), "proj", "books")
	require.NoError(t, err)

	var names []string
	for _, m := range migrations {
		names = append(names, m.Name)
		assert.NotContains(t, m.SQL, "{{")
	}
	assert.Equal(t, []string{"create_processing_runs", "create_ledger_entries", "create_classifier_outputs"}, names)
}

func TestPending(t *testing.T) {
	migrations := []Migration{
		{Version: 1, Filename: "0001_a.sql", Checksum: strings.Repeat("a", 64)},
		{Version: 2, Filename: "0002_b.sql", Checksum: strings.Repeat("b", 64)},
	}

	pending, err := Pending(migrations, []AppliedMigration{{Version: 1, Checksum: strings.Repeat("a", 64)}})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Version)

	pending, err = Pending(migrations, nil)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = Pending(migrations, []AppliedMigration{{Version: 1, Checksum: "changed"}})
	assert.ErrorContains(t, err, "0001_a.sql was modified")
}
