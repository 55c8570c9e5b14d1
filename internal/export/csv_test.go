package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTx() domain.CategorizedTransaction {
	return domain.CategorizedTransaction{
		ExtractedTransaction: domain.ExtractedTransaction{
			Date:        "2024-03-15",
			Amount:      dec("107.70"),
			Description: `Toner, "XL" pack`,
			Payee:       "Pelikan AG",
			Reference:   "INV-2024-001",
		},
		SuggestedCategory: "Office Supplies",
		AccountNumber:     "6500",
		Confidence:        0.923,
		SwissGAAPCode:     "Operating Expenses",
		VATCode:           "Standard",
		VATRate:           domain.Float(7.7),
		Notes:             "line one\nline two",
		ProcessingRules:   []string{"Swiss VAT Applied"},
	}
}

func readAll(t *testing.T, s string) [][]string {
	t.Helper()
	cr := csv.NewReader(strings.NewReader(s))
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteLedger(t *testing.T) {
	chart := &domain.ChartOfAccounts{Accounts: []domain.Account{{AccountNumber: "6500", AccountName: "Büromaterial"}}}
	income := sampleTx()
	income.IsIncome = true
	income.AccountNumber = "3200"
	income.VATRate = nil
	income.VATCode = ""

	var buf bytes.Buffer
	require.NoError(t, WriteLedger(&buf, []domain.CategorizedTransaction{sampleTx(), income}, chart))

	rows := readAll(t, buf.String())
	require.Len(t, rows, 3)
	assert.Equal(t, LedgerHeader, rows[0])
	assert.Equal(t, []string{
		"2024-03-15", "6500", "Büromaterial", `Toner, "XL" pack`, "Pelikan AG", "INV-2024-001",
		"107.70", "0.00", "CHF", "Standard", "7.7", "7.70", "Operating Expenses", "Invoice", "0.92",
		"line one\nline two",
	}, rows[1])

	assert.Equal(t, "Office Supplies", rows[2][colLedgerAccountName], "unknown account falls back to category")
	assert.Equal(t, "0.00", rows[2][colLedgerDebit])
	assert.Equal(t, "107.70", rows[2][colLedgerCredit])
	assert.Equal(t, "0", rows[2][colLedgerVATRate])
	assert.Equal(t, "0.00", rows[2][colLedgerVATAmount])
	assert.Equal(t, "", rows[2][colLedgerVATCode])
}

func TestWriteLedger_EscapingRoundTrip(t *testing.T) {
	tx := sampleTx()
	tx.Description = `Lunch with "Müller, Hans", Zürich`
	tx.Payee = `Café "Sprüngli"`

	var buf bytes.Buffer
	require.NoError(t, WriteLedger(&buf, []domain.CategorizedTransaction{tx}, nil))

	assert.Contains(t, buf.String(), `"Lunch with ""Müller, Hans"", Zürich"`)

	rows := readAll(t, buf.String())
	require.Len(t, rows, 2)
	assert.Equal(t, tx.Description, rows[1][colLedgerDesc])
	assert.Equal(t, tx.Payee, rows[1][colLedgerPayee])
	assert.Equal(t, tx.Notes, rows[1][colLedgerNotes])
}

func TestWriteTaxReport(t *testing.T) {
	noRate := sampleTx()
	noRate.VATRate = nil
	noRate.VATCode = ""
	noRate.Date = "2024-11-02"

	var buf bytes.Buffer
	require.NoError(t, WriteTaxReport(&buf, []domain.CategorizedTransaction{sampleTx(), noRate}))

	rows := readAll(t, buf.String())
	require.Len(t, rows, 3)
	assert.Equal(t, TaxHeader, rows[0])
	assert.Equal(t, []string{
		"2024-Q1", "2024-03-15", "Standard", "7.7", "100.00", "7.70", "107.70",
		"Pelikan AG", `Toner, "XL" pack`, "INV-2024-001", "6500", "Yes", "2024-Q1",
	}, rows[1])
	assert.Equal(t, []string{
		"2024-Q4", "2024-11-02", "Standard", "7.7", "107.70", "0.00", "107.70",
		"Pelikan AG", `Toner, "XL" pack`, "INV-2024-001", "6500", "No", "2024-Q4",
	}, rows[2])
}

func TestWriteComplianceReport_Layout(t *testing.T) {
	r := domain.ComplianceReport{
		IsCompliant: false,
		Violations: []domain.ComplianceViolation{{
			TransactionID: "2024-1-5-10-R", Type: domain.ViolationDateFormat, Severity: domain.SeverityMedium,
			Description: "Date format is not ISO 8601 compliant", Suggestion: "Use YYYY-MM-DD format",
		}},
		Summary: domain.ComplianceSummary{TotalTransactions: 3, CompliantTransactions: 2, ComplianceRate: 2.0 / 3.0},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteComplianceReport(&buf, r))

	want := "Swiss Accounting Compliance Report\n\n" +
		"Summary\n" +
		"Metric,Value\n" +
		"Total Transactions,3\n" +
		"Compliant Transactions,2\n" +
		"Compliance Rate,66.67%\n" +
		"Overall Compliance,FAILED\n\n" +
		"Violations\n" +
		"Transaction ID,Type,Severity,Description,Suggestion\n" +
		"2024-1-5-10-R,DATE_FORMAT,MEDIUM,Date format is not ISO 8601 compliant,Use YYYY-MM-DD format\n\n"
	assert.Equal(t, want, buf.String())
	assert.NotContains(t, buf.String(), "Warnings")
}

func TestComplianceSummary_RoundTrip(t *testing.T) {
	tests := []domain.ComplianceReport{
		{IsCompliant: true, Summary: domain.ComplianceSummary{TotalTransactions: 0, CompliantTransactions: 0, ComplianceRate: 1}},
		{IsCompliant: false, Summary: domain.ComplianceSummary{TotalTransactions: 3, CompliantTransactions: 0, ComplianceRate: 0}},
		{IsCompliant: false, Summary: domain.ComplianceSummary{TotalTransactions: 7, CompliantTransactions: 5, ComplianceRate: 5.0 / 7.0}},
		{
			IsCompliant: true,
			Warnings: []domain.ComplianceWarning{{TransactionID: "x", Type: domain.WarningUncertainty,
				Description: "Low confidence categorization (0.65)", Suggestion: "Manual review recommended"}},
			Summary: domain.ComplianceSummary{TotalTransactions: 1, CompliantTransactions: 1, ComplianceRate: 1},
		},
	}
	for _, r := range tests {
		var buf bytes.Buffer
		buf.WriteString(BOM)
		require.NoError(t, WriteComplianceReport(&buf, r))

		got, err := ReadComplianceSummary(&buf)
		require.NoError(t, err)
		assert.Equal(t, r.Summary.TotalTransactions, got.TotalTransactions)
		assert.Equal(t, r.Summary.CompliantTransactions, got.CompliantTransactions)
		assert.InDelta(t, r.Summary.ComplianceRate, got.ComplianceRate, 0.00005)
		assert.Equal(t, fixed2(r.Summary.ComplianceRate*100), fixed2(got.ComplianceRate*100))
		assert.Equal(t, r.IsCompliant, got.Passed)
	}
}

func TestReadComplianceSummary_Incomplete(t *testing.T) {
	_, err := ReadComplianceSummary(strings.NewReader("Summary\nMetric,Value\nTotal Transactions,3\n"))
	assert.EqualError(t, err, `ReadComplianceSummary: missing "Compliant Transactions"`)

	_, err = ReadComplianceSummary(strings.NewReader("Summary\nMetric,Value\nTotal Transactions,three\n"))
	assert.ErrorContains(t, err, `ReadComplianceSummary: parsing Total Transactions "three"`)
}

func TestWriteAuditTrail(t *testing.T) {
	at := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	tx := sampleTx()
	trail := domain.AuditTrail{
		ProcessingID: "audit-1710498600000",
		Timestamp:    at,
		SystemInfo:   domain.SystemInfo{Version: "1.0.0", Processor: "Swiss Accounting Intelligence", AIModel: "gemini-2.5-flash"},
		Transactions: []domain.AuditTransactionEntry{{
			OriginalTransaction:    tx.ExtractedTransaction,
			CategorizedTransaction: tx,
			ProcessingSteps: []domain.ProcessingStep{
				{Step: "Document Processing", Result: "Success"},
				{Step: "AI Categorization", Result: "Category: Office Supplies"},
			},
			AIDecisionRationale: "Transaction categorized as Office Supplies based on Swiss VAT Applied. VAT rate: 7.7%. Confidence: 0.923",
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAuditTrail(&buf, trail))

	rows := readAll(t, buf.String())
	assert.Equal(t, []string{"Swiss Accounting Audit Trail"}, rows[0])
	assert.Equal(t, []string{"Processing Information"}, rows[1])
	assert.Equal(t, []string{"Processing ID", "audit-1710498600000"}, rows[3])
	assert.Equal(t, []string{"Timestamp", "2024-03-15T10:30:00.000Z"}, rows[4])
	assert.Equal(t, []string{"AI Model", "gemini-2.5-flash"}, rows[7])
	assert.Equal(t, []string{"Transaction Processing Details"}, rows[8])
	assert.Equal(t, auditDetailHeader, rows[9])
	assert.Equal(t, []string{
		"2024-03-15", `Toner, "XL" pack`, "Office Supplies", "6500", "107.70", "0.92",
		"Document Processing: Success | AI Categorization: Category: Office Supplies",
		trail.Transactions[0].AIDecisionRationale,
	}, rows[10])
}
