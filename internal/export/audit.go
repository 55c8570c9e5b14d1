package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
)

// isoMillis is ISO 8601 in UTC with millisecond precision.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

var auditDetailHeader = []string{
	"Transaction Date", "Original Description", "Final Category", "Account Number",
	"Amount", "Confidence", "Processing Steps", "AI Rationale",
}

// WriteAuditTrail writes processing metadata followed by one row per transaction.
func WriteAuditTrail(w io.Writer, trail domain.AuditTrail) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"Swiss Accounting Audit Trail"},
		{""},
		{"Processing Information"},
		{"Field", "Value"},
		{"Processing ID", trail.ProcessingID},
		{"Timestamp", trail.Timestamp.UTC().Format(isoMillis)},
		{"System Version", trail.SystemInfo.Version},
		{"Processor", trail.SystemInfo.Processor},
		{"AI Model", trail.SystemInfo.AIModel},
		{""},
		{"Transaction Processing Details"},
		auditDetailHeader,
	}

	for _, e := range trail.Transactions {
		rows = append(rows, []string{
			e.OriginalTransaction.Date,
			e.OriginalTransaction.Description,
			e.CategorizedTransaction.SuggestedCategory,
			e.CategorizedTransaction.AccountNumber,
			money(e.OriginalTransaction.Amount),
			fixed2(e.CategorizedTransaction.Confidence),
			joinSteps(e.ProcessingSteps),
			e.AIDecisionRationale,
		})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("WriteAuditTrail: %w", err)
	}
	return nil
}

func joinSteps(steps []domain.ProcessingStep) string {
	parts := make([]string, 0, len(steps))
	for _, s := range steps {
		parts = append(parts, s.Step+": "+s.Result)
	}
	return strings.Join(parts, " | ")
}
