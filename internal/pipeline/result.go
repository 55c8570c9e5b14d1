package pipeline

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
	"github.com/dvloznov/swiss-bookkeeping/internal/export"
	"github.com/shopspring/decimal"
)

// Result is everything one processing run produced.
type Result struct {
	ID               string                          `json:"resultId"`
	RunID            string                          `json:"runId"`
	Transactions     []domain.CategorizedTransaction `json:"transactions"`
	ComplianceReport domain.ComplianceReport         `json:"complianceReport"`
	AuditTrail       domain.AuditTrail               `json:"auditTrail"`
	ExportFiles      *export.Package                 `json:"exportFiles"`
	Summary          Summary                         `json:"summary"`
	SkippedDocuments []string                        `json:"skippedDocuments,omitempty"`
}

type Summary struct {
	TotalTransactions int             `json:"totalTransactions"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	ComplianceRate    float64         `json:"complianceRate"`
	ProcessingTimeMs  int64           `json:"processingTime"`
}

// ResultID names a stored result after the time it was produced.
func ResultID(t time.Time) string {
	return "result-" + strconv.FormatInt(t.UnixMilli(), 10)
}

// TotalAmount sums transaction amounts regardless of direction.
func TotalAmount(txs []domain.CategorizedTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}

// File returns the stored location of one export document by its kind:
// general-ledger, tax-report, compliance-report or audit-trail.
func (r *Result) File(kind string) (string, error) {
	if r.ExportFiles == nil {
		return "", fmt.Errorf("result %s has no export files", r.ID)
	}
	switch kind {
	case "general-ledger":
		return r.ExportFiles.GeneralLedger, nil
	case "tax-report":
		return r.ExportFiles.TaxReport, nil
	case "compliance-report":
		return r.ExportFiles.ComplianceReport, nil
	case "audit-trail":
		return r.ExportFiles.AuditTrail, nil
	}
	return "", fmt.Errorf("invalid download type %q", kind)
}

// RunError is returned by Service.Process when a run cannot complete.
type RunError struct {
	Message string
	Detail  string
	Err     error
}

func (e *RunError) Error() string {
	return e.Message + ": " + e.Detail
}

func (e *RunError) Unwrap() error {
	return e.Err
}
