package audit

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
)

const (
	SystemVersion = "1.0.0"
	ProcessorName = "Swiss Accounting Intelligence"
)

const (
	StepDocumentProcessing = "Document Processing"
	StepAICategorization   = "AI Categorization"
	StepComplianceCheck    = "Swiss Compliance Check"
)

// Builder reconstructs the processing narrative of a run.
type Builder struct {
	now     func() time.Time
	aiModel string
}

type Option func(*Builder)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

func NewBuilder(aiModel string, opts ...Option) *Builder {
	b := &Builder{now: time.Now, aiModel: aiModel}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildTrail returns one entry per transaction, in input order. processingId is
// derived from the clock in milliseconds and is not unique across calls within
// the same millisecond.
func (b *Builder) BuildTrail(txs []domain.CategorizedTransaction) domain.AuditTrail {
	now := b.now()

	entries := make([]domain.AuditTransactionEntry, 0, len(txs))
	for _, tx := range txs {
		entries = append(entries, domain.AuditTransactionEntry{
			OriginalTransaction:    tx.ExtractedTransaction,
			CategorizedTransaction: tx.Clone(),
			ProcessingSteps:        steps(tx, now),
			AIDecisionRationale:    Rationale(tx),
		})
	}

	return domain.AuditTrail{
		ProcessingID: ProcessingID(now),
		Timestamp:    now,
		Transactions: entries,
		SystemInfo: domain.SystemInfo{
			Version:   SystemVersion,
			Processor: ProcessorName,
			AIModel:   b.aiModel,
		},
	}
}

// ProcessingID formats "audit-<unix ms>".
func ProcessingID(t time.Time) string {
	return fmt.Sprintf("audit-%d", t.UnixMilli())
}

func steps(tx domain.CategorizedTransaction, at time.Time) []domain.ProcessingStep {
	return []domain.ProcessingStep{
		{
			Step:        StepDocumentProcessing,
			Timestamp:   at,
			Description: "Transaction extracted from document",
			Result:      "Success",
		},
		{
			Step:        StepAICategorization,
			Timestamp:   at,
			Description: "AI-powered categorization applied",
			Result:      "Category: " + tx.SuggestedCategory,
		},
		{
			Step:        StepComplianceCheck,
			Timestamp:   at,
			Description: "Swiss accounting rules validated",
			Result:      "Confidence: " + formatNumber(tx.Confidence),
		},
	}
}

// Rationale is the templated explanation of a categorization decision.
// A missing VAT rate renders as 0.
func Rationale(tx domain.CategorizedTransaction) string {
	return fmt.Sprintf("Transaction categorized as %s based on %s. VAT rate: %s%%. Confidence: %s",
		tx.SuggestedCategory,
		strings.Join(tx.ProcessingRules, ", "),
		formatNumber(tx.Rate()),
		formatNumber(tx.Confidence),
	)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
