package audit

import (
	"testing"
	"time"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func categorized(desc, category string, rules []string, rate *float64, confidence float64) domain.CategorizedTransaction {
	return domain.CategorizedTransaction{
		ExtractedTransaction: domain.ExtractedTransaction{
			Date:        "2024-03-15",
			Amount:      decimal.RequireFromString("250.00"),
			Description: desc,
			Reference:   "REC-1",
		},
		SuggestedCategory: category,
		AccountNumber:     "6500",
		Confidence:        confidence,
		VATRate:           rate,
		ProcessingRules:   rules,
	}
}

func TestBuildTrail(t *testing.T) {
	txs := []domain.CategorizedTransaction{
		categorized("paper", "Büromaterial", []string{"Swiss VAT Applied", "Depreciation Required"}, domain.Float(7.7), 0.95),
		categorized("lunch", "Miscellaneous", []string{"Default Rule"}, domain.Float(7.7), 0.1),
	}

	trail := NewBuilder("gemini-2.5-flash", WithClock(func() time.Time { return fixedNow })).BuildTrail(txs)

	assert.Equal(t, "audit-1710498600000", trail.ProcessingID)
	assert.Equal(t, fixedNow, trail.Timestamp)
	assert.Equal(t, domain.SystemInfo{Version: "1.0.0", Processor: "Swiss Accounting Intelligence", AIModel: "gemini-2.5-flash"}, trail.SystemInfo)
	require.Len(t, trail.Transactions, 2)

	e := trail.Transactions[0]
	assert.Equal(t, txs[0].ExtractedTransaction, e.OriginalTransaction)
	assert.Equal(t, txs[0], e.CategorizedTransaction)
	require.Len(t, e.ProcessingSteps, 3)
	assert.Equal(t, domain.ProcessingStep{Step: "Document Processing", Timestamp: fixedNow, Description: "Transaction extracted from document", Result: "Success"}, e.ProcessingSteps[0])
	assert.Equal(t, "AI Categorization", e.ProcessingSteps[1].Step)
	assert.Equal(t, "Category: Büromaterial", e.ProcessingSteps[1].Result)
	assert.Equal(t, "Swiss Compliance Check", e.ProcessingSteps[2].Step)
	assert.Equal(t, "Confidence: 0.95", e.ProcessingSteps[2].Result)
	assert.Equal(t, "Transaction categorized as Büromaterial based on Swiss VAT Applied, Depreciation Required. VAT rate: 7.7%. Confidence: 0.95", e.AIDecisionRationale)

	assert.Equal(t, "Confidence: 0.1", trail.Transactions[1].ProcessingSteps[2].Result)
}

func TestBuildTrail_Empty(t *testing.T) {
	trail := NewBuilder("m", WithClock(func() time.Time { return fixedNow })).BuildTrail(nil)
	assert.NotNil(t, trail.Transactions)
	assert.Empty(t, trail.Transactions)
	assert.Equal(t, "audit-1710498600000", trail.ProcessingID)
}

func TestBuildTrail_EntryIsIndependentCopy(t *testing.T) {
	txs := []domain.CategorizedTransaction{categorized("x", "Rent", []string{"A"}, domain.Float(3.7), 0.8)}
	trail := NewBuilder("m").BuildTrail(txs)

	trail.Transactions[0].CategorizedTransaction.ProcessingRules[0] = "B"
	assert.Equal(t, "A", txs[0].ProcessingRules[0])
}

func TestRationale_MissingRate(t *testing.T) {
	got := Rationale(categorized("salary", "Revenue", nil, nil, 0.8))
	assert.Equal(t, "Transaction categorized as Revenue based on . VAT rate: 0%. Confidence: 0.8", got)
}
