package domain

import (
	"github.com/shopspring/decimal"
)

// ExtractedTransaction is one raw transaction as produced by document extraction.
// Optional fields are empty strings when absent.
type ExtractedTransaction struct {
	// ID is a surrogate identifier assigned at extraction time.
	ID          string          `json:"id,omitempty"`
	Date        string          `json:"date" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Description string          `json:"description" validate:"required"`
	Payee       string          `json:"payee,omitempty"`
	Account     string          `json:"account,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	Category    string          `json:"category,omitempty"`
	IsIncome    bool            `json:"isIncome"`
}

// CompositeID returns the date-amount-reference key used in compliance reports.
// Distinct transactions sharing all three fields collide.
func (t ExtractedTransaction) CompositeID() string {
	return t.Date + "-" + t.Amount.String() + "-" + t.Reference
}

// IsExpense reports whether the transaction is money going out.
func (t ExtractedTransaction) IsExpense() bool {
	return !t.IsIncome
}

// CategorizedTransaction is an ExtractedTransaction enriched with accounting metadata.
// Values are created by the categorization stage and only read afterwards.
type CategorizedTransaction struct {
	ExtractedTransaction

	SuggestedCategory string   `json:"suggestedCategory"`
	AccountNumber     string   `json:"accountNumber"`
	Confidence        float64  `json:"confidence"`
	SwissGAAPCode     string   `json:"swissGaapCode,omitempty"`
	VATCode           string   `json:"vatCode,omitempty"`
	VATRate           *float64 `json:"vatRate,omitempty"`
	Notes             string   `json:"notes"`
	ProcessingRules   []string `json:"processingRules"`

	DepreciationRequired bool `json:"depreciationRequired,omitempty"`
	WithholdingTaxReview bool `json:"withholdingTaxReview,omitempty"`
}

// Rate returns the VAT rate or 0 when none is set.
func (c CategorizedTransaction) Rate() float64 {
	if c.VATRate == nil {
		return 0
	}
	return *c.VATRate
}

// Clone returns a deep copy so callers can derive a new record without sharing slices.
func (c CategorizedTransaction) Clone() CategorizedTransaction {
	out := c
	if c.VATRate != nil {
		r := *c.VATRate
		out.VATRate = &r
	}
	out.ProcessingRules = append(make([]string, 0, len(c.ProcessingRules)), c.ProcessingRules...)
	return out
}

// Float returns a pointer to v, for optional rate fields.
func Float(v float64) *float64 {
	return &v
}
