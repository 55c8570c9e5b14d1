package compliance

import (
	"testing"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(date, account string, confidence float64, ref string) domain.CategorizedTransaction {
	return domain.CategorizedTransaction{
		ExtractedTransaction: domain.ExtractedTransaction{
			Date:        date,
			Amount:      decimal.RequireFromString("100.50"),
			Description: "test",
			Reference:   ref,
		},
		SuggestedCategory: "Office",
		AccountNumber:     account,
		Confidence:        confidence,
	}
}

func violationTypes(r domain.ComplianceReport) []domain.ViolationType {
	var out []domain.ViolationType
	for _, v := range r.Violations {
		out = append(out, v.Type)
	}
	return out
}

func TestValidate_AccountNumber(t *testing.T) {
	tests := []struct {
		account string
		invalid bool
	}{
		{"0999", true},
		{"10000", true},
		{"99999", true},
		{"abc", true},
		{"", true},
		{"4000abc", true},
		{"1000", false},
		{"4000", false},
		{"9999", false},
	}
	for _, tt := range tests {
		t.Run(tt.account, func(t *testing.T) {
			r := Validate([]domain.CategorizedTransaction{tx("2024-01-05", tt.account, 0.9, "R1")})
			if tt.invalid {
				require.Equal(t, []domain.ViolationType{domain.ViolationInvalidAccount}, violationTypes(r))
				v := r.Violations[0]
				assert.Equal(t, domain.SeverityHigh, v.Severity)
				assert.Equal(t, "Account number "+tt.account+" is not valid Swiss format", v.Description)
				assert.Equal(t, "Use Swiss standard account numbering (1000-9999)", v.Suggestion)
				assert.Equal(t, "2024-01-05-100.5-R1", v.TransactionID)
			} else {
				assert.Empty(t, r.Violations)
			}
		})
	}
}

func TestValidate_DateFormat(t *testing.T) {
	tests := []struct {
		date    string
		invalid bool
	}{
		{"2024-1-5", true},
		{"05.01.2024", true},
		{"2024-01-05T00:00:00Z", true},
		{"2024-01-05", false},
		{"2024-13-45", false}, // shape only
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			r := Validate([]domain.CategorizedTransaction{tx(tt.date, "4000", 0.9, "")})
			if tt.invalid {
				require.Equal(t, []domain.ViolationType{domain.ViolationDateFormat}, violationTypes(r))
				assert.Equal(t, domain.SeverityMedium, r.Violations[0].Severity)
				assert.Equal(t, "Use YYYY-MM-DD format", r.Violations[0].Suggestion)
			} else {
				assert.Empty(t, r.Violations)
			}
		})
	}
}

func TestValidate_MultipleViolationsPerTransaction(t *testing.T) {
	r := Validate([]domain.CategorizedTransaction{tx("2024-1-5", "99999", 0.9, "")})

	assert.Equal(t, []domain.ViolationType{domain.ViolationInvalidAccount, domain.ViolationDateFormat}, violationTypes(r))
	assert.False(t, r.IsCompliant)
}

func TestValidate_LowConfidenceWarning(t *testing.T) {
	r := Validate([]domain.CategorizedTransaction{
		tx("2024-01-05", "4000", 0.65, "A"),
		tx("2024-01-05", "4000", 0.75, "B"),
		tx("2024-01-05", "4000", 0.7, "C"),
	})

	require.Len(t, r.Warnings, 1)
	w := r.Warnings[0]
	assert.Equal(t, domain.WarningUncertainty, w.Type)
	assert.Equal(t, "2024-01-05-100.5-A", w.TransactionID)
	assert.Equal(t, "Low confidence categorization (0.65)", w.Description)
	assert.Equal(t, "Manual review recommended", w.Suggestion)
	assert.True(t, r.IsCompliant, "warnings do not affect compliance")
	assert.Equal(t, 3, r.Summary.CompliantTransactions)
}

func TestValidate_CustomThreshold(t *testing.T) {
	r := NewValidator(WithLowConfidence(0.5)).Validate([]domain.CategorizedTransaction{tx("2024-01-05", "4000", 0.65, "A")})
	assert.Empty(t, r.Warnings)
}

// The first transaction is invalid; with global accumulation no later
// transaction is counted compliant even though each is valid on its own.
func TestValidate_GlobalAccumulation(t *testing.T) {
	batch := []domain.CategorizedTransaction{
		tx("2024-01-05", "99999", 0.9, "A"),
		tx("2024-01-06", "4000", 0.9, "B"),
		tx("2024-01-07", "6000", 0.9, "C"),
	}

	r := Validate(batch)

	assert.False(t, r.IsCompliant)
	assert.Len(t, r.Violations, 1)
	assert.Equal(t, 3, r.Summary.TotalTransactions)
	assert.Equal(t, 0, r.Summary.CompliantTransactions)
	assert.Equal(t, 0.0, r.Summary.ComplianceRate)
}

func TestValidate_GlobalAccumulation_InvalidLast(t *testing.T) {
	batch := []domain.CategorizedTransaction{
		tx("2024-01-05", "4000", 0.9, "A"),
		tx("2024-01-06", "4000", 0.9, "B"),
		tx("2024-01-07", "99999", 0.9, "C"),
	}

	r := Validate(batch)

	assert.Equal(t, 2, r.Summary.CompliantTransactions)
	assert.InDelta(t, 2.0/3.0, r.Summary.ComplianceRate, 1e-9)
}

func TestValidate_PerTransactionMode(t *testing.T) {
	batch := []domain.CategorizedTransaction{
		tx("2024-01-05", "99999", 0.9, "A"),
		tx("2024-01-06", "4000", 0.9, "B"),
		tx("2024-01-07", "6000", 0.9, "C"),
	}

	r := NewValidator(WithMode(ModePerTransaction)).Validate(batch)

	assert.False(t, r.IsCompliant)
	assert.Equal(t, 2, r.Summary.CompliantTransactions)
	assert.InDelta(t, 2.0/3.0, r.Summary.ComplianceRate, 1e-9)
}

func TestValidate_EmptyBatch(t *testing.T) {
	for _, batch := range [][]domain.CategorizedTransaction{nil, {}} {
		r := Validate(batch)

		assert.True(t, r.IsCompliant)
		assert.Equal(t, 0, r.Summary.TotalTransactions)
		assert.Equal(t, 0, r.Summary.CompliantTransactions)
		assert.Equal(t, 1.0, r.Summary.ComplianceRate)
		assert.NotNil(t, r.Violations)
		assert.NotNil(t, r.Warnings)
	}
}

func TestValidate_DuplicateCompositeID(t *testing.T) {
	r := Validate([]domain.CategorizedTransaction{
		tx("2024-01-05", "4000", 0.9, "INV-7"),
		tx("2024-01-05", "4000", 0.9, "INV-7"),
	})

	require.Len(t, r.Warnings, 1)
	assert.Equal(t, domain.WarningDuplicateEntry, r.Warnings[0].Type)
	assert.Equal(t, "2024-01-05-100.5-INV-7", r.Warnings[0].TransactionID)
	assert.True(t, r.IsCompliant)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("per_transaction")
	require.NoError(t, err)
	assert.Equal(t, ModePerTransaction, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeGlobal, m)

	_, err = ParseMode("lenient")
	assert.Error(t, err)
}
