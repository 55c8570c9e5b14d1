package compliance

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
)

// Mode selects how compliantTransactions is counted.
type Mode int

const (
	// ModeGlobal counts a transaction as compliant only while the batch-wide
	// violation list is still empty when it is examined.
	ModeGlobal Mode = iota
	// ModePerTransaction counts a transaction as compliant when it has no violations of its own.
	ModePerTransaction
)

// ParseMode maps the config value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "global":
		return ModeGlobal, nil
	case "per_transaction":
		return ModePerTransaction, nil
	}
	return ModeGlobal, fmt.Errorf("compliance: unknown mode %q", s)
}

const (
	DefaultLowConfidence = 0.7

	minAccountNumber = 1000
	maxAccountNumber = 9999
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Validator checks categorized transactions against Swiss bookkeeping rules.
type Validator struct {
	mode          Mode
	lowConfidence float64
}

type Option func(*Validator)

func WithMode(m Mode) Option {
	return func(v *Validator) { v.mode = m }
}

// WithLowConfidence sets the confidence below which a warning is raised.
func WithLowConfidence(threshold float64) Option {
	return func(v *Validator) { v.lowConfidence = threshold }
}

func NewValidator(opts ...Option) *Validator {
	v := &Validator{mode: ModeGlobal, lowConfidence: DefaultLowConfidence}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs the default validator.
func Validate(txs []domain.CategorizedTransaction) domain.ComplianceReport {
	return NewValidator().Validate(txs)
}

// Validate is deterministic and has no side effects. An empty batch is vacuously
// compliant with a rate of 1.
func (v *Validator) Validate(txs []domain.CategorizedTransaction) domain.ComplianceReport {
	report := domain.ComplianceReport{
		Violations: []domain.ComplianceViolation{},
		Warnings:   []domain.ComplianceWarning{},
	}

	seen := make(map[string]bool, len(txs))
	compliant := 0
	for _, tx := range txs {
		id := tx.CompositeID()

		own := checkTransaction(id, tx)
		report.Violations = append(report.Violations, own...)

		if tx.Confidence < v.lowConfidence {
			report.Warnings = append(report.Warnings, domain.ComplianceWarning{
				TransactionID: id,
				Type:          domain.WarningUncertainty,
				Description:   "Low confidence categorization (" + formatNumber(tx.Confidence) + ")",
				Suggestion:    "Manual review recommended",
			})
		}
		if seen[id] {
			report.Warnings = append(report.Warnings, domain.ComplianceWarning{
				TransactionID: id,
				Type:          domain.WarningDuplicateEntry,
				Description:   "Another transaction shares date, amount and reference",
				Suggestion:    "Verify the entry is not booked twice",
			})
		}
		seen[id] = true

		switch v.mode {
		case ModePerTransaction:
			if len(own) == 0 {
				compliant++
			}
		default:
			if len(report.Violations) == 0 {
				compliant++
			}
		}
	}

	report.IsCompliant = len(report.Violations) == 0
	report.Summary = domain.ComplianceSummary{
		TotalTransactions:     len(txs),
		CompliantTransactions: compliant,
		ComplianceRate:        Rate(compliant, len(txs)),
	}
	return report
}

// Rate returns compliant/total, or 1 for an empty batch.
func Rate(compliant, total int) float64 {
	if total == 0 {
		return 1
	}
	return float64(compliant) / float64(total)
}

func checkTransaction(id string, tx domain.CategorizedTransaction) []domain.ComplianceViolation {
	var out []domain.ComplianceViolation
	if !ValidAccountNumber(tx.AccountNumber) {
		out = append(out, domain.ComplianceViolation{
			TransactionID: id,
			Type:          domain.ViolationInvalidAccount,
			Description:   fmt.Sprintf("Account number %s is not valid Swiss format", tx.AccountNumber),
			Severity:      domain.SeverityHigh,
			Suggestion:    "Use Swiss standard account numbering (1000-9999)",
		})
	}
	if !ValidDate(tx.Date) {
		out = append(out, domain.ComplianceViolation{
			TransactionID: id,
			Type:          domain.ViolationDateFormat,
			Description:   "Date format is not ISO 8601 compliant",
			Severity:      domain.SeverityMedium,
			Suggestion:    "Use YYYY-MM-DD format",
		})
	}
	return out
}

// ValidAccountNumber reports whether s is an integer within the Swiss KMU range 1000-9999.
func ValidAccountNumber(s string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return n >= minAccountNumber && n <= maxAccountNumber
}

// ValidDate is a shape check only: four digits, two digits, two digits.
func ValidDate(s string) bool {
	return isoDatePattern.MatchString(s)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
