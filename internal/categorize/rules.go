package categorize

import (
	"strings"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
	"github.com/shopspring/decimal"
)

// Rule names recorded in processingRules.
const (
	RuleSwissVAT     = "Swiss VAT Applied"
	RuleDepreciation = "Depreciation Required"
	RuleWithholding  = "Withholding Tax Check"
	RuleDefault      = "Default Rule"
)

const (
	noteDepreciation = " | Depreciation schedule required"
	noteWithholding  = " | Check withholding tax obligations"
)

var depreciationThreshold = decimal.NewFromInt(1000)

// Rule is one deterministic post-processing step over a partially categorized
// transaction. Apply returns a new value and never mutates its argument.
type Rule interface {
	Name() string
	Apply(partial domain.CategorizedTransaction) domain.CategorizedTransaction
}

// DefaultRules returns the Swiss rules in the order they must run.
func DefaultRules() []Rule {
	return []Rule{
		VATRule{},
		DepreciationRule{},
		WithholdingTaxRule{},
	}
}

// ApplyRules runs rules in order.
func ApplyRules(rules []Rule, partial domain.CategorizedTransaction) domain.CategorizedTransaction {
	out := partial.Clone()
	for _, r := range rules {
		out = r.Apply(out)
	}
	return out
}

// VATRule sets the Swiss VAT rate for expenses from description keywords,
// overriding the classifier's suggestion.
type VATRule struct{}

func (VATRule) Name() string { return RuleSwissVAT }

func (r VATRule) Apply(p domain.CategorizedTransaction) domain.CategorizedTransaction {
	if p.IsIncome || !p.Amount.IsPositive() {
		return p
	}
	out := p.Clone()
	code := VATCodeFor(p.Description)
	out.VATCode = string(code)
	out.VATRate = domain.Float(code.Rate())
	out.ProcessingRules = append(out.ProcessingRules, r.Name())
	return out
}

// VATCodeFor picks the rate class by case-insensitive keyword match.
func VATCodeFor(description string) domain.VATCode {
	d := strings.ToLower(description)
	switch {
	case containsAny(d, "food", "medicine"):
		return domain.VATReduced
	case containsAny(d, "hotel", "accommodation"):
		return domain.VATSpecial
	default:
		return domain.VATStandard
	}
}

// DepreciationRule flags capital purchases above CHF 1000.
type DepreciationRule struct{}

func (DepreciationRule) Name() string { return RuleDepreciation }

func (r DepreciationRule) Apply(p domain.CategorizedTransaction) domain.CategorizedTransaction {
	if !p.Amount.GreaterThan(depreciationThreshold) {
		return p
	}
	if !containsAny(strings.ToLower(p.Description), "equipment", "vehicle", "furniture") {
		return p
	}
	out := p.Clone()
	out.DepreciationRequired = true
	out.ProcessingRules = append(out.ProcessingRules, r.Name())
	out.Notes += noteDepreciation
	return out
}

// WithholdingTaxRule flags investment income subject to Swiss withholding tax.
type WithholdingTaxRule struct{}

func (WithholdingTaxRule) Name() string { return RuleWithholding }

func (r WithholdingTaxRule) Apply(p domain.CategorizedTransaction) domain.CategorizedTransaction {
	if !p.IsIncome {
		return p
	}
	if !containsAny(strings.ToLower(p.Description), "dividend", "interest", "royalty") {
		return p
	}
	out := p.Clone()
	out.WithholdingTaxReview = true
	out.ProcessingRules = append(out.ProcessingRules, r.Name())
	out.Notes += noteWithholding
	return out
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
