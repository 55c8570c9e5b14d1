package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
	"github.com/shopspring/decimal"
)

// BOM is prepended to every exported file so spreadsheet tools detect UTF-8.
const BOM = "\ufeff"

const (
	currencyCHF = "CHF"
	dateFormat  = "2006-01-02"
)

var hundred = decimal.NewFromInt(100)

// VATAmount extracts the VAT contained in a VAT-inclusive amount:
// amount * rate / (100 + rate).
func VATAmount(amount decimal.Decimal, rate float64) decimal.Decimal {
	r := decimal.NewFromFloat(rate)
	denom := hundred.Add(r)
	if denom.IsZero() {
		return decimal.Zero
	}
	return amount.Mul(r).Div(denom)
}

// NetAmount is the amount without its contained VAT.
func NetAmount(amount decimal.Decimal, rate float64) decimal.Decimal {
	return amount.Sub(VATAmount(amount, rate))
}

// TaxPeriod returns "{year}-Q{quarter}" for a YYYY-MM-DD date, or "" when the
// date cannot be parsed.
func TaxPeriod(date string) string {
	t, ok := parseDate(date)
	if !ok {
		return ""
	}
	quarter := (int(t.Month()) + 2) / 3
	return fmt.Sprintf("%d-Q%d", t.Year(), quarter)
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{dateFormat, "2006-1-2"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DocumentType infers the source document from the reference field.
func DocumentType(reference string) string {
	switch {
	case strings.Contains(reference, "INV"):
		return "Invoice"
	case strings.Contains(reference, "REC"):
		return "Receipt"
	case strings.Contains(reference, "BANK"):
		return "Bank Statement"
	default:
		return "Unknown"
	}
}

// VATDeductible is true for expenses carrying a positive VAT rate.
func VATDeductible(tx domain.CategorizedTransaction) bool {
	return tx.IsExpense() && tx.VATRate != nil && *tx.VATRate > 0
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func fixed2(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func rateOr(rate *float64, def string) string {
	if rate == nil {
		return def
	}
	return number(*rate)
}
