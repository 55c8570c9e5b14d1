package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
)

// TaxHeader is the VAT report column set.
var TaxHeader = []string{
	"Period", "Transaction Date", "VAT Code", "VAT Rate (%)", "Net Amount", "VAT Amount",
	"Gross Amount", "Supplier/Customer", "Description", "Document Reference",
	"Account Number", "Deductible", "Tax Period",
}

// WriteTaxReport writes the VAT report. A missing rate is shown as the standard
// rate in the rate column while amounts are computed without VAT.
func WriteTaxReport(w io.Writer, txs []domain.CategorizedTransaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(TaxHeader); err != nil {
		return fmt.Errorf("WriteTaxReport: writing header: %w", err)
	}
	for i, tx := range txs {
		if err := cw.Write(MarshalTaxRow(tx)); err != nil {
			return fmt.Errorf("WriteTaxReport: writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func MarshalTaxRow(tx domain.CategorizedTransaction) []string {
	vat := VATAmount(tx.Amount, tx.Rate())
	period := TaxPeriod(tx.Date)

	code := tx.VATCode
	if code == "" {
		code = string(domain.VATStandard)
	}
	deductible := "No"
	if VATDeductible(tx) {
		deductible = "Yes"
	}

	return []string{
		period,
		tx.Date,
		code,
		rateOr(tx.VATRate, number(domain.VATStandard.Rate())),
		money(tx.Amount.Sub(vat)),
		money(vat),
		money(tx.Amount),
		tx.Payee,
		tx.Description,
		tx.Reference,
		tx.AccountNumber,
		deductible,
		period,
	}
}
