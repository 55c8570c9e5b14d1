package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
	"github.com/shopspring/decimal"
)

// LedgerHeader is the general ledger column set.
var LedgerHeader = []string{
	"Date", "Account Number", "Account Name", "Description", "Payee", "Reference",
	"Debit Amount", "Credit Amount", "Currency", "VAT Code", "VAT Rate", "VAT Amount",
	"Swiss GAAP Code", "Document Type", "Confidence", "Processing Notes",
}

const (
	colLedgerDate = iota
	colLedgerAccount
	colLedgerAccountName
	colLedgerDesc
	colLedgerPayee
	colLedgerRef
	colLedgerDebit
	colLedgerCredit
	colLedgerCurrency
	colLedgerVATCode
	colLedgerVATRate
	colLedgerVATAmount
	colLedgerGAAP
	colLedgerDocType
	colLedgerConfidence
	colLedgerNotes
	numLedgerFields
)

// WriteLedger writes the general ledger. Expenses are debits, income is credit.
// Account names come from chart when it knows the account, else the suggested category.
func WriteLedger(w io.Writer, txs []domain.CategorizedTransaction, chart *domain.ChartOfAccounts) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(LedgerHeader); err != nil {
		return fmt.Errorf("WriteLedger: writing header: %w", err)
	}
	for i, tx := range txs {
		if err := cw.Write(MarshalLedgerRow(tx, chart)); err != nil {
			return fmt.Errorf("WriteLedger: writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalLedgerRow converts one transaction to a ledger row.
func MarshalLedgerRow(tx domain.CategorizedTransaction, chart *domain.ChartOfAccounts) []string {
	row := make([]string, numLedgerFields)

	name := tx.SuggestedCategory
	if n, ok := chart.AccountName(tx.AccountNumber); ok {
		name = n
	}

	debit, credit := decimal.Zero, decimal.Zero
	if tx.IsExpense() {
		debit = tx.Amount
	} else {
		credit = tx.Amount
	}

	row[colLedgerDate] = tx.Date
	row[colLedgerAccount] = tx.AccountNumber
	row[colLedgerAccountName] = name
	row[colLedgerDesc] = tx.Description
	row[colLedgerPayee] = tx.Payee
	row[colLedgerRef] = tx.Reference
	row[colLedgerDebit] = money(debit)
	row[colLedgerCredit] = money(credit)
	row[colLedgerCurrency] = currencyCHF
	row[colLedgerVATCode] = tx.VATCode
	row[colLedgerVATRate] = rateOr(tx.VATRate, "0")
	row[colLedgerVATAmount] = money(VATAmount(tx.Amount, tx.Rate()))
	row[colLedgerGAAP] = tx.SwissGAAPCode
	row[colLedgerDocType] = DocumentType(tx.Reference)
	row[colLedgerConfidence] = fixed2(tx.Confidence)
	row[colLedgerNotes] = tx.Notes
	return row
}
