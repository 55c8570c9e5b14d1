package extraction

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	colStmtDate = iota
	colStmtDesc
	colStmtAmount
	colStmtRef
	numStmtFields
)

// ParseBankStatementCSV reads "date,description,amount,reference" rows after a
// header row. Positive amounts are income; amounts are stored as absolute values
// and the description doubles as payee. Incomplete rows are skipped.
func ParseBankStatementCSV(r io.Reader) ([]domain.ExtractedTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ParseBankStatementCSV: reading CSV: %w", err)
	}
	if len(records) <= 1 {
		return []domain.ExtractedTransaction{}, nil
	}

	txs := make([]domain.ExtractedTransaction, 0, len(records)-1)
	for _, rec := range records[1:] {
		tx, ok := UnmarshalStatementRow(rec)
		if !ok {
			continue
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// UnmarshalStatementRow converts one statement row; ok is false for rows to skip.
func UnmarshalStatementRow(rec []string) (domain.ExtractedTransaction, bool) {
	if len(rec) < numStmtFields {
		return domain.ExtractedTransaction{}, false
	}
	date := strings.TrimSpace(rec[colStmtDate])
	desc := strings.TrimSpace(rec[colStmtDesc])
	amount, err := parseAmount(rec[colStmtAmount])
	if date == "" || desc == "" || err != nil || amount.IsZero() {
		return domain.ExtractedTransaction{}, false
	}

	return domain.ExtractedTransaction{
		Date:        date,
		Amount:      amount.Abs(),
		Description: desc,
		Payee:       desc,
		Reference:   strings.TrimSpace(rec[colStmtRef]),
		IsIncome:    amount.IsPositive(),
	}, true
}

// parseAmount accepts Swiss thousands separators such as 1'250.40.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("'", "", "’", "", " ", "").Replace(s)
	return decimal.NewFromString(s)
}
