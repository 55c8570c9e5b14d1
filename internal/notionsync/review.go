package notionsync

import (
	"fmt"
	"strings"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
	"github.com/shopspring/decimal"
)

// ReviewItem is one transaction a bookkeeper should look at.
type ReviewItem struct {
	TransactionID string // composite id, stable across re-runs of the same document
	EntryID       string
	Date          string
	Amount        decimal.Decimal
	Description   string
	Category      string
	Account       string
	Reason        string
}

// ReviewItems selects transactions below the confidence threshold or named by a
// violation in report. Order follows txs.
func ReviewItems(txs []domain.CategorizedTransaction, report *domain.ComplianceReport, lowConfidence float64) []ReviewItem {
	violations := make(map[string][]string)
	if report != nil {
		for _, v := range report.Violations {
			violations[v.TransactionID] = append(violations[v.TransactionID], v.Description)
		}
	}

	var items []ReviewItem
	seen := make(map[string]bool)
	for _, tx := range txs {
		id := tx.CompositeID()
		if seen[id] {
			continue
		}

		var reasons []string
		if tx.Confidence < lowConfidence {
			reasons = append(reasons, fmt.Sprintf("Low confidence categorization (%s)", decimal.NewFromFloat(tx.Confidence).String()))
		}
		reasons = append(reasons, violations[id]...)
		if len(reasons) == 0 {
			continue
		}
		seen[id] = true

		items = append(items, ReviewItem{
			TransactionID: id,
			EntryID:       tx.ID,
			Date:          tx.Date,
			Amount:        tx.Amount,
			Description:   tx.Description,
			Category:      tx.SuggestedCategory,
			Account:       tx.AccountNumber,
			Reason:        strings.Join(reasons, "; "),
		})
	}
	return items
}
