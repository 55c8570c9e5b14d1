package extraction

import (
	"path/filepath"
	"strings"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
)

// DetectType guesses the document type from its file name; receipts are the default.
func DetectType(fileName string) domain.DocumentType {
	name := strings.ToLower(filepath.Base(fileName))
	switch {
	case strings.Contains(name, "invoice"):
		return domain.DocumentInvoice
	case strings.Contains(name, "receipt"):
		return domain.DocumentReceipt
	case strings.Contains(name, "bank"), strings.Contains(name, "statement"):
		return domain.DocumentBankStatement
	default:
		return domain.DocumentReceipt
	}
}

func extension(fileName string) string {
	return strings.ToLower(filepath.Ext(fileName))
}
