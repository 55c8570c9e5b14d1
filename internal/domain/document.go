package domain

import "time"

// DocumentType is the declared or detected kind of an input document.
type DocumentType string

const (
	DocumentInvoice       DocumentType = "invoice"
	DocumentReceipt       DocumentType = "receipt"
	DocumentBankStatement DocumentType = "bank_statement"
)

type DocumentMetadata struct {
	FileName         string    `json:"fileName"`
	ProcessedAt      time.Time `json:"processedAt"`
	Confidence       float64   `json:"confidence"`
	DocumentLanguage string    `json:"documentLanguage"`
	Currency         string    `json:"currency"`
}

// ProcessedDocument is the output of extracting a single document.
type ProcessedDocument struct {
	Type         DocumentType           `json:"type"`
	Transactions []ExtractedTransaction `json:"transactions"`
	Metadata     DocumentMetadata       `json:"metadata"`
}
