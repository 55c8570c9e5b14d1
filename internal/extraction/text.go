package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
	"github.com/dvloznov/swiss-bookkeeping/internal/llm"
	"github.com/shopspring/decimal"
)

// Defaults applied when the model omits document metadata.
const (
	DefaultLanguage = "de"
	DefaultCurrency = "CHF"
)

type extractedText struct {
	Transactions []extractedRow `json:"transactions"`
	Confidence   float64        `json:"confidence"`
	Language     string         `json:"language"`
	Currency     string         `json:"currency"`
}

type extractedRow struct {
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Payee       string          `json:"payee"`
	Reference   string          `json:"reference"`
	IsIncome    bool            `json:"isIncome"`
}

// ExtractText asks the model to extract transactions from document text.
func ExtractText(ctx context.Context, gen llm.Generator, typ domain.DocumentType, text string) (*domain.ProcessedDocument, error) {
	prompt := BuildExtractionPrompt(typ, text)
	raw, err := gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("ExtractText: generating: %w", err)
	}
	return DecodeExtraction(typ, raw)
}

// DecodeExtraction parses the model answer. Negative amounts are stored as
// absolute values.
func DecodeExtraction(typ domain.DocumentType, raw string) (*domain.ProcessedDocument, error) {
	var out extractedText
	if err := json.Unmarshal([]byte(llm.CleanJSON(raw)), &out); err != nil {
		return nil, fmt.Errorf("DecodeExtraction: unmarshalling model output: %w", err)
	}

	doc := &domain.ProcessedDocument{
		Type:         typ,
		Transactions: make([]domain.ExtractedTransaction, 0, len(out.Transactions)),
		Metadata: domain.DocumentMetadata{
			Confidence:       out.Confidence,
			DocumentLanguage: orDefault(out.Language, DefaultLanguage),
			Currency:         orDefault(out.Currency, DefaultCurrency),
		},
	}
	for _, r := range out.Transactions {
		doc.Transactions = append(doc.Transactions, domain.ExtractedTransaction{
			Date:        strings.TrimSpace(r.Date),
			Amount:      r.Amount.Abs(),
			Description: strings.TrimSpace(r.Description),
			Payee:       strings.TrimSpace(r.Payee),
			Reference:   strings.TrimSpace(r.Reference),
			IsIncome:    r.IsIncome,
		})
	}
	return doc, nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
