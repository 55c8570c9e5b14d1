package extraction

import (
	"fmt"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
)

const invoicePrompt = `You are a Swiss accounting expert. Extract transaction data from this invoice text in JSON format.

Document text:
%s

Extract the following information:
1. Date (YYYY-MM-DD format)
2. Amount (positive number)
3. Description/Service
4. Payee/Vendor name
5. Invoice number
6. Currency (default CHF)
7. VAT amount if mentioned

Return JSON with this structure:
{
  "transactions": [{
    "date": "2024-01-15",
    "amount": 1200.50,
    "description": "Consulting services",
    "payee": "ABC Company",
    "reference": "INV-2024-001",
    "isIncome": false
  }],
  "confidence": 0.95,
  "language": "de",
  "currency": "CHF"
}

Be precise with Swiss date formats and currency.`

const bankStatementPrompt = `You are a Swiss banking expert. Extract all transactions from this bank statement text in JSON format.

Document text:
%s

Extract each transaction with:
1. Date (YYYY-MM-DD format)
2. Amount (positive number)
3. Description
4. Reference number
5. Determine if income (positive) or expense (negative)

Return JSON with this structure:
{
  "transactions": [{
    "date": "2024-01-15",
    "amount": 1200.50,
    "description": "Salary payment",
    "reference": "REF123456",
    "isIncome": true
  }],
  "confidence": 0.95,
  "language": "de",
  "currency": "CHF"
}

Handle Swiss banking formats and multiple currencies if present.`

const receiptPrompt = `You are a Swiss retail expert. Extract transaction data from this receipt text in JSON format.

Document text:
%s

Extract:
1. Date (YYYY-MM-DD format)
2. Total amount
3. Store/merchant name
4. VAT information

Return JSON with this structure:
{
  "transactions": [{
    "date": "2024-01-15",
    "amount": 45.80,
    "description": "Grocery shopping",
    "payee": "Migros",
    "reference": "receipt-001",
    "isIncome": false
  }],
  "confidence": 0.95,
  "language": "de",
  "currency": "CHF"
}

Handle Swiss retail formats and VAT calculations.`

// BuildExtractionPrompt returns the document-type specific extraction prompt.
func BuildExtractionPrompt(typ domain.DocumentType, text string) string {
	switch typ {
	case domain.DocumentInvoice:
		return fmt.Sprintf(invoicePrompt, text)
	case domain.DocumentBankStatement:
		return fmt.Sprintf(bankStatementPrompt, text)
	default:
		return fmt.Sprintf(receiptPrompt, text)
	}
}
