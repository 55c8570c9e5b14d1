package categorize

import (
	"strings"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
)

const expertPrompt = "You are a Swiss accounting expert specialising in Swiss GAAP FER and Swiss tax regulations.\n" +
	"Categorize the transaction below according to Swiss accounting standards.\n\n"

const rulesPrompt = "Swiss Accounting Rules to Consider:\n" +
	"1. VAT rates: Standard 7.7%, Reduced 2.5%, Special 3.7%, Zero 0%\n" +
	"2. Account numbering: 1000-1999 Assets, 2000-2999 Liabilities, 3000-3999 Equity, 4000-4999 Revenue, 5000-9999 Expenses\n" +
	"3. Currency: CHF (Swiss Francs)\n" +
	"4. Fiscal year considerations\n" +
	"5. KMU (SME) accounting standards where applicable\n\n"

const responsePrompt = "Return ONLY valid raw JSON with exactly these fields:\n" +
	"{\n" +
	"  \"category\": string (account name from the chart),\n" +
	"  \"accountNumber\": string (4-digit account number from the chart),\n" +
	"  \"confidence\": number between 0 and 1,\n" +
	"  \"vatCode\": one of \"Standard\", \"Reduced\", \"Special\", \"Zero\",\n" +
	"  \"vatRate\": number (percentage),\n" +
	"  \"swissGaapCode\": string (Swiss GAAP FER category),\n" +
	"  \"notes\": string (short explanation),\n" +
	"  \"appliedRules\": array of strings\n" +
	"}\n" +
	"Do NOT wrap the response in code fences.\n\n" +
	"Consider Swiss-specific scenarios:\n" +
	"- Meals and entertainment (50% deductible)\n" +
	"- Vehicle expenses (private use adjustments)\n" +
	"- Insurance premiums (AHV/ALV/UVG)\n" +
	"- Depreciation schedules\n" +
	"- Cross-border transactions with the EU\n" +
	"- Withholding tax implications\n"

// BuildPrompt renders the classification request for one transaction.
func BuildPrompt(tx domain.ExtractedTransaction, chart *domain.ChartOfAccounts) string {
	var sb strings.Builder

	sb.WriteString(expertPrompt)

	sb.WriteString("Transaction Details:\n")
	sb.WriteString("- Date: " + tx.Date + "\n")
	sb.WriteString("- Amount: " + tx.Amount.String() + " CHF\n")
	sb.WriteString("- Description: " + tx.Description + "\n")
	sb.WriteString("- Payee: " + orDefault(tx.Payee, "Unknown") + "\n")
	if tx.IsIncome {
		sb.WriteString("- Type: Income\n")
	} else {
		sb.WriteString("- Type: Expense\n")
	}
	sb.WriteString("- Reference: " + orDefault(tx.Reference, "None") + "\n\n")

	sb.WriteString("Available Chart of Accounts:\n")
	sb.WriteString(FormatChart(chart))
	sb.WriteString("\n")

	sb.WriteString(rulesPrompt)
	sb.WriteString(responsePrompt)

	return sb.String()
}

// FormatChart renders one line per account: "- number: name (type)".
func FormatChart(chart *domain.ChartOfAccounts) string {
	var sb strings.Builder
	sb.WriteString("Accounts:\n")
	if chart == nil {
		return sb.String()
	}
	for _, a := range chart.Accounts {
		sb.WriteString("- ")
		sb.WriteString(a.AccountNumber)
		sb.WriteString(": ")
		sb.WriteString(a.AccountName)
		sb.WriteString(" (")
		sb.WriteString(string(a.AccountType))
		sb.WriteString(")\n")
	}
	return sb.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
