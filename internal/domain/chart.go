package domain

import (
	"fmt"
	"strings"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAssets      AccountType = "Assets"
	AccountTypeLiabilities AccountType = "Liabilities"
	AccountTypeEquity      AccountType = "Equity"
	AccountTypeRevenue     AccountType = "Revenue"
	AccountTypeExpenses    AccountType = "Expenses"
)

// ParseAccountType accepts the canonical names case-insensitively, plus singular forms.
func ParseAccountType(s string) (AccountType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "assets", "asset":
		return AccountTypeAssets, nil
	case "liabilities", "liability":
		return AccountTypeLiabilities, nil
	case "equity":
		return AccountTypeEquity, nil
	case "revenue", "revenues", "income":
		return AccountTypeRevenue, nil
	case "expenses", "expense":
		return AccountTypeExpenses, nil
	}
	return "", fmt.Errorf("unknown account type %q", s)
}

// GAAPMapping returns the Swiss GAAP FER balance sheet or income statement section.
func (t AccountType) GAAPMapping() string {
	switch t {
	case AccountTypeAssets:
		return "Assets"
	case AccountTypeLiabilities:
		return "Liabilities"
	case AccountTypeEquity:
		return "Equity"
	case AccountTypeRevenue:
		return "Operating Revenue"
	case AccountTypeExpenses:
		return "Operating Expenses"
	}
	return "Other"
}

type Account struct {
	AccountNumber string      `json:"accountNumber"`
	AccountName   string      `json:"accountName"`
	AccountType   AccountType `json:"accountType"`
	ParentAccount string      `json:"parentAccount,omitempty"`
	IsActive      bool        `json:"isActive"`
}

type Category struct {
	CategoryID       string `json:"categoryId"`
	CategoryName     string `json:"categoryName"`
	AccountNumber    string `json:"accountNumber"`
	Description      string `json:"description"`
	SwissGAAPMapping string `json:"swissGaapMapping,omitempty"`
}

type ChartMetadata struct {
	Standard string `json:"standard"`
	Year     int    `json:"year"`
	Company  string `json:"company"`
}

// ChartOfAccounts is read-only input for one processing run.
type ChartOfAccounts struct {
	Accounts   []Account     `json:"accounts"`
	Categories []Category    `json:"categories"`
	Metadata   ChartMetadata `json:"metadata"`
}

// AccountName looks up an account name by number.
func (c *ChartOfAccounts) AccountName(number string) (string, bool) {
	if c == nil {
		return "", false
	}
	for _, a := range c.Accounts {
		if a.AccountNumber == number {
			return a.AccountName, true
		}
	}
	return "", false
}
