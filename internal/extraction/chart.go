package extraction

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
)

// ChartHeader is the expected chart of accounts header.
const ChartHeader = "Account Number,Account Name,Account Type,Parent Account"

const (
	colAcctNumber = 0
	colAcctName   = 1
	colAcctType   = 2
	colAcctParent = 3
	minChartCols  = 3
)

// ParseChart reads a chart of accounts CSV. The header row is optional. Any
// malformed row fails the whole chart.
func ParseChart(r io.Reader, meta domain.ChartMetadata) (*domain.ChartOfAccounts, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ParseChart: reading CSV: %w", err)
	}

	chart := &domain.ChartOfAccounts{Metadata: meta}
	seen := make(map[string]int)
	for i, rec := range records {
		line := i + 1
		if isBlank(rec) {
			continue
		}
		if i == 0 && isChartHeader(rec) {
			continue
		}

		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("ParseChart: row %d: %w", line, err)
		}
		if prev, dup := seen[acct.AccountNumber]; dup {
			return nil, fmt.Errorf("ParseChart: row %d: account %s already defined on row %d", line, acct.AccountNumber, prev)
		}
		seen[acct.AccountNumber] = line

		chart.Accounts = append(chart.Accounts, acct)
		chart.Categories = append(chart.Categories, categoryFor(acct))
	}

	if len(chart.Accounts) == 0 {
		return nil, ErrEmptyChart
	}
	return chart, nil
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(rec []string) (domain.Account, error) {
	if len(rec) < minChartCols {
		return domain.Account{}, fmt.Errorf("expected at least %d fields, got %d", minChartCols, len(rec))
	}

	number := strings.TrimSpace(rec[colAcctNumber])
	if _, err := strconv.Atoi(number); err != nil {
		return domain.Account{}, fmt.Errorf("parsing account number %q: %w", number, err)
	}
	name := strings.TrimSpace(rec[colAcctName])
	if name == "" {
		return domain.Account{}, errors.New("account name is empty")
	}
	typ, err := domain.ParseAccountType(rec[colAcctType])
	if err != nil {
		return domain.Account{}, err
	}

	acct := domain.Account{
		AccountNumber: number,
		AccountName:   name,
		AccountType:   typ,
		IsActive:      true,
	}
	if len(rec) > colAcctParent {
		acct.ParentAccount = strings.TrimSpace(rec[colAcctParent])
	}
	return acct, nil
}

func categoryFor(a domain.Account) domain.Category {
	return domain.Category{
		CategoryID:       "cat_" + a.AccountNumber,
		CategoryName:     a.AccountName,
		AccountNumber:    a.AccountNumber,
		Description:      string(a.AccountType) + " account " + a.AccountNumber,
		SwissGAAPMapping: a.AccountType.GAAPMapping(),
	}
}

func isChartHeader(rec []string) bool {
	first := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(rec[0], bom)))
	return strings.HasPrefix(first, "account")
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
