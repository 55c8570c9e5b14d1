package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
)

// ErrMalformedResult marks a classifier answer that does not conform to Result.
var ErrMalformedResult = errors.New("classifier: malformed result")

// Classifier is the categorization capability: prompt in, structured result out.
// Any returned error means the caller must fall back.
type Classifier interface {
	Ask(ctx context.Context, prompt string) (*Result, error)
}

// Result is the structured classification returned for one transaction.
type Result struct {
	Category      string   `json:"category"`
	AccountNumber string   `json:"accountNumber"`
	Confidence    float64  `json:"confidence"`
	VATCode       string   `json:"vatCode"`
	VATRate       *float64 `json:"vatRate"`
	SwissGAAPCode string   `json:"swissGaapCode"`
	Notes         string   `json:"notes"`
	AppliedRules  []string `json:"appliedRules"`

	// Raw is the model answer the result was decoded from.
	Raw string `json:"-"`
}

// UnmarshalJSON accepts accountNumber as either a JSON string or number.
func (r *Result) UnmarshalJSON(data []byte) error {
	type alias Result
	aux := struct {
		*alias
		AccountNumber json.RawMessage `json:"accountNumber"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.AccountNumber) == 0 || string(aux.AccountNumber) == "null" {
		r.AccountNumber = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(aux.AccountNumber, &s); err == nil {
		r.AccountNumber = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(aux.AccountNumber, &n); err != nil {
		return fmt.Errorf("accountNumber: %w", err)
	}
	r.AccountNumber = n.String()
	return nil
}

// Validate checks the fields categorization depends on.
func (r *Result) Validate() error {
	var problems []string
	if strings.TrimSpace(r.Category) == "" {
		problems = append(problems, "category is empty")
	}
	if strings.TrimSpace(r.AccountNumber) == "" {
		problems = append(problems, "accountNumber is empty")
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		problems = append(problems, fmt.Sprintf("confidence %v outside [0,1]", r.Confidence))
	}
	if r.VATCode != "" && !domain.VATCode(r.VATCode).Valid() {
		problems = append(problems, fmt.Sprintf("vatCode %q is not a Swiss rate class", r.VATCode))
	}
	if r.VATRate != nil && *r.VATRate < 0 {
		problems = append(problems, fmt.Sprintf("vatRate %v is negative", *r.VATRate))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrMalformedResult, strings.Join(problems, "; "))
	}
	return nil
}

// Decode parses a raw model answer into a validated Result.
func Decode(raw string, clean func(string) string) (*Result, error) {
	body := raw
	if clean != nil {
		body = clean(raw)
	}
	var res Result
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	res.Raw = raw
	return &res, nil
}
