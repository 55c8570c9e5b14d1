package domain

type ViolationType string

const (
	ViolationMissingVAT       ViolationType = "MISSING_VAT"
	ViolationInvalidAccount   ViolationType = "INVALID_ACCOUNT"
	ViolationCurrencyMismatch ViolationType = "CURRENCY_MISMATCH"
	ViolationDateFormat       ViolationType = "DATE_FORMAT"
	ViolationAmount           ViolationType = "AMOUNT_VALIDATION"
)

type WarningType string

const (
	WarningUnusualAmount  WarningType = "UNUSUAL_AMOUNT"
	WarningDuplicateEntry WarningType = "DUPLICATE_ENTRY"
	WarningUncertainty    WarningType = "CATEGORIZATION_UNCERTAINTY"
)

type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

type ComplianceViolation struct {
	TransactionID string        `json:"transactionId"`
	Type          ViolationType `json:"type"`
	Description   string        `json:"description"`
	Severity      Severity      `json:"severity"`
	Suggestion    string        `json:"suggestion"`
}

type ComplianceWarning struct {
	TransactionID string      `json:"transactionId"`
	Type          WarningType `json:"type"`
	Description   string      `json:"description"`
	Suggestion    string      `json:"suggestion"`
}

type ComplianceSummary struct {
	TotalTransactions     int     `json:"totalTransactions"`
	CompliantTransactions int     `json:"compliantTransactions"`
	ComplianceRate        float64 `json:"complianceRate"`
}

// ComplianceReport is derived from a list of categorized transactions.
type ComplianceReport struct {
	IsCompliant bool                  `json:"isCompliant"`
	Violations  []ComplianceViolation `json:"violations"`
	Warnings    []ComplianceWarning   `json:"warnings"`
	Summary     ComplianceSummary     `json:"summary"`
}
