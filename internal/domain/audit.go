package domain

import "time"

type ProcessingStep struct {
	Step        string    `json:"step"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	Result      string    `json:"result"`
}

type AuditTransactionEntry struct {
	OriginalTransaction    ExtractedTransaction   `json:"originalTransaction"`
	CategorizedTransaction CategorizedTransaction `json:"categorizedTransaction"`
	ProcessingSteps        []ProcessingStep       `json:"processingSteps"`
	AIDecisionRationale    string                 `json:"aiDecisionRationale"`
}

type SystemInfo struct {
	Version   string `json:"version"`
	Processor string `json:"processor"`
	AIModel   string `json:"aiModel"`
}

type AuditTrail struct {
	ProcessingID string                  `json:"processingId"`
	Timestamp    time.Time               `json:"timestamp"`
	Transactions []AuditTransactionEntry `json:"transactions"`
	SystemInfo   SystemInfo              `json:"systemInfo"`
}
