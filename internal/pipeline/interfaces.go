package pipeline

import (
	"context"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
	"github.com/dvloznov/swiss-bookkeeping/internal/export"
	"github.com/dvloznov/swiss-bookkeeping/internal/notionsync"
)

// DocumentExtractor loads the chart of accounts and turns documents into transactions.
type DocumentExtractor interface {
	LoadChart(ctx context.Context, source string, meta domain.ChartMetadata) (*domain.ChartOfAccounts, error)
	Extract(ctx context.Context, source string) (*domain.ProcessedDocument, error)
}

// PackageExporter renders and stores the accounting package.
type PackageExporter interface {
	ExportPackage(ctx context.Context, txs []domain.CategorizedTransaction, chart *domain.ChartOfAccounts,
		report domain.ComplianceReport, trail domain.AuditTrail) (*export.Package, error)
}

// ReviewPublisher sends transactions needing a human look to the review queue.
type ReviewPublisher interface {
	Publish(ctx context.Context, items []notionsync.ReviewItem) (notionsync.PublishStats, error)
}
