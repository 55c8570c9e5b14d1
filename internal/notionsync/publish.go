package notionsync

import (
	"context"
	"fmt"

	"github.com/dvloznov/swiss-bookkeeping/internal/logger"
	"github.com/jomei/notionapi"
)

// BatchSize is the number of review items processed per batch.
const BatchSize = 100

// PublishStats counts what a Publish call did.
type PublishStats struct {
	Created int
	Updated int
	Failed  int
}

// ReviewPublisher writes review items to a Notion database.
type ReviewPublisher struct {
	client     NotionService
	databaseID string
	dryRun     bool
}

func NewReviewPublisher(client NotionService, databaseID string, dryRun bool) *ReviewPublisher {
	return &ReviewPublisher{client: client, databaseID: databaseID, dryRun: dryRun}
}

// Publish creates a page per item, or updates the page already carrying the same
// Transaction ID. Individual page failures are logged and counted; only a failed
// database query aborts.
func (p *ReviewPublisher) Publish(ctx context.Context, items []ReviewItem) (PublishStats, error) {
	log := logger.FromContext(ctx)
	var stats PublishStats

	if len(items) == 0 {
		return stats, nil
	}

	pages, err := queryAllNotionPages(ctx, p.client, p.databaseID)
	if err != nil {
		return stats, fmt.Errorf("Publish: %w", err)
	}
	existing := make(map[string]string, len(pages))
	for _, page := range pages {
		if id := extractTransactionID(page); id != "" {
			existing[id] = string(page.ID)
		}
	}

	for i := 0; i < len(items); i += BatchSize {
		end := min(i+BatchSize, len(items))
		batch := items[i:end]
		log.Debug().
			Int("batch_start", i).
			Int("batch_end", end).
			Msg("Publishing review batch")

		for _, item := range batch {
			pageID, found := existing[item.TransactionID]

			if p.dryRun {
				log.Info().
					Str("transaction_id", item.TransactionID).
					Str("reason", item.Reason).
					Bool("update", found).
					Msg("[DRY RUN] Would publish review item")
				if found {
					stats.Updated++
				} else {
					stats.Created++
				}
				continue
			}

			if found {
				if _, err := p.client.UpdatePage(ctx, pageID, ReviewItemToNotionProperties(item, false)); err != nil {
					log.Warn().Err(err).Str("transaction_id", item.TransactionID).Str("page_id", pageID).Msg("Failed to update review page")
					stats.Failed++
					continue
				}
				stats.Updated++
				continue
			}

			page, err := p.client.CreatePage(ctx, p.databaseID, ReviewItemToNotionProperties(item, true))
			if err != nil {
				log.Warn().Err(err).Str("transaction_id", item.TransactionID).Msg("Failed to create review page")
				stats.Failed++
				continue
			}
			existing[item.TransactionID] = string(page.ID)
			stats.Created++
		}
	}

	log.Info().
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("failed", stats.Failed).
		Bool("dry_run", p.dryRun).
		Msg("Review queue published")
	return stats, nil
}

// ArchiveResolved archives review pages whose Resolved box is ticked.
func (p *ReviewPublisher) ArchiveResolved(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	pages, err := queryAllNotionPages(ctx, p.client, p.databaseID)
	if err != nil {
		return 0, fmt.Errorf("ArchiveResolved: %w", err)
	}

	archived := 0
	for _, page := range pages {
		if !isResolved(page) {
			continue
		}
		if p.dryRun {
			log.Info().Str("page_id", string(page.ID)).Msg("[DRY RUN] Would archive resolved review page")
			archived++
			continue
		}
		if err := p.client.DeletePage(ctx, string(page.ID)); err != nil {
			log.Warn().Err(err).Str("page_id", string(page.ID)).Msg("Failed to archive review page")
			continue
		}
		archived++
	}
	return archived, nil
}

func queryAllNotionPages(ctx context.Context, client NotionService, databaseID string) ([]notionapi.Page, error) {
	var all []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{PageSize: 100}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := client.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}
		all = append(all, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}
	return all, nil
}

func isResolved(page notionapi.Page) bool {
	if prop, ok := page.Properties[PropResolved]; ok {
		if cb, ok := prop.(*notionapi.CheckboxProperty); ok {
			return cb.Checkbox
		}
	}
	return false
}
