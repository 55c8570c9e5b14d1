package notionsync

import (
	"time"

	"github.com/jomei/notionapi"
)

// Review database property names.
const (
	PropTransactionID = "Transaction ID"
	PropEntryID       = "Entry ID"
	PropDescription   = "Description"
	PropAmount        = "Amount"
	PropDate          = "Date"
	PropCategory      = "Category"
	PropAccount       = "Account"
	PropReason        = "Reason"
	PropResolved      = "Resolved"
)

// ReviewItemToNotionProperties converts a ReviewItem to review database properties.
// Resolved is only set on creation so a reviewer's tick survives re-runs.
func ReviewItemToNotionProperties(item ReviewItem, create bool) notionapi.Properties {
	amount, _ := item.Amount.Float64()

	props := notionapi.Properties{
		PropTransactionID: notionapi.TitleProperty{
			Title: []notionapi.RichText{text(item.TransactionID)},
		},
		PropDescription: richText(item.Description),
		PropAmount:      notionapi.NumberProperty{Number: amount},
		PropReason:      richText(item.Reason),
	}

	if item.EntryID != "" {
		props[PropEntryID] = richText(item.EntryID)
	}
	if item.Account != "" {
		props[PropAccount] = richText(item.Account)
	}
	// Notion rejects empty select options.
	if item.Category != "" {
		props[PropCategory] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: item.Category},
		}
	}
	if t, err := time.Parse("2006-01-02", item.Date); err == nil {
		d := notionapi.Date(t)
		props[PropDate] = notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &d},
		}
	}
	if create {
		props[PropResolved] = notionapi.CheckboxProperty{Checkbox: false}
	}
	return props
}

func text(s string) notionapi.RichText {
	return notionapi.RichText{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: s},
	}
}

func richText(s string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{RichText: []notionapi.RichText{text(s)}}
}

// extractTransactionID reads the title property of a review page.
func extractTransactionID(page notionapi.Page) string {
	if prop, ok := page.Properties[PropTransactionID]; ok {
		if title, ok := prop.(*notionapi.TitleProperty); ok && len(title.Title) > 0 {
			return title.Title[0].PlainText
		}
	}
	return ""
}
