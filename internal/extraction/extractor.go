package extraction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
	"github.com/dvloznov/swiss-bookkeeping/internal/gcsuploader"
	"github.com/dvloznov/swiss-bookkeeping/internal/llm"
	"github.com/dvloznov/swiss-bookkeeping/internal/logger"
	"github.com/google/uuid"
)

const bom = "\ufeff"

// Bank statement CSV rows carry no model confidence of their own.
const csvConfidence = 0.95

// Fetcher reads objects from gs:// URIs.
type Fetcher interface {
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)
}

// Extractor turns source documents into validated ExtractedTransactions.
type Extractor struct {
	gen       llm.Generator
	fetcher   Fetcher
	validator *Validator
	now       func() time.Time
	newID     func() string
}

type Option func(*Extractor)

// WithFetcher enables gs:// sources.
func WithFetcher(f Fetcher) Option {
	return func(e *Extractor) { e.fetcher = f }
}

func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(e *Extractor) { e.newID = newID }
}

// NewExtractor builds an Extractor. gen may be nil, in which case only CSV bank
// statements can be processed.
func NewExtractor(gen llm.Generator, opts ...Option) *Extractor {
	e := &Extractor{
		gen:       gen,
		validator: NewValidator(),
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract processes one document from a local path or gs:// URI. Invalid
// transactions are dropped with a warning.
func (e *Extractor) Extract(ctx context.Context, source string) (*domain.ProcessedDocument, error) {
	log := logger.FromContext(ctx)
	name := fileName(source)
	typ := DetectType(name)

	data, err := e.read(ctx, source)
	if err != nil {
		return nil, err
	}

	var doc *domain.ProcessedDocument
	switch ext := extension(name); {
	case ext == ".csv" && typ == domain.DocumentBankStatement:
		txs, err := ParseBankStatementCSV(bytes.NewReader(trimBOM(data)))
		if err != nil {
			return nil, fmt.Errorf("Extract: %s: %w", name, err)
		}
		doc = &domain.ProcessedDocument{
			Type:         typ,
			Transactions: txs,
			Metadata: domain.DocumentMetadata{
				Confidence:       csvConfidence,
				DocumentLanguage: DefaultLanguage,
				Currency:         DefaultCurrency,
			},
		}
	case ext == ".txt" || ext == ".csv":
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("Extract: %s is not UTF-8 text: %w", name, ErrUnsupportedFormat)
		}
		if e.gen == nil {
			return nil, fmt.Errorf("Extract: %s needs a text model: %w", name, ErrUnsupportedFormat)
		}
		doc, err = ExtractText(ctx, e.gen, typ, string(trimBOM(data)))
		if err != nil {
			return nil, fmt.Errorf("Extract: %s: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("Extract: %s: %w", name, ErrUnsupportedFormat)
	}

	doc.Metadata.FileName = name
	doc.Metadata.ProcessedAt = e.now()

	valid := doc.Transactions[:0]
	for i, tx := range doc.Transactions {
		if err := e.validator.Transaction(tx); err != nil {
			log.Warn().Err(err).Str("file", name).Int("row", i).Msg("Dropping invalid transaction")
			continue
		}
		tx.ID = e.newID()
		valid = append(valid, tx)
	}
	doc.Transactions = valid

	log.Info().
		Str("file", name).
		Str("type", string(doc.Type)).
		Int("transactions", len(doc.Transactions)).
		Float64("confidence", doc.Metadata.Confidence).
		Msg("Document extracted")
	return doc, nil
}

// LoadChart reads and parses a chart of accounts CSV from a local path or gs:// URI.
func (e *Extractor) LoadChart(ctx context.Context, source string, meta domain.ChartMetadata) (*domain.ChartOfAccounts, error) {
	if extension(fileName(source)) != ".csv" {
		return nil, fmt.Errorf("LoadChart: %s: %w", source, ErrUnsupportedFormat)
	}
	data, err := e.read(ctx, source)
	if err != nil {
		return nil, err
	}
	chart, err := ParseChart(bytes.NewReader(trimBOM(data)), meta)
	if err != nil {
		return nil, fmt.Errorf("LoadChart: %s: %w", source, err)
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("source", source).
		Int("accounts", len(chart.Accounts)).
		Msg("Chart of accounts loaded")
	return chart, nil
}

func (e *Extractor) read(ctx context.Context, source string) ([]byte, error) {
	if gcsuploader.IsGCSURI(source) {
		if e.fetcher == nil {
			return nil, errors.New("read: " + source + ": no GCS fetcher configured")
		}
		data, err := e.fetcher.FetchFromGCS(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("read: %s: %w", source, err)
		}
		return data, nil
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read: %s: %w", source, err)
	}
	return data, nil
}

func fileName(source string) string {
	if gcsuploader.IsGCSURI(source) {
		return gcsuploader.ExtractFilenameFromGCSURI(source)
	}
	return filepath.Base(source)
}

func trimBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte(bom))
}
