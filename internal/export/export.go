package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
	"github.com/dvloznov/swiss-bookkeeping/internal/logger"
)

// Sink stores one rendered export file and returns its location.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// DirSink writes files into a local directory, creating it when missing.
type DirSink struct {
	Dir string
}

func (s DirSink) Put(_ context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("DirSink.Put: creating %s: %w", s.Dir, err)
	}
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("DirSink.Put: writing %s: %w", path, err)
	}
	return path, nil
}

// Uploader is the object storage capability GCSSink needs.
type Uploader interface {
	UploadBytes(ctx context.Context, bucket, object string, data []byte, contentType string) (string, error)
}

// GCSSink uploads files to bucket under Prefix.
type GCSSink struct {
	Uploader Uploader
	Bucket   string
	Prefix   string
}

func (s GCSSink) Put(ctx context.Context, name string, data []byte) (string, error) {
	object := name
	if s.Prefix != "" {
		object = strings.TrimSuffix(s.Prefix, "/") + "/" + name
	}
	uri, err := s.Uploader.UploadBytes(ctx, s.Bucket, object, data, "text/csv; charset=utf-8")
	if err != nil {
		return "", fmt.Errorf("GCSSink.Put: %w", err)
	}
	return uri, nil
}

// Package lists where the four documents of one export were stored.
type Package struct {
	GeneralLedger    string   `json:"generalLedger"`
	TaxReport        string   `json:"taxReport"`
	ComplianceReport string   `json:"complianceReport"`
	AuditTrail       string   `json:"auditTrail"`
	Mirrors          []string `json:"mirrors,omitempty"`
}

// Exporter renders the accounting package and stores it in a primary sink.
// Mirror sinks are best effort: their failures are logged, not returned.
type Exporter struct {
	primary Sink
	mirrors []Sink
	now     func() time.Time
}

type Option func(*Exporter)

func WithMirror(s Sink) Option {
	return func(e *Exporter) { e.mirrors = append(e.mirrors, s) }
}

func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

func NewExporter(primary Sink, opts ...Option) *Exporter {
	e := &Exporter{primary: primary, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Timestamp formats the file name suffix, e.g. 2024-03-15T10-30-00.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15-04-05")
}

type document struct {
	prefix string
	dest   *string
	render func(*bytes.Buffer) error
}

// ExportPackage renders the general ledger, tax report, compliance report and
// audit trail, each prefixed with a BOM.
func (e *Exporter) ExportPackage(
	ctx context.Context,
	txs []domain.CategorizedTransaction,
	chart *domain.ChartOfAccounts,
	report domain.ComplianceReport,
	trail domain.AuditTrail,
) (*Package, error) {
	log := logger.FromContext(ctx)
	ts := Timestamp(e.now())
	pkg := &Package{}

	docs := []document{
		{"general-ledger", &pkg.GeneralLedger, func(b *bytes.Buffer) error { return WriteLedger(b, txs, chart) }},
		{"tax-report", &pkg.TaxReport, func(b *bytes.Buffer) error { return WriteTaxReport(b, txs) }},
		{"compliance-report", &pkg.ComplianceReport, func(b *bytes.Buffer) error { return WriteComplianceReport(b, report) }},
		{"audit-trail", &pkg.AuditTrail, func(b *bytes.Buffer) error { return WriteAuditTrail(b, trail) }},
	}

	for _, d := range docs {
		var buf bytes.Buffer
		buf.WriteString(BOM)
		if err := d.render(&buf); err != nil {
			return nil, fmt.Errorf("ExportPackage: rendering %s: %w", d.prefix, err)
		}

		name := d.prefix + "-" + ts + ".csv"
		loc, err := e.primary.Put(ctx, name, buf.Bytes())
		if err != nil {
			return nil, fmt.Errorf("ExportPackage: %w", err)
		}
		*d.dest = loc
		log.Info().Str("file", loc).Int("bytes", buf.Len()).Msg("exported")

		for _, m := range e.mirrors {
			mloc, err := m.Put(ctx, name, buf.Bytes())
			if err != nil {
				log.Warn().Err(err).Str("file", name).Msg("mirror upload failed")
				continue
			}
			pkg.Mirrors = append(pkg.Mirrors, mloc)
		}
	}

	return pkg, nil
}
