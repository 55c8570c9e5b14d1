package export

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
)

const (
	complianceTitle = "Swiss Accounting Compliance Report"

	metricTotal     = "Total Transactions"
	metricCompliant = "Compliant Transactions"
	metricRate      = "Compliance Rate"
	metricOverall   = "Overall Compliance"

	overallPassed = "PASSED"
	overallFailed = "FAILED"
)

// WriteComplianceReport writes the summary block followed by violation and
// warning sections; empty sections are omitted.
func WriteComplianceReport(w io.Writer, r domain.ComplianceReport) error {
	cw := csv.NewWriter(w)

	overall := overallFailed
	if r.IsCompliant {
		overall = overallPassed
	}

	rows := [][]string{
		{complianceTitle},
		{""},
		{"Summary"},
		{"Metric", "Value"},
		{metricTotal, strconv.Itoa(r.Summary.TotalTransactions)},
		{metricCompliant, strconv.Itoa(r.Summary.CompliantTransactions)},
		{metricRate, fixed2(r.Summary.ComplianceRate*100) + "%"},
		{metricOverall, overall},
		{""},
	}

	if len(r.Violations) > 0 {
		rows = append(rows, []string{"Violations"}, []string{"Transaction ID", "Type", "Severity", "Description", "Suggestion"})
		for _, v := range r.Violations {
			rows = append(rows, []string{v.TransactionID, string(v.Type), string(v.Severity), v.Description, v.Suggestion})
		}
		rows = append(rows, []string{""})
	}

	if len(r.Warnings) > 0 {
		rows = append(rows, []string{"Warnings"}, []string{"Transaction ID", "Type", "Description", "Suggestion"})
		for _, wr := range r.Warnings {
			rows = append(rows, []string{wr.TransactionID, string(wr.Type), wr.Description, wr.Suggestion})
		}
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("WriteComplianceReport: %w", err)
	}
	return nil
}

// SummaryRecord is the summary block read back from a compliance report.
type SummaryRecord struct {
	domain.ComplianceSummary
	Passed bool
}

// ReadComplianceSummary parses the summary block of a compliance report written by
// WriteComplianceReport. The rate is recovered at two-decimal percentage precision.
func ReadComplianceSummary(r io.Reader) (SummaryRecord, error) {
	cr := csv.NewReader(skipBOM(r))
	cr.FieldsPerRecord = -1

	var (
		rec   SummaryRecord
		found = map[string]bool{}
		inSum bool
	)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return SummaryRecord{}, fmt.Errorf("ReadComplianceSummary: reading CSV: %w", err)
		}
		if len(row) == 2 && row[0] == "Metric" && row[1] == "Value" {
			inSum = true
			continue
		}
		if !inSum {
			continue
		}
		if len(row) != 2 {
			break
		}

		key, val := row[0], strings.TrimSpace(row[1])
		switch key {
		case metricTotal:
			rec.TotalTransactions, err = strconv.Atoi(val)
		case metricCompliant:
			rec.CompliantTransactions, err = strconv.Atoi(val)
		case metricRate:
			var pct float64
			pct, err = strconv.ParseFloat(strings.TrimSuffix(val, "%"), 64)
			rec.ComplianceRate = pct / 100
		case metricOverall:
			rec.Passed = val == overallPassed
		default:
			continue
		}
		if err != nil {
			return SummaryRecord{}, fmt.Errorf("ReadComplianceSummary: parsing %s %q: %w", key, val, err)
		}
		found[key] = true
	}

	for _, k := range []string{metricTotal, metricCompliant, metricRate, metricOverall} {
		if !found[k] {
			return SummaryRecord{}, fmt.Errorf("ReadComplianceSummary: missing %q", k)
		}
	}
	return rec, nil
}

func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(BOM)); err == nil && string(b) == BOM {
		_, _ = br.Discard(len(BOM))
	}
	return br
}
