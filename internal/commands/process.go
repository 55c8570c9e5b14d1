package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dvloznov/swiss-bookkeeping/internal/pipeline"
)

func newProcessCommand(a *app) *cobra.Command {
	var chartPath string
	var asJSON bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "process --chart <chart.csv> <document>...",
		Short: "Categorize, validate and export a batch of documents",
		Long: `Process extracts transactions from the given documents, categorizes them
against the chart of accounts, checks Swiss compliance rules, builds the audit
trail and writes the general ledger, tax report, compliance report and audit
trail as CSV files. Documents and the chart may be local paths or gs:// URIs.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs := splitArgs(args)
			sources := append([]string{chartPath}, docs...)

			svc, cl, err := newService(cmd.Context(), a.cfg, sources, dryRun)
			defer func() {
				if cerr := cl.Close(); cerr != nil {
					a.log.Warn().Err(cerr).Msg("Closing clients failed")
				}
			}()
			if err != nil {
				return err
			}

			res, err := svc.Process(cmd.Context(), pipeline.Request{
				ChartPath: chartPath,
				Documents: docs,
			})
			if err != nil {
				var runErr *pipeline.RunError
				if errors.As(err, &runErr) {
					return fmt.Errorf("%s: %s", runErr.Message, runErr.Detail)
				}
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printSummary(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVar(&chartPath, "chart", "", "chart of accounts CSV (local path or gs:// URI)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "do not write review items to Notion")
	_ = cmd.MarkFlagRequired("chart")

	return cmd
}

func printSummary(w io.Writer, res *pipeline.Result) {
	fmt.Fprintf(w, "Result:           %s\n", res.ID)
	fmt.Fprintf(w, "Run:              %s\n", res.RunID)
	fmt.Fprintf(w, "Transactions:     %d\n", res.Summary.TotalTransactions)
	fmt.Fprintf(w, "Total amount:     CHF %s\n", res.Summary.TotalAmount.StringFixed(2))
	fmt.Fprintf(w, "Compliance rate:  %.2f%%\n", res.Summary.ComplianceRate*100)
	fmt.Fprintf(w, "Violations:       %d\n", len(res.ComplianceReport.Violations))
	fmt.Fprintf(w, "Warnings:         %d\n", len(res.ComplianceReport.Warnings))
	fmt.Fprintf(w, "Processing time:  %d ms\n", res.Summary.ProcessingTimeMs)
	for _, doc := range res.SkippedDocuments {
		fmt.Fprintf(w, "Skipped:          %s\n", doc)
	}
	if f := res.ExportFiles; f != nil {
		fmt.Fprintln(w, "Export files:")
		fmt.Fprintf(w, "  general-ledger     %s\n", f.GeneralLedger)
		fmt.Fprintf(w, "  tax-report         %s\n", f.TaxReport)
		fmt.Fprintf(w, "  compliance-report  %s\n", f.ComplianceReport)
		fmt.Fprintf(w, "  audit-trail        %s\n", f.AuditTrail)
		for _, m := range f.Mirrors {
			fmt.Fprintf(w, "  mirror             %s\n", m)
		}
	}
}
