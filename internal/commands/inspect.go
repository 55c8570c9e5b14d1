package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dvloznov/swiss-bookkeeping/internal/export"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <compliance-report.csv>",
		Short: "Print the summary of an exported compliance report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			sum, err := export.ReadComplianceSummary(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			status := "FAILED"
			if sum.Passed {
				status = "PASSED"
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Total transactions:  %d\n", sum.TotalTransactions)
			fmt.Fprintf(w, "Compliant:           %d\n", sum.CompliantTransactions)
			fmt.Fprintf(w, "Compliance rate:     %.2f%%\n", sum.ComplianceRate*100)
			fmt.Fprintf(w, "Overall:             %s\n", status)
			return nil
		},
	}
}
