package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dvloznov/swiss-bookkeeping/internal/extraction"
	"github.com/dvloznov/swiss-bookkeeping/internal/gcsuploader"
)

func newChartCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "chart <chart.csv>",
		Short: "Parse a chart of accounts and list its accounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			source := args[0]

			var opts []extraction.Option
			if gcsuploader.IsGCSURI(source) {
				storage, err := gcsuploader.NewGCSStorageService(ctx)
				if err != nil {
					return err
				}
				defer storage.Close()
				opts = append(opts, extraction.WithFetcher(storage))
			}

			chart, err := extraction.NewExtractor(nil, opts...).LoadChart(ctx, source, chartMetadata(a.cfg))
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(chart)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ACCOUNT\tNAME\tTYPE\tGAAP")
			for i, acc := range chart.Accounts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", acc.AccountNumber, acc.AccountName, acc.AccountType, chart.Categories[i].SwissGAAPMapping)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d accounts\n", len(chart.Accounts))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the parsed chart as JSON")
	return cmd
}
