package commands

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dvloznov/swiss-bookkeeping/internal/config"
	"github.com/dvloznov/swiss-bookkeeping/internal/results"
)

func newResultCommand(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "result <result-id>",
		Short: "Show a stored processing result",
		Long: `Result loads a processing result from the results store. With --file it prints
the location of one export document instead: general-ledger, tax-report,
compliance-report or audit-trail. Results only outlive the process that
produced them with the redis backend.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Results.Backend != config.ResultsBackendRedis {
				return fmt.Errorf("results backend %q does not persist results between runs", a.cfg.Results.Backend)
			}

			store, closeStore, err := newResultsStore(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			res, err := store.Get(cmd.Context(), args[0])
			if errors.Is(err, results.ErrNotFound) {
				return fmt.Errorf("result %s not found or expired", args[0])
			}
			if err != nil {
				return err
			}

			if file != "" {
				loc, err := res.File(file)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), loc)
				return nil
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "print the location of one export document")
	return cmd
}
