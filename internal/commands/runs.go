package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dvloznov/swiss-bookkeeping/internal/config"
	infra "github.com/dvloznov/swiss-bookkeeping/internal/infra/bigquery"
)

// appliedBy identifies this tool in schema_migrations.
const appliedBy = "bookkeeping-cli"

func openRepository(ctx context.Context, cfg *config.Config) (*infra.BigQueryRunRepository, error) {
	if !cfg.BigQuery.Enabled {
		return nil, errors.New("bigquery is not enabled in the configuration")
	}
	return infra.NewBigQueryRunRepository(ctx, cfg.BigQuery.ProjectID, cfg.BigQuery.Dataset)
}

func newRunsCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent processing runs recorded in BigQuery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			runs, err := repo.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tSTARTED\tSTATUS\tDOCS\tTXS\tRATE\tERROR")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					r.RunID,
					r.StartedTS.Format(time.RFC3339),
					r.Status,
					nullInt(r.DocumentCount.Valid, r.DocumentCount.Int64),
					nullInt(r.TransactionCount.Valid, r.TransactionCount.Int64),
					nullRate(r.ComplianceRate.Valid, r.ComplianceRate.Float64),
					r.ErrorMessage.StringVal,
				)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	return cmd
}

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending BigQuery schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			n, err := infra.NewMigrator(repo.Client(), a.cfg.BigQuery.Dataset, appliedBy).Run(cmd.Context(), infra.Migrations())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", n)
			return nil
		},
	}
}

func nullInt(valid bool, v int64) string {
	if !valid {
		return "-"
	}
	return fmt.Sprint(v)
}

func nullRate(valid bool, v float64) string {
	if !valid {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", v*100)
}
