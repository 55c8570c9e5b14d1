package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dvloznov/swiss-bookkeeping/internal/config"
)

func newInitCommand() *cobra.Command {
	var company string
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default bookkeeping.yaml",
		Args:  cobra.MaximumNArgs(1),
		// The config file does not exist yet.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			path := filepath.Join(dir, "bookkeeping.yaml")

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", dir, err)
			}

			cfg := config.Default()
			if company != "" {
				cfg.Company.Name = company
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "company name used in the chart metadata")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}
