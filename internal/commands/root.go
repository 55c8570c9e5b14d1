package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dvloznov/swiss-bookkeeping/internal/config"
	"github.com/dvloznov/swiss-bookkeeping/internal/logger"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

// app carries what PersistentPreRunE prepared for the subcommands.
type app struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log zerolog.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "bookkeeping",
		Short:   "Swiss bookkeeping from invoices, receipts and bank statements",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.LogLevel = a.logLevel
			}
			a.cfg = cfg
			a.log = logger.NewWithLevel(cmd.ErrOrStderr(), logger.ParseLevel(cfg.LogLevel))
			cmd.SetContext(logger.WithContext(cmd.Context(), a.log))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to bookkeeping.yaml")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")

	rootCmd.AddCommand(
		newInitCommand(),
		newProcessCommand(a),
		newChartCommand(a),
		newInspectCommand(),
		newResultCommand(a),
		newUploadCommand(a),
		newRunsCommand(a),
		newMigrateCommand(a),
		newReviewCommand(a),
	)

	return rootCmd
}
